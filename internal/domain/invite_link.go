package domain

import "time"

// InviteLink is a single-use invitation issued through the platform.
// IsActive is true from creation until the link is consumed or swept as
// expired. UsedAt is set only on consumption, so an expired-and-swept row
// (UsedAt nil) stays distinguishable from a consumed one.
type InviteLink struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	InviterID int64      `json:"inviter_id"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Remaining returns the time left before the link expires, or zero if it
// already has.
func (l *InviteLink) Remaining(now time.Time) time.Duration {
	if d := l.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type ConsumeOutcome string

const (
	ConsumeSuccess         ConsumeOutcome = "SUCCESS"
	ConsumeAlreadyInactive ConsumeOutcome = "ALREADY_INACTIVE"
	ConsumeExpired         ConsumeOutcome = "EXPIRED"
)
