package domain

import "time"

// InvitationLog is one append-only attribution fact: invitee joined through
// the inviter's link. InviteLinkID is nullable for attributions reconstructed
// without a ledger row; the bot always sets it.
type InvitationLog struct {
	ID           int64     `json:"id"`
	InviterID    int64     `json:"inviter_id"`
	InviteeID    int64     `json:"invitee_id"`
	InviteLinkID *int64    `json:"invite_link_id,omitempty"`
	InvitedAt    time.Time `json:"invited_at"`
}
