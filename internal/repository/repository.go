package repository

import (
	"context"
	"time"

	"invitebot-backend/internal/domain"
)

type UserRepository interface {
	// Upsert inserts the user or refreshes the mutable identity fields of an
	// existing row, keyed on telegram id. ID and CreatedAt are filled in.
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByTelegramID returns nil without error when no row matches.
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	// GetByUsername returns nil without error when no row matches.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// InviteLinkRepository is the invite-link ledger. Rows are never deleted;
// deactivation happens on consumption or expiry only.
type InviteLinkRepository interface {
	Create(ctx context.Context, link *domain.InviteLink) error
	// GetByID returns nil without error when no row matches.
	GetByID(ctx context.Context, id int64) (*domain.InviteLink, error)
	// FindByToken returns nil without error when no row matches.
	FindByToken(ctx context.Context, token string) (*domain.InviteLink, error)
	// FindActiveUnexpired returns the inviter's link with is_active set and
	// expires_at past now, or nil. Expired rows are filtered out here even
	// when their active flag has not been physically cleared yet.
	FindActiveUnexpired(ctx context.Context, inviterID int64, now time.Time) (*domain.InviteLink, error)
	// Consume atomically deactivates the link. Success sets used_at; an
	// expired link is deactivated without used_at; a link that was already
	// inactive is left untouched. Safe under concurrent calls on the same id.
	Consume(ctx context.Context, id int64, now time.Time) (domain.ConsumeOutcome, error)
	// DeactivateExpired clears the active flag on expired, never-consumed
	// rows and returns how many were swept.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	ListByInviter(ctx context.Context, inviterID int64) ([]domain.InviteLink, error)
}

type InvitationLogRepository interface {
	Create(ctx context.Context, entry *domain.InvitationLog) error
	// GetLatestByInvitee returns the most recent attribution for the invitee,
	// or nil without error when none exists.
	GetLatestByInvitee(ctx context.Context, inviteeID int64) (*domain.InvitationLog, error)
}
