package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/repository"
)

type invitationLogRepository struct {
	db *sql.DB
}

func NewInvitationLogRepository(db *sql.DB) repository.InvitationLogRepository {
	return &invitationLogRepository{db: db}
}

func (r *invitationLogRepository) Create(ctx context.Context, entry *domain.InvitationLog) error {
	query := `INSERT INTO invitation_logs (inviter_id, invitee_id, invite_link_id, invited_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		entry.InviterID, entry.InviteeID, entry.InviteLinkID, entry.InvitedAt,
	).Scan(&entry.ID)
}

// GetLatestByInvitee returns the newest entry when an invitee has rejoined
// through more than one link.
func (r *invitationLogRepository) GetLatestByInvitee(ctx context.Context, inviteeID int64) (*domain.InvitationLog, error) {
	entry := &domain.InvitationLog{}
	query := `SELECT id, inviter_id, invitee_id, invite_link_id, invited_at FROM invitation_logs
	          WHERE invitee_id = $1 ORDER BY invited_at DESC, id DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, inviteeID).Scan(
		&entry.ID, &entry.InviterID, &entry.InviteeID, &entry.InviteLinkID, &entry.InvitedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}
