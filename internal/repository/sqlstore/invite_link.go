package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/repository"
)

type inviteLinkRepository struct {
	db *sql.DB
}

func NewInviteLinkRepository(db *sql.DB) repository.InviteLinkRepository {
	return &inviteLinkRepository{db: db}
}

const inviteLinkColumns = `id, token, inviter_id, is_active, created_at, expires_at, used_at`

func (r *inviteLinkRepository) Create(ctx context.Context, link *domain.InviteLink) error {
	query := `INSERT INTO invite_links (token, inviter_id, is_active, created_at, expires_at)
	          VALUES ($1, $2, TRUE, $3, $4) RETURNING id`
	link.IsActive = true
	return r.db.QueryRowContext(ctx, query,
		link.Token, link.InviterID, link.CreatedAt, link.ExpiresAt,
	).Scan(&link.ID)
}

func (r *inviteLinkRepository) GetByID(ctx context.Context, id int64) (*domain.InviteLink, error) {
	query := `SELECT ` + inviteLinkColumns + ` FROM invite_links WHERE id = $1`
	link, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

func (r *inviteLinkRepository) FindByToken(ctx context.Context, token string) (*domain.InviteLink, error) {
	query := `SELECT ` + inviteLinkColumns + ` FROM invite_links WHERE token = $1`
	link, err := r.scanOne(r.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

func (r *inviteLinkRepository) FindActiveUnexpired(ctx context.Context, inviterID int64, now time.Time) (*domain.InviteLink, error) {
	query := `SELECT ` + inviteLinkColumns + ` FROM invite_links
	          WHERE inviter_id = $1 AND is_active = TRUE AND expires_at > $2
	          ORDER BY created_at DESC LIMIT 1`
	link, err := r.scanOne(r.db.QueryRowContext(ctx, query, inviterID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

// Consume is the ledger's critical section: each step is a single
// conditional UPDATE, so two concurrent calls on the same id cannot both
// observe the active flag set.
func (r *inviteLinkRepository) Consume(ctx context.Context, id int64, now time.Time) (domain.ConsumeOutcome, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_links SET is_active = FALSE, used_at = $1
		 WHERE id = $2 AND is_active = TRUE AND expires_at > $1`, now, id)
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", err
	} else if n == 1 {
		return domain.ConsumeSuccess, nil
	}

	// Expired links are deactivated without used_at so the row stays
	// distinguishable from a consumed one.
	res, err = r.db.ExecContext(ctx,
		`UPDATE invite_links SET is_active = FALSE
		 WHERE id = $1 AND is_active = TRUE AND expires_at <= $2`, id, now)
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", err
	} else if n == 1 {
		return domain.ConsumeExpired, nil
	}

	return domain.ConsumeAlreadyInactive, nil
}

func (r *inviteLinkRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_links SET is_active = FALSE
		 WHERE is_active = TRUE AND expires_at <= $1 AND used_at IS NULL`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *inviteLinkRepository) ListByInviter(ctx context.Context, inviterID int64) ([]domain.InviteLink, error) {
	query := `SELECT ` + inviteLinkColumns + ` FROM invite_links WHERE inviter_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, inviterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.InviteLink
	for rows.Next() {
		link := domain.InviteLink{}
		if err := rows.Scan(&link.ID, &link.Token, &link.InviterID, &link.IsActive,
			&link.CreatedAt, &link.ExpiresAt, &link.UsedAt); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *inviteLinkRepository) scanOne(row *sql.Row) (*domain.InviteLink, error) {
	link := &domain.InviteLink{}
	err := row.Scan(&link.ID, &link.Token, &link.InviterID, &link.IsActive,
		&link.CreatedAt, &link.ExpiresAt, &link.UsedAt)
	if err != nil {
		return nil, err
	}
	return link, nil
}
