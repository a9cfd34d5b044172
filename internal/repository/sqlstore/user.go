package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (telegram_id, username, first_name, last_name, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (telegram_id) DO UPDATE SET username = $2, first_name = $3, last_name = $4
	          RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		user.TelegramID, user.Username, user.FirstName, user.LastName, time.Now().UTC(),
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, telegram_id, username, first_name, last_name, created_at FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT id, telegram_id, username, first_name, last_name, created_at FROM users WHERE telegram_id = $1`
	user, err := r.scanOne(r.db.QueryRowContext(ctx, query, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, telegram_id, username, first_name, last_name, created_at FROM users WHERE username = $1
	          ORDER BY created_at DESC LIMIT 1`
	user, err := r.scanOne(r.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName, &user.LastName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
