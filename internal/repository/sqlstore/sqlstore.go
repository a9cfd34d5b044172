package sqlstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"invitebot-backend/internal/config"
	"invitebot-backend/internal/repository"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.InviteLinkRepository
	repository.InvitationLogRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		UserRepository:          NewUserRepository(db),
		InviteLinkRepository:    NewInviteLinkRepository(db),
		InvitationLogRepository: NewInvitationLogRepository(db),
	}
}

// Open connects to the configured database and bootstraps the schema.
func Open(cfg config.DatabaseConfig, dsn string) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "sqlite" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		// modernc.org/sqlite serializes writes itself; a single connection
		// avoids SQLITE_BUSY on concurrent event handling.
		dsn = dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(driverName(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func driverName(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
