package sqlstore

import "database/sql"

// Schema is created at startup. Both dialects share the same table shapes;
// only the id column syntax differs.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	telegram_id INTEGER NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS invite_links (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	token TEXT NOT NULL UNIQUE,
	inviter_id INTEGER NOT NULL REFERENCES users(id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP,
	used_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_invite_links_inviter ON invite_links(inviter_id, is_active);

CREATE TABLE IF NOT EXISTS invitation_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	inviter_id INTEGER NOT NULL REFERENCES users(id),
	invitee_id INTEGER NOT NULL REFERENCES users(id),
	invite_link_id INTEGER REFERENCES invite_links(id),
	invited_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invitation_logs_invitee ON invitation_logs(invitee_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	telegram_id BIGINT NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS invite_links (
	id BIGSERIAL PRIMARY KEY,
	token TEXT NOT NULL UNIQUE,
	inviter_id BIGINT NOT NULL REFERENCES users(id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ,
	used_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_invite_links_inviter ON invite_links(inviter_id, is_active);

CREATE TABLE IF NOT EXISTS invitation_logs (
	id BIGSERIAL PRIMARY KEY,
	inviter_id BIGINT NOT NULL REFERENCES users(id),
	invitee_id BIGINT NOT NULL REFERENCES users(id),
	invite_link_id BIGINT REFERENCES invite_links(id),
	invited_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invitation_logs_invitee ON invitation_logs(invitee_id);
`

// Migrate creates the tables for the given driver if they do not exist.
func Migrate(db *sql.DB, driver string) error {
	schema := schemaPostgres
	if driver == "sqlite" {
		schema = schemaSQLite
	}
	_, err := db.Exec(schema)
	return err
}
