package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAccountsAndSessions, downAccountsAndSessions)
}

func upAccountsAndSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE target_accounts (
		id              VARCHAR PRIMARY KEY,
		platform        VARCHAR NOT NULL,
		username        VARCHAR NOT NULL,
		engagement_type VARCHAR NOT NULL,
		niche           VARCHAR NOT NULL DEFAULT 'technology',
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE (platform, username, engagement_type)
	);

	CREATE TABLE social_credentials (
		id           VARCHAR PRIMARY KEY,
		platform     VARCHAR NOT NULL,
		account_name VARCHAR NOT NULL,
		credentials  JSONB NOT NULL,
		account_type VARCHAR NOT NULL DEFAULT 'free',
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		last_login   TIMESTAMP WITH TIME ZONE,
		created_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE browser_sessions (
		id           VARCHAR PRIMARY KEY,
		platform     VARCHAR NOT NULL,
		session_data JSONB NOT NULL,
		user_agent   TEXT NOT NULL DEFAULT '',
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		last_used    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		created_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX idx_post_queue_due ON post_queue (status, scheduled_for);
	CREATE INDEX idx_post_queue_post ON post_queue (post_id);
	CREATE INDEX idx_posts_created_at ON posts (created_at DESC);
	CREATE INDEX idx_activity_feed_created_at ON activity_feed (created_at DESC);
	CREATE INDEX idx_engagement_log_created_at ON engagement_log (created_at DESC);
	`)
	return err
}

func downAccountsAndSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP INDEX IF EXISTS idx_engagement_log_created_at;
	DROP INDEX IF EXISTS idx_activity_feed_created_at;
	DROP INDEX IF EXISTS idx_posts_created_at;
	DROP INDEX IF EXISTS idx_post_queue_post;
	DROP INDEX IF EXISTS idx_post_queue_due;
	DROP TABLE browser_sessions;
	DROP TABLE social_credentials;
	DROP TABLE target_accounts;
	`)
	return err
}
