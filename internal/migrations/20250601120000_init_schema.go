package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitSchema, downInitSchema)
}

func upInitSchema(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE posts (
		id                VARCHAR PRIMARY KEY,
		title             TEXT NOT NULL,
		content           TEXT NOT NULL,
		processed_content TEXT,
		original_url      TEXT NOT NULL DEFAULT '',
		source            VARCHAR NOT NULL DEFAULT '',
		platforms         JSONB NOT NULL DEFAULT '[]',
		status            VARCHAR NOT NULL DEFAULT 'pending',
		ai_processed      BOOLEAN NOT NULL DEFAULT FALSE,
		thread_data       JSONB,
		niche             VARCHAR NOT NULL DEFAULT 'technology',
		similarity_score  DOUBLE PRECISION,
		created_at        TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		posted_at         TIMESTAMP WITH TIME ZONE
	);

	CREATE TABLE post_queue (
		id            VARCHAR PRIMARY KEY,
		post_id       VARCHAR NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		platform      VARCHAR NOT NULL,
		scheduled_for TIMESTAMP WITH TIME ZONE NOT NULL,
		status        VARCHAR NOT NULL DEFAULT 'scheduled',
		retry_count   INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		created_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE analytics (
		id              VARCHAR PRIMARY KEY,
		post_id         VARCHAR NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		platform        VARCHAR NOT NULL,
		likes           INTEGER NOT NULL DEFAULT 0,
		shares          INTEGER NOT NULL DEFAULT 0,
		comments        INTEGER NOT NULL DEFAULT 0,
		retweets        INTEGER NOT NULL DEFAULT 0,
		impressions     INTEGER NOT NULL DEFAULT 0,
		engagement_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE engagement_log (
		id             VARCHAR PRIMARY KEY,
		action_type    VARCHAR NOT NULL,
		platform       VARCHAR NOT NULL,
		target_account VARCHAR NOT NULL DEFAULT '',
		target_post_id VARCHAR NOT NULL DEFAULT '',
		content        TEXT NOT NULL DEFAULT '',
		success        BOOLEAN NOT NULL DEFAULT FALSE,
		error_message  TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE activity_feed (
		id          VARCHAR PRIMARY KEY,
		type        VARCHAR NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		metadata    JSONB,
		created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE configuration (
		id          VARCHAR PRIMARY KEY,
		key         VARCHAR NOT NULL UNIQUE,
		value       JSONB NOT NULL,
		description TEXT,
		updated_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);
	`)
	return err
}

func downInitSchema(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE configuration;
	DROP TABLE activity_feed;
	DROP TABLE engagement_log;
	DROP TABLE analytics;
	DROP TABLE post_queue;
	DROP TABLE posts;
	`)
	return err
}
