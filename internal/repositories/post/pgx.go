package post

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

var columns = []string{
	"id", "title", "content", "processed_content", "original_url", "source", "platforms",
	"status", "ai_processed", "thread_data", "niche", "similarity_score", "created_at", "posted_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, post domain.Post) (*domain.Post, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Status == "" {
		post.Status = domain.PostStatusPending
	}
	if post.Niche == "" {
		post.Niche = domain.DefaultNiche
	}
	post.CreatedAt = time.Now().UTC()

	platforms, err := json.Marshal(post.Platforms)
	if err != nil {
		return nil, err
	}
	thread, err := marshalThread(post.ThreadData)
	if err != nil {
		return nil, err
	}

	query, args, err := repositories.SqBuilder.
		Insert("posts").
		Columns(columns...).
		Values(post.ID, post.Title, post.Content, nullString(post.ProcessedContent), post.OriginalURL, post.Source,
			platforms, string(post.Status), post.AIProcessed, thread, post.Niche, post.Similarity,
			post.CreatedAt, post.PostedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err = p.pg.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return &post, nil
}

func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	post, err := scanPost(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (p *Pgx) GetRecent(ctx context.Context, limit int) ([]*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("posts").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (p *Pgx) Update(ctx context.Context, id string, upd domain.PostUpdate) error {
	b := repositories.SqBuilder.Update("posts").Where(sq.Eq{"id": id})
	changed := false

	if upd.ProcessedContent != nil {
		b = b.Set("processed_content", *upd.ProcessedContent)
		changed = true
	}
	if upd.AIProcessed != nil {
		b = b.Set("ai_processed", *upd.AIProcessed)
		changed = true
	}
	if upd.Status != nil {
		b = b.Set("status", string(*upd.Status))
		changed = true
	}
	if upd.PostedAt != nil {
		b = b.Set("posted_at", *upd.PostedAt)
		changed = true
	}
	if upd.ThreadData != nil {
		thread, err := marshalThread(upd.ThreadData)
		if err != nil {
			return err
		}
		b = b.Set("thread_data", thread)
		changed = true
	}
	if !changed {
		return nil
	}

	query, args, err := b.ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Pgx) CountSince(ctx context.Context, since time.Time) (int, error) {
	query, args, err := repositories.SqBuilder.
		Select("COUNT(*)").
		From("posts").
		Where(sq.GtOrEq{"created_at": since}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var n int
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanPost(row repositories.Scanner) (*domain.Post, error) {
	var (
		post      domain.Post
		processed *string
		platforms []byte
		thread    []byte
		status    string
	)
	err := row.Scan(&post.ID, &post.Title, &post.Content, &processed, &post.OriginalURL, &post.Source,
		&platforms, &status, &post.AIProcessed, &thread, &post.Niche, &post.Similarity,
		&post.CreatedAt, &post.PostedAt)
	if err != nil {
		return nil, err
	}

	post.Status = domain.PostStatus(status)
	if processed != nil {
		post.ProcessedContent = *processed
	}
	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &post.Platforms); err != nil {
			return nil, err
		}
	}
	if len(thread) > 0 {
		if err := json.Unmarshal(thread, &post.ThreadData); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

func marshalThread(thread []string) ([]byte, error) {
	if thread == nil {
		return nil, nil
	}
	return json.Marshal(thread)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
