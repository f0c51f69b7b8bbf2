package analytics

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

var columns = []string{
	"id", "post_id", "platform", "likes", "shares", "comments", "retweets", "impressions",
	"engagement_rate", "created_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("AnalyticsRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, a domain.Analytics) (*domain.Analytics, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()

	query, args, err := repositories.SqBuilder.
		Insert("analytics").
		Columns(columns...).
		Values(a.ID, a.PostID, string(a.Platform), a.Likes, a.Shares, a.Comments, a.Retweets,
			a.Impressions, a.EngagementRate, a.CreatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *Pgx) Get(ctx context.Context, postID string, platform domain.Platform) (*domain.Analytics, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("analytics").
		Where(sq.Eq{"post_id": postID, "platform": string(platform)}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	a, err := scanAnalytics(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (p *Pgx) Update(ctx context.Context, id string, m domain.EngagementMetrics, rate float64) error {
	query, args, err := repositories.SqBuilder.
		Update("analytics").
		SetMap(map[string]any{
			"likes":           m.Likes,
			"shares":          m.Shares,
			"comments":        m.Comments,
			"retweets":        m.Retweets,
			"impressions":     m.Impressions,
			"engagement_rate": rate,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
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

func (p *Pgx) ListSince(ctx context.Context, since time.Time) ([]*domain.Analytics, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("analytics").
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analytics
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAnalytics(row repositories.Scanner) (*domain.Analytics, error) {
	var (
		a        domain.Analytics
		platform string
	)
	if err := row.Scan(&a.ID, &a.PostID, &platform, &a.Likes, &a.Shares, &a.Comments, &a.Retweets,
		&a.Impressions, &a.EngagementRate, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Platform = domain.Platform(platform)
	return &a, nil
}
