package engagement

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

var columns = []string{
	"id", "action_type", "platform", "target_account", "target_post_id", "content", "success",
	"error_message", "created_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("EngagementRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, e domain.EngagementLogEntry) (*domain.EngagementLogEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()

	query, args, err := repositories.SqBuilder.
		Insert("engagement_log").
		Columns(columns...).
		Values(e.ID, string(e.Type), string(e.Platform), e.TargetAccount, e.TargetPostID, e.Content,
			e.Success, e.Error, e.CreatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (p *Pgx) GetRecent(ctx context.Context, limit int) ([]*domain.EngagementLogEntry, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("engagement_log").
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

	var entries []*domain.EngagementLogEntry
	for rows.Next() {
		var (
			e             domain.EngagementLogEntry
			typ, platform string
		)
		if err := rows.Scan(&e.ID, &typ, &platform, &e.TargetAccount, &e.TargetPostID, &e.Content,
			&e.Success, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.EngagementType(typ)
		e.Platform = domain.Platform(platform)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *Pgx) CountSince(ctx context.Context, typ domain.EngagementType, since time.Time) (int, error) {
	query, args, err := repositories.SqBuilder.
		Select("COUNT(*)").
		From("engagement_log").
		Where(sq.Eq{"action_type": string(typ), "success": true}).
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
