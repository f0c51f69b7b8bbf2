package target

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("TargetAccountRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, t domain.TargetAccount) (*domain.TargetAccount, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Niche == "" {
		t.Niche = domain.DefaultNiche
	}
	t.CreatedAt = time.Now().UTC()

	query, args, err := repositories.SqBuilder.
		Insert("target_accounts").
		Columns("id", "platform", "username", "engagement_type", "niche", "is_active", "created_at").
		Values(t.ID, string(t.Platform), t.Username, string(t.Type), t.Niche, t.IsActive, t.CreatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &t, nil
}

func (p *Pgx) ListActive(ctx context.Context, platform domain.Platform, typ domain.EngagementType) ([]*domain.TargetAccount, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "platform", "username", "engagement_type", "niche", "is_active", "created_at").
		From("target_accounts").
		Where(sq.Eq{"platform": string(platform), "engagement_type": string(typ), "is_active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TargetAccount
	for rows.Next() {
		var (
			t                domain.TargetAccount
			platformCol, typ string
		)
		if err := rows.Scan(&t.ID, &platformCol, &t.Username, &typ, &t.Niche, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Platform = domain.Platform(platformCol)
		t.Type = domain.EngagementType(typ)
		out = append(out, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pgx) SetActive(ctx context.Context, id string, active bool) error {
	query, args, err := repositories.SqBuilder.
		Update("target_accounts").
		Set("is_active", active).
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
