package session

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

var columns = []string{"id", "platform", "session_data", "user_agent", "is_active", "last_used", "created_at"}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("BrowserSessionRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) GetActive(ctx context.Context, platform domain.Platform) (*domain.BrowserSession, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("browser_sessions").
		Where(sq.Eq{"platform": string(platform), "is_active": true}).
		OrderBy("last_used DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var (
		s           domain.BrowserSession
		platformCol string
		data        []byte
	)
	err = p.pg.QueryRow(ctx, query, args...).Scan(&s.ID, &platformCol, &data, &s.UserAgent, &s.IsActive,
		&s.LastUsed, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Platform = domain.Platform(platformCol)
	s.SessionData = data
	return &s, nil
}

func (p *Pgx) Save(ctx context.Context, s domain.BrowserSession) (*domain.BrowserSession, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.IsActive = true
	s.LastUsed, s.CreatedAt = now, now

	tx, err := p.pg.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := repositories.SqBuilder.
		Update("browser_sessions").
		Set("is_active", false).
		Where(sq.Eq{"platform": string(s.Platform), "is_active": true}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, err
	}

	query, args, err = repositories.SqBuilder.
		Insert("browser_sessions").
		Columns(columns...).
		Values(s.ID, string(s.Platform), []byte(s.SessionData), s.UserAgent, s.IsActive, s.LastUsed, s.CreatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Pgx) Touch(ctx context.Context, id string, at time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("browser_sessions").
		Set("last_used", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) Deactivate(ctx context.Context, platform domain.Platform) error {
	query, args, err := repositories.SqBuilder.
		Update("browser_sessions").
		Set("is_active", false).
		Where(sq.Eq{"platform": string(platform)}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
