package configuration

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

var columns = []string{"id", "key", "value", "description", "updated_at"}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("ConfigurationRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Get(ctx context.Context, key string) (*domain.Configuration, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("configuration").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	c, err := scanConfiguration(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (p *Pgx) Set(ctx context.Context, c domain.Configuration) (*domain.Configuration, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.UpdatedAt = time.Now().UTC()

	query, args, err := repositories.SqBuilder.
		Insert("configuration").
		Columns(columns...).
		Values(c.ID, c.Key, []byte(c.Value), c.Description, c.UpdatedAt).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at RETURNING id").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if err := p.pg.QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Pgx) GetAll(ctx context.Context) ([]*domain.Configuration, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("configuration").
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Configuration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanConfiguration(row repositories.Scanner) (*domain.Configuration, error) {
	var (
		c     domain.Configuration
		value []byte
		desc  *string
	)
	if err := row.Scan(&c.ID, &c.Key, &value, &desc, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Value = value
	if desc != nil {
		c.Description = *desc
	}
	return &c, nil
}
