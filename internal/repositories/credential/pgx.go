package credential

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
	"id", "platform", "account_name", "credentials", "account_type", "is_active", "last_login",
	"created_at", "updated_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("CredentialRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, c domain.SocialCredential) (*domain.SocialCredential, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	query, args, err := repositories.SqBuilder.
		Insert("social_credentials").
		Columns(columns...).
		Values(c.ID, string(c.Platform), c.AccountName, []byte(c.Credentials), c.AccountType, c.IsActive,
			c.LastLogin, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Pgx) GetActive(ctx context.Context, platform domain.Platform) (*domain.SocialCredential, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("social_credentials").
		Where(sq.Eq{"platform": string(platform), "is_active": true}).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var (
		c           domain.SocialCredential
		platformCol string
		creds       []byte
	)
	err = p.pg.QueryRow(ctx, query, args...).Scan(&c.ID, &platformCol, &c.AccountName, &creds,
		&c.AccountType, &c.IsActive, &c.LastLogin, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Platform = domain.Platform(platformCol)
	c.Credentials = creds
	return &c, nil
}

func (p *Pgx) MarkLogin(ctx context.Context, id string, at time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("social_credentials").
		Set("last_login", at).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
