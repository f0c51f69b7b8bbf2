package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
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
		logger: logger.WithComponent("ActivityRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, e domain.ActivityEvent) (*domain.ActivityEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()

	var metadata []byte
	if e.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(e.Metadata); err != nil {
			return nil, err
		}
	}

	query, args, err := repositories.SqBuilder.
		Insert("activity_feed").
		Columns("id", "type", "title", "description", "metadata", "created_at").
		Values(e.ID, string(e.Type), e.Title, e.Description, metadata, e.CreatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (p *Pgx) GetRecent(ctx context.Context, limit int) ([]*domain.ActivityEvent, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "type", "title", "description", "metadata", "created_at").
		From("activity_feed").
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

	var events []*domain.ActivityEvent
	for rows.Next() {
		var (
			e        domain.ActivityEvent
			typ      string
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &typ, &e.Title, &e.Description, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.ActivityType(typ)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				p.logger.Warn("Skipping unreadable activity metadata", "id", e.ID, "error", err)
			}
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
