package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

var columns = []string{"id", "post_id", "platform", "scheduled_for", "status", "retry_count", "error_message", "created_at"}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("QueueRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, item domain.QueueItem) (*domain.QueueItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = domain.QueueStatusScheduled
	}
	item.CreatedAt = time.Now().UTC()

	query, args, err := repositories.SqBuilder.
		Insert("post_queue").
		Columns(columns...).
		Values(item.ID, item.PostID, string(item.Platform), item.ScheduledFor, string(item.Status),
			item.RetryCount, nullString(item.Error), item.CreatedAt).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return &item, nil
}

func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.QueueItem, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From("post_queue").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	item, err := scanItem(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (p *Pgx) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.QueueItem, error) {
	return p.list(ctx, repositories.SqBuilder.
		Select(columns...).
		From("post_queue").
		Where(sq.Eq{"status": string(domain.QueueStatusScheduled)}).
		Where(sq.LtOrEq{"scheduled_for": now}).
		OrderBy("scheduled_for ASC").
		Limit(uint64(limit)))
}

func (p *Pgx) ListByPost(ctx context.Context, postID string) ([]*domain.QueueItem, error) {
	return p.list(ctx, repositories.SqBuilder.
		Select(columns...).
		From("post_queue").
		Where(sq.Eq{"post_id": postID}).
		OrderBy("created_at ASC"))
}

func (p *Pgx) ListRecent(ctx context.Context, status domain.QueueStatus, limit int) ([]*domain.QueueItem, error) {
	b := repositories.SqBuilder.
		Select(columns...).
		From("post_queue").
		OrderBy("scheduled_for DESC").
		Limit(uint64(limit))
	if status != "" {
		b = b.Where(sq.Eq{"status": string(status)})
	}
	return p.list(ctx, b)
}

func (p *Pgx) Transition(ctx context.Context, id string, from, to domain.QueueStatus, errMsg string) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("queue item %s: illegal transition %s -> %s", id, from, to)
	}

	query, args, err := repositories.SqBuilder.
		Update("post_queue").
		Set("status", string(to)).
		Set("error_message", nullString(errMsg)).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStaleStatus
	}
	return nil
}

func (p *Pgx) CountByStatus(ctx context.Context) (map[domain.QueueStatus]int, error) {
	query, args, err := repositories.SqBuilder.
		Select("status", "COUNT(*)").
		From("post_queue").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.QueueStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.QueueStatus(status)] = n
	}
	return counts, rows.Err()
}

func (p *Pgx) list(ctx context.Context, b sq.SelectBuilder) ([]*domain.QueueItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.QueueItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanItem(row repositories.Scanner) (*domain.QueueItem, error) {
	var (
		item             domain.QueueItem
		platform, status string
		errMsg           *string
	)
	if err := row.Scan(&item.ID, &item.PostID, &platform, &item.ScheduledFor, &status,
		&item.RetryCount, &errMsg, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Platform = domain.Platform(platform)
	item.Status = domain.QueueStatus(status)
	if errMsg != nil {
		item.Error = *errMsg
	}
	return &item, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
