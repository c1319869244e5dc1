package pgstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/orgball2608/insta-daily-poster/internal/record"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
)

// querier is the part of *pgxpool.Pool the store needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store keeps posted filenames as (date, filename) rows. The primary key makes Append
// idempotent and safe against concurrent writers.
type Store struct {
	pg     querier
	logger logger.Logger
	now    func() time.Time
}

var _ record.Repository = (*Store)(nil)

func New(pg querier, log logger.Logger) *Store {
	return &Store{
		pg:     pg,
		logger: log.WithComponent("PgRecordStore"),
		now:    time.Now,
	}
}

func loadQuery(date string) (string, []any, error) {
	return sqBuilder.
		Select("filename").
		From(table).
		Where(sq.Eq{"date": date}).
		OrderBy("filename").
		ToSql()
}

func appendQuery(date, filename string, at time.Time) (string, []any, error) {
	return sqBuilder.
		Insert(table).
		Columns("date", "filename", "posted_at").
		Values(date, filename, at).
		Suffix("ON CONFLICT (date, filename) DO NOTHING").
		ToSql()
}

// Load needs no lazy creation: a day without rows is an empty record.
func (s *Store) Load(ctx context.Context, date string) (map[string]struct{}, error) {
	query, args, err := loadQuery(date)
	if err != nil {
		return nil, ErrBadQuery
	}

	rows, err := s.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load posted images for %s: %w", date, err)
	}
	defer rows.Close()

	posted := make(map[string]struct{})
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		posted[filename] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posted, nil
}

func (s *Store) Append(ctx context.Context, date string, filename string) error {
	query, args, err := appendQuery(date, filename, s.now())
	if err != nil {
		return ErrBadQuery
	}

	tag, err := s.pg.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("append posted image %s/%s: %w", date, filename, err)
	}

	s.logger.Debug("Record updated", "date", date, "filename", filename, "inserted", tag.RowsAffected())
	return nil
}
