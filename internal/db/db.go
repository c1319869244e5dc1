package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-daily-poster/internal/migrations"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/pressly/goose/v3"
)

// Open connects with database/sql for goose; queries go through the pgx pool.
func Open(cfg *config.Config) (*sql.DB, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	goose.SetBaseFS(migrations.FS)

	conn, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return conn, nil
}

// Migrate applies every pending migration of the record schema.
func Migrate(ctx context.Context, cfg *config.Config) error {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("migrate record schema: %w", err)
	}
	return nil
}
