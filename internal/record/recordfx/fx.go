package recordfx

import (
	"context"

	"github.com/orgball2608/insta-daily-poster/internal/db"
	"github.com/orgball2608/insta-daily-poster/internal/record"
	"github.com/orgball2608/insta-daily-poster/internal/record/filestore"
	"github.com/orgball2608/insta-daily-poster/internal/record/pgstore"
	"github.com/orgball2608/insta-daily-poster/pkg/config"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
	"github.com/orgball2608/insta-daily-poster/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Module("record_repository",
	fx.Provide(New),
)

// New picks the record backend named by RECORD_DRIVER.
func New(lc fx.Lifecycle, log logger.Logger, cfg *config.Config) (record.Repository, error) {
	if cfg.Record.Driver != config.RecordDriverPostgres {
		log.Info("Using file record store", "root", cfg.Record.Root)
		return filestore.New(cfg.Record.Root, log), nil
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return db.Migrate(ctx, cfg)
		},
	})

	pool, err := pgx.New(lc, log, cfg)
	if err != nil {
		return nil, err
	}

	log.Info("Using postgres record store", "host", cfg.Postgres.Host, "db", cfg.Postgres.Name)
	return pgstore.New(pool, log), nil
}
