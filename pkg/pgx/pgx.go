package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// PoolConfig turns the postgres settings into a pgxpool config.
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.Postgres.MaxConnIdleTime
	}
	return poolCfg, nil
}

// New builds the shared pool. The connection is verified on start.
func New(opts Opts) (*pgxpool.Pool, error) {
	log := opts.Logger.WithComponent("postgres")

	poolCfg, err := PoolConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("ping postgres: %w", err)
			}
			log.Info("Connected to postgres",
				"host", poolCfg.ConnConfig.Host,
				"database", poolCfg.ConnConfig.Database,
				"max_conns", poolCfg.MaxConns,
			)
			return nil
		},
		OnStop: func(context.Context) error {
			stat := pool.Stat()
			log.Info("Closing postgres pool", "acquired", stat.AcquiredConns(), "total", stat.TotalConns())
			pool.Close()
			return nil
		},
	})

	return pool, nil
}
