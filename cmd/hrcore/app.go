package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/hrcore-identity/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hrcore-identity/internal/platform/config"
	pgdb "github.com/ogurasousui/hrcore-identity/internal/platform/db/postgres"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/sirupsen/logrus"
)

// app はサブコマンドが共有する依存関係です。
type app struct {
	cfg       *config.Config
	logger    *logrus.Entry
	pool      *pgxpool.Pool
	tx        *pgdb.TransactionManager
	employees *postgres.EmployeeRepository
	ledger    *postgres.LedgerRepository
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// loadConfig は .env を読み込んだうえで設定とロガーを用意します。DB には接続しません。
func loadConfig(opts *rootOptions) (*config.Config, *logrus.Entry, error) {
	files := append(append([]string(nil), config.DefaultEnvFiles...), opts.envFiles...)
	if _, err := config.LoadEnvFiles(files...); err != nil {
		return nil, nil, err
	}

	path := effectiveConfigPath(opts.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logrus.NewEntry(logging.New(cfg.Log)).WithField("config", path)
	return cfg, logger, nil
}

// openApp は設定を読み込み、DB に接続します。呼び出し側で Close が必要です。
func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgdb.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	tx := pgdb.NewTransactionManager(pool,
		pgdb.WithLockTimeout(cfg.Database.LockTimeout),
		pgdb.WithLogger(logger.WithField("component", "tx")),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		tx:        tx,
		employees: postgres.NewEmployeeRepository(pool),
		ledger:    postgres.NewLedgerRepository(pool),
	}, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
