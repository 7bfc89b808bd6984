package app

import (
	"go.uber.org/zap"

	"go-workforce/internal/bootstrap"
	"go-workforce/internal/shared/connection"
)

// RunAPI connects the backing services, wires the registry and blocks
// serving HTTP until shutdown.
func RunAPI(cfg Config) error {
	db, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, 5,
	)
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		zap.L().Warn("redis unavailable, holiday cache disabled", zap.Error(err))
		rdb = nil
	}

	if err := Migrate(db); err != nil {
		return err
	}

	registry, err := BuildRegistry(db, rdb)
	if err != nil {
		return err
	}

	bootstrap.StartHTTPServer(registry.Router(), cfg.Server, bootstrap.NewStdoutAuditLogger())
	return nil
}
