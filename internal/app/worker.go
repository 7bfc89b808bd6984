package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-workforce/internal/messaging/kafka/producer"
	"go-workforce/internal/scheduler"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/user"
)

// RunWorker hosts the background loops: outbox draining, deferred
// request purges, and the daily user maintenance (working status and
// new-year allowances).
func RunWorker(cfg Config) error {
	db, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, 5,
	)
	if err != nil {
		return err
	}

	writer, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer writer.Close()

	registry, err := BuildRegistry(db, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go producer.ProcessOutboxEvents(ctx, registry.OutboxRepo, writer, zap.L(), cfg.OutboxPollInterval)
	go scheduler.ProcessDueDeletions(ctx, registry.SchedulerRepo, registry.TimeOffService,
		cfg.DeletionPollInterval, zap.L().Named("deletion_worker"))
	go runUserMaintenance(ctx, registry.UserService)

	<-ctx.Done()
	zap.L().Info("worker shutting down")
	return nil
}

// runUserMaintenance refreshes working status once per calendar day and
// rolls allowances over when the year changes.
func runUserMaintenance(ctx context.Context, users *user.Service) {
	log := zap.L().Named("user_maintenance")

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	var lastDay string
	lastYear := 0

	run := func(now time.Time) {
		day := now.Format("2006-01-02")
		if day != lastDay {
			if _, err := users.RefreshWorkingStatus(ctx, now); err == nil {
				lastDay = day
			}
		}
		if now.Year() != lastYear {
			if lastYear != 0 {
				if _, err := users.ResetYearlyAllowances(ctx); err != nil {
					log.Error("yearly reset failed", zap.Error(err))
					return
				}
			}
			lastYear = now.Year()
		}
	}

	run(time.Now())
	for {
		select {
		case <-ctx.Done():
			log.Info("user maintenance stopped")
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
