package app

import (
	"context"
	"os/signal"
	"syscall"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka/consumer"
	"go-workforce/internal/notification"
)

// RunConsumer reads notification events off Kafka and delivers them by
// email until shutdown.
func RunConsumer(cfg Config) error {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		GroupID: "workforce-notifications",
		Topic:   events.TimeOffNotificationTopic,
	})
	defer reader.Close()

	mailer := notification.NewSMTPMailer(cfg.SMTP)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeTimeOffNotifications(ctx, reader, mailer, zap.L())
	return nil
}
