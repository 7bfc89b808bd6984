package consumer

import (
	"context"
	"encoding/json"

	"go-workforce/internal/events"
	"go-workforce/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeTimeOffNotifications delivers notification events through the
// mailer. Malformed messages are committed and dropped; delivery
// failures leave the message uncommitted so it is retried.
func ConsumeTimeOffNotifications(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.timeoff_notification")
	log.Info("timeoff notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("timeoff notification consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Error(err))
			continue
		}

		var event events.TimeOffNotification
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode notification event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		subject, body := notification.RenderEmail(event)
		if err := mailer.Send(ctx, event.Recipients, subject, body); err != nil {
			log.Error("deliver notification failed",
				zap.String("request_id", event.RequestID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
			continue
		}

		log.Info("notification delivered",
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
			zap.Int("recipients", len(event.Recipients)),
		)
	}
}
