package app

import (
	"gorm.io/gorm"

	"go-workforce/internal/holiday"
	"go-workforce/internal/scheduler"
	"go-workforce/internal/team"
	"go-workforce/internal/timeoff"
	"go-workforce/internal/user"
)

const outboxDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
    id UUID PRIMARY KEY,
    aggregate_type VARCHAR(50) NOT NULL,
    aggregate_id UUID NOT NULL,
    event_type VARCHAR(100) NOT NULL,
    topic VARCHAR(200) NOT NULL,
    payload JSONB NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'pending',
    retry_count INT NOT NULL DEFAULT 0,
    error_message VARCHAR(500),
    next_retry_at TIMESTAMPTZ,
    processed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_due
    ON outbox_events (created_at) WHERE status <> 'sent';
`

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&team.Team{},
		&holiday.Holiday{},
		&timeoff.TimeOffRequest{},
		&timeoff.Approval{},
		&scheduler.ScheduledDeletion{},
	); err != nil {
		return err
	}
	return db.Exec(outboxDDL).Error
}
