package scheduler

import (
	"time"

	"github.com/google/uuid"
)

const (
	DeletionPending = "pending"
	DeletionDone    = "done"
)

// ScheduledDeletion is one queued cleanup of a deactivated user's
// requests. RunAt is set a fixed horizon into the future so recently
// resolved requests stay auditable for a while.
type ScheduledDeletion struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	RunAt  time.Time `gorm:"not null;index"`
	Status string    `gorm:"type:varchar(10);not null;default:'pending'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
