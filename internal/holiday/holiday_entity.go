package holiday

import (
	"time"

	"github.com/google/uuid"
)

// Holiday is one configured non-working day. Weekends are seeded as
// rows too, so duration math needs no weekday logic.
type Holiday struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date time.Time `gorm:"type:date;not null;uniqueIndex:idx_holidays_date"`
	Name string    `gorm:"type:varchar(120)"`

	CreatedAt time.Time
}
