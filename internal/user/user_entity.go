package user

import (
	"time"

	"github.com/google/uuid"
)

// User carries both directory identity and the per-type leave counters
// the workflow engine draws on. Counters are mutated only through the
// repository's atomic increase/decrease operations.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName string    `gorm:"type:varchar(100);not null"`
	LastName  string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`

	PasswordHash string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"`

	IsWorking bool `gorm:"not null;default:true"`
	IsDeleted bool `gorm:"not null;default:false"`

	InitialDaysSet      bool `gorm:"not null;default:false"`
	InitialPaidDays     int  `gorm:"not null;default:0"`
	RemainingPaidDays   int  `gorm:"not null;default:0"`
	InitialUnpaidDays   int  `gorm:"not null;default:0"`
	RemainingUnpaidDays int  `gorm:"not null;default:0"`
	InitialSickDays     int  `gorm:"not null;default:0"`
	RemainingSickDays   int  `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
