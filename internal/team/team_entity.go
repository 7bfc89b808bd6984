package team

import (
	"time"

	"github.com/google/uuid"

	"go-workforce/internal/user"
)

type Team struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	LeaderID uuid.UUID `gorm:"type:uuid;not null;index"`

	Members []user.User `gorm:"many2many:team_members"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
