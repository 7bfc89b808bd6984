package timeoff

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePaid   = "PAID"
	TypeUnpaid = "UNPAID"
	TypeSick   = "SICK"
)

const (
	StatusCreated   = "CREATED"
	StatusAwaited   = "AWAITED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// TimeOffRequest is the aggregate the workflow engine drives through
// CREATED -> AWAITED -> APPROVED/REJECTED (or CANCELLED). Duration is
// derived from the holiday calendar, never supplied by the caller.
// ApproverEmails is a snapshot taken at submit time; the live leader
// set may drift afterwards.
type TimeOffRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index:idx_timeoff_creator_status"`

	Type        string    `gorm:"type:varchar(10);not null"`
	Description string    `gorm:"type:text"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	Duration    int       `gorm:"type:int;not null"`

	Status         string   `gorm:"type:varchar(12);not null;default:'CREATED';index:idx_timeoff_creator_status"`
	ApproverEmails []string `gorm:"serializer:json;type:jsonb"`

	Approvals []Approval `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approval is one approver's vote on one request. At most one row per
// (request, approver) pair; rows are consumed as the aggregate
// resolves.
type Approval struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_approvals_request_approver"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_approvals_request_approver"`
	Status     string    `gorm:"type:varchar(10);not null;default:'PENDING'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidType(t string) bool {
	switch t {
	case TypePaid, TypeUnpaid, TypeSick:
		return true
	default:
		return false
	}
}

// Open reports whether the request still holds a reservation that has
// to be returned on delete or cancel.
func (r *TimeOffRequest) Open() bool {
	return r.Status == StatusCreated || r.Status == StatusAwaited
}
