package timeoff

import (
	"context"
	"database/sql"
	"time"
)

// The engine consumes its collaborators through the narrow contracts
// below. Implementations live in the user, team, holiday and scheduler
// packages and are wired in the registry; the engine never imports
// them.

// LedgerUser is the slice of a directory record the engine needs:
// identity for balance accounting, email for notifications.
type LedgerUser struct {
	ID        string
	Email     string
	FullName  string
	IsWorking bool
}

// BalanceLedger reserves and restores remaining-day counters. Decrease
// must be atomic: it either deducts the full amount or fails with
// ErrInsufficientDays leaving the counter untouched.
type BalanceLedger interface {
	WithTx(tx *sql.Tx) BalanceLedger
	FindUser(ctx context.Context, id string) (LedgerUser, error)
	IncreaseRemainingDays(ctx context.Context, userID string, days int, requestType string) error
	DecreaseRemainingDays(ctx context.Context, userID string, days int, requestType string) error
}

// Approver is one candidate approver resolved from team structure.
type Approver struct {
	ID        string
	Email     string
	IsWorking bool
}

// TeamDirectory resolves organizational structure. DistinctLeadersOf
// excludes the user themselves even when they lead one of their own
// teams.
type TeamDirectory interface {
	DistinctLeadersOf(ctx context.Context, userID string) ([]Approver, error)
	TeammateEmailsOf(ctx context.Context, userID string) ([]string, error)
}

// HolidayCalendar answers whether a date is a non-working day.
type HolidayCalendar interface {
	Exists(ctx context.Context, date time.Time) (bool, error)
}

// DeletionScheduler enqueues the deferred cleanup of a user's
// requests; the job fires no sooner than the configured horizon.
type DeletionScheduler interface {
	Schedule(ctx context.Context, userID string) error
}
