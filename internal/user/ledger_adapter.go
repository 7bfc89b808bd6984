package user

import (
	"context"
	"database/sql"
	"errors"

	"go-workforce/internal/timeoff"
	timeofferrors "go-workforce/internal/timeoff/errors"
	usererrors "go-workforce/internal/user/errors"
)

// Ledger adapts the user repository to the balance contract the
// workflow engine consumes.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) WithTx(tx *sql.Tx) timeoff.BalanceLedger {
	return &Ledger{repo: l.repo.WithTx(tx)}
}

func (l *Ledger) FindUser(ctx context.Context, id string) (timeoff.LedgerUser, error) {
	u, err := l.repo.FindByID(ctx, id)
	if err != nil {
		return timeoff.LedgerUser{}, err
	}
	return timeoff.LedgerUser{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName(),
		IsWorking: u.IsWorking,
	}, nil
}

func (l *Ledger) IncreaseRemainingDays(ctx context.Context, userID string, days int, requestType string) error {
	return l.repo.IncreaseRemainingDays(ctx, userID, days, requestType)
}

func (l *Ledger) DecreaseRemainingDays(ctx context.Context, userID string, days int, requestType string) error {
	err := l.repo.DecreaseRemainingDays(ctx, userID, days, requestType)
	if errors.Is(err, usererrors.ErrInsufficientBalance) {
		return timeofferrors.ErrInsufficientDays
	}
	return err
}
