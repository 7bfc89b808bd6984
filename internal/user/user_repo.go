package user

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	usererrors "go-workforce/internal/user/errors"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByName(ctx context.Context, firstName, lastName string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	// MarkDeleted deactivates the account without removing the row; the
	// deferred cleanup job purges the user's requests later.
	MarkDeleted(ctx context.Context, id string) error
	// SetInitialDaysOff writes the allocation only when it was never set
	// before; returns the number of rows changed.
	SetInitialDaysOff(ctx context.Context, id string, paid, unpaid, sick int) (int64, error)
	IncreaseRemainingDays(ctx context.Context, id string, days int, leaveType string) error
	// DecreaseRemainingDays deducts atomically; it fails with
	// ErrInsufficientBalance and leaves the counter untouched when the
	// balance does not cover the amount.
	DecreaseRemainingDays(ctx context.Context, id string, days int, leaveType string) error
	ResetYearlyAllowances(ctx context.Context, paidBonus, unpaid, sick int) (int64, error)
	RefreshWorkingStatus(ctx context.Context, today time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.Session(&gorm.Session{Context: ctx, NewDB: true})
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "id = ? AND is_deleted = false", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "email = ? AND is_deleted = false", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByName(ctx context.Context, firstName, lastName string) (*User, error) {
	var u User
	err := r.conn(ctx).
		First(&u, "first_name = ? AND last_name = ? AND is_deleted = false", firstName, lastName).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.conn(ctx).
		Where("is_deleted = false").
		Order("last_name ASC, first_name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.conn(ctx).Save(u).Error
}

func (r *repository) MarkDeleted(ctx context.Context, id string) error {
	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]any{
			"is_deleted": true,
			"is_working": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetInitialDaysOff(ctx context.Context, id string, paid, unpaid, sick int) (int64, error) {
	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ? AND is_deleted = false AND initial_days_set = false", id).
		Updates(map[string]any{
			"initial_days_set":      true,
			"initial_paid_days":     paid,
			"remaining_paid_days":   paid,
			"initial_unpaid_days":   unpaid,
			"remaining_unpaid_days": unpaid,
			"initial_sick_days":     sick,
			"remaining_sick_days":   sick,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) IncreaseRemainingDays(ctx context.Context, id string, days int, leaveType string) error {
	column, err := balanceColumn(leaveType)
	if err != nil {
		return err
	}
	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", days))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DecreaseRemainingDays(ctx context.Context, id string, days int, leaveType string) error {
	column, err := balanceColumn(leaveType)
	if err != nil {
		return err
	}
	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ? AND "+column+" >= ?", id, days).
		Update(column, gorm.Expr(column+" - ?", days))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usererrors.ErrInsufficientBalance
	}
	return nil
}

// ResetYearlyAllowances applies the new-year allocation to every active
// account: unused paid days roll over on top of the yearly grant, unpaid
// and sick reset to the flat grant.
func (r *repository) ResetYearlyAllowances(ctx context.Context, paidBonus, unpaid, sick int) (int64, error) {
	res := r.conn(ctx).
		Model(&User{}).
		Where("is_deleted = false AND initial_days_set = true").
		Updates(map[string]any{
			"remaining_paid_days":   gorm.Expr("remaining_paid_days + ?", paidBonus),
			"remaining_unpaid_days": unpaid,
			"remaining_sick_days":   sick,
		})
	return res.RowsAffected, res.Error
}

// RefreshWorkingStatus flips is_working according to whether an
// approved request spans today.
func (r *repository) RefreshWorkingStatus(ctx context.Context, today time.Time) (int64, error) {
	day := today.Format("2006-01-02")

	away := r.conn(ctx).Exec(`
UPDATE users SET is_working = false, updated_at = NOW()
WHERE is_deleted = false AND is_working = true
  AND EXISTS (
    SELECT 1 FROM time_off_requests t
    WHERE t.creator_id = users.id AND t.status = 'APPROVED'
      AND t.start_date <= ? AND t.end_date >= ?
  )
`, day, day)
	if away.Error != nil {
		return 0, away.Error
	}

	back := r.conn(ctx).Exec(`
UPDATE users SET is_working = true, updated_at = NOW()
WHERE is_deleted = false AND is_working = false
  AND NOT EXISTS (
    SELECT 1 FROM time_off_requests t
    WHERE t.creator_id = users.id AND t.status = 'APPROVED'
      AND t.start_date <= ? AND t.end_date >= ?
  )
`, day, day)
	if back.Error != nil {
		return 0, back.Error
	}

	return away.RowsAffected + back.RowsAffected, nil
}

func balanceColumn(leaveType string) (string, error) {
	switch leaveType {
	case "PAID":
		return "remaining_paid_days", nil
	case "UNPAID":
		return "remaining_unpaid_days", nil
	case "SICK":
		return "remaining_sick_days", nil
	default:
		return "", usererrors.ErrUnknownLeaveType
	}
}
