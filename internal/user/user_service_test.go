package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-workforce/internal/rbac"
	timeofferrors "go-workforce/internal/timeoff/errors"
	usererrors "go-workforce/internal/user/errors"
)

type fakeRepo struct {
	findByIDFn  func(ctx context.Context, id string) (*User, error)
	createErr   error
	created     []*User
	markDeleted []string

	initialDaysAffected int64
	initialDaysCalls    int
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, u)
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if f.findByIDFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByName(ctx context.Context, first, last string) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]User, error) { return nil, nil }

func (f *fakeRepo) Update(ctx context.Context, u *User) error { return nil }

func (f *fakeRepo) MarkDeleted(ctx context.Context, id string) error {
	f.markDeleted = append(f.markDeleted, id)
	return nil
}

func (f *fakeRepo) SetInitialDaysOff(ctx context.Context, id string, paid, unpaid, sick int) (int64, error) {
	f.initialDaysCalls++
	return f.initialDaysAffected, nil
}

func (f *fakeRepo) IncreaseRemainingDays(ctx context.Context, id string, days int, typ string) error {
	return nil
}

func (f *fakeRepo) DecreaseRemainingDays(ctx context.Context, id string, days int, typ string) error {
	return nil
}

func (f *fakeRepo) ResetYearlyAllowances(ctx context.Context, paidBonus, unpaid, sick int) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) RefreshWorkingStatus(ctx context.Context, today time.Time) (int64, error) {
	return 0, nil
}

type fakeMembership struct {
	leads       bool
	removedFrom []string
}

func (f *fakeMembership) LeadsAnyTeam(ctx context.Context, userID string) (bool, error) {
	return f.leads, nil
}

func (f *fakeMembership) RemoveFromAllTeams(ctx context.Context, userID string) error {
	f.removedFrom = append(f.removedFrom, userID)
	return nil
}

type fakeEngine struct {
	cancelErr     error
	cancelled     []string
	openApprovals bool
	scheduled     []string
}

func (f *fakeEngine) CancelPendingRequests(ctx context.Context, userID string) (int, error) {
	if f.cancelErr != nil {
		return 0, f.cancelErr
	}
	f.cancelled = append(f.cancelled, userID)
	return 1, nil
}

func (f *fakeEngine) HasOpenApprovals(ctx context.Context, userID string) (bool, error) {
	return f.openApprovals, nil
}

func (f *fakeEngine) ScheduleRequestsDeletion(ctx context.Context, userID string) error {
	f.scheduled = append(f.scheduled, userID)
	return nil
}

func newServiceFixture() (*Service, *fakeRepo, *fakeMembership, *fakeEngine) {
	repo := &fakeRepo{}
	teams := &fakeMembership{}
	engine := &fakeEngine{}
	svc := NewService(repo, teams, engine, zap.NewNop())
	return svc, repo, teams, engine
}

func TestCreateUser(t *testing.T) {
	t.Run("hashes the password and defaults the role", func(t *testing.T) {
		svc, repo, _, _ := newServiceFixture()

		resp, err := svc.Create(context.Background(), CreateUserRequest{
			FirstName: "Ann",
			LastName:  "Bell",
			Email:     "ann@corp.test",
			Password:  "open sesame",
		})

		require.NoError(t, err)
		assert.Equal(t, rbac.RoleMember, resp.Role)
		require.Len(t, repo.created, 1)
		stored := repo.created[0]
		assert.NotEqual(t, "open sesame", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("open sesame")))
		assert.True(t, stored.IsWorking)
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		svc, repo, _, _ := newServiceFixture()
		repo.createErr = &pgconn.PgError{Code: "23505"}

		_, err := svc.Create(context.Background(), CreateUserRequest{
			FirstName: "Ann",
			LastName:  "Bell",
			Email:     "ann@corp.test",
			Password:  "open sesame",
		})

		assert.ErrorIs(t, err, usererrors.ErrEmailExists)
	})
}

func TestSetInitialDaysOff(t *testing.T) {
	existing := &User{ID: uuid.New()}

	t.Run("applies the standard allocation once", func(t *testing.T) {
		svc, repo, _, _ := newServiceFixture()
		repo.findByIDFn = func(ctx context.Context, id string) (*User, error) { return existing, nil }
		repo.initialDaysAffected = 1

		resp, err := svc.SetInitialDaysOff(context.Background(), existing.ID.String())

		require.NoError(t, err)
		assert.Equal(t, InitialPaidDays, resp.Paid)
		assert.Equal(t, InitialUnpaidDays, resp.Unpaid)
		assert.Equal(t, InitialSickDays, resp.Sick)
	})

	t.Run("second call is refused", func(t *testing.T) {
		svc, repo, _, _ := newServiceFixture()
		repo.findByIDFn = func(ctx context.Context, id string) (*User, error) { return existing, nil }
		repo.initialDaysAffected = 0

		_, err := svc.SetInitialDaysOff(context.Background(), existing.ID.String())

		assert.ErrorIs(t, err, usererrors.ErrDaysAlreadySet)
	})
}

func TestDeleteUser(t *testing.T) {
	existing := &User{ID: uuid.New()}
	id := existing.ID.String()

	found := func(ctx context.Context, _ string) (*User, error) { return existing, nil }

	t.Run("runs the full deactivation cascade", func(t *testing.T) {
		svc, repo, teams, engine := newServiceFixture()
		repo.findByIDFn = found

		err := svc.Delete(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, []string{id}, teams.removedFrom)
		assert.Equal(t, []string{id}, engine.cancelled)
		assert.Equal(t, []string{id}, engine.scheduled)
		assert.Equal(t, []string{id}, repo.markDeleted)
	})

	t.Run("tolerates having nothing to cancel", func(t *testing.T) {
		svc, repo, _, engine := newServiceFixture()
		repo.findByIDFn = found
		engine.cancelErr = timeofferrors.ErrNoPendingRequests

		err := svc.Delete(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, []string{id}, repo.markDeleted)
	})

	t.Run("refuses while the user leads a team", func(t *testing.T) {
		svc, repo, teams, _ := newServiceFixture()
		repo.findByIDFn = found
		teams.leads = true

		err := svc.Delete(context.Background(), id)

		assert.ErrorIs(t, err, usererrors.ErrUserLeadsTeam)
		assert.Empty(t, repo.markDeleted)
	})

	t.Run("refuses while approvals are still pending on the user", func(t *testing.T) {
		svc, repo, _, engine := newServiceFixture()
		repo.findByIDFn = found
		engine.openApprovals = true

		err := svc.Delete(context.Background(), id)

		assert.ErrorIs(t, err, usererrors.ErrHasOpenApprovals)
		assert.Empty(t, repo.markDeleted)
	})

	t.Run("missing user maps to not found", func(t *testing.T) {
		svc, _, _, _ := newServiceFixture()

		err := svc.Delete(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}
