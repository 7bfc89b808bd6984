package timeoff

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-workforce/internal/messaging/kafka"
	timeofferrors "go-workforce/internal/timeoff/errors"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

type balanceMove struct {
	userID string
	days   int
	typ    string
}

type fakeLedger struct {
	user        LedgerUser
	userErr     error
	decreaseErr error
	increases   []balanceMove
	decreases   []balanceMove
}

func (f *fakeLedger) WithTx(tx *sql.Tx) BalanceLedger { return f }

func (f *fakeLedger) FindUser(ctx context.Context, id string) (LedgerUser, error) {
	if f.userErr != nil {
		return LedgerUser{}, f.userErr
	}
	return f.user, nil
}

func (f *fakeLedger) IncreaseRemainingDays(ctx context.Context, userID string, days int, typ string) error {
	f.increases = append(f.increases, balanceMove{userID, days, typ})
	return nil
}

func (f *fakeLedger) DecreaseRemainingDays(ctx context.Context, userID string, days int, typ string) error {
	if f.decreaseErr != nil {
		return f.decreaseErr
	}
	f.decreases = append(f.decreases, balanceMove{userID, days, typ})
	return nil
}

type fakeRequestRepo struct {
	findByIDForUpdateFn        func(ctx context.Context, id string) (*TimeOffRequest, error)
	findByCreatorFn            func(ctx context.Context, creatorID string) ([]TimeOffRequest, error)
	findByCreatorAndStatusesFn func(ctx context.Context, creatorID string, statuses ...string) ([]TimeOffRequest, error)

	created    []*TimeOffRequest
	updated    []*TimeOffRequest
	statusSets map[string]string
	deleted    []string
}

func (f *fakeRequestRepo) WithTx(tx *sql.Tx) RequestRepository { return f }

func (f *fakeRequestRepo) Create(ctx context.Context, r *TimeOffRequest) error {
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRequestRepo) FindByID(ctx context.Context, id string) (*TimeOffRequest, error) {
	return f.findByIDForUpdateFn(ctx, id)
}

func (f *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id string) (*TimeOffRequest, error) {
	return f.findByIDForUpdateFn(ctx, id)
}

func (f *fakeRequestRepo) FindAll(ctx context.Context) ([]TimeOffRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindByCreator(ctx context.Context, creatorID string) ([]TimeOffRequest, error) {
	if f.findByCreatorFn == nil {
		return nil, nil
	}
	return f.findByCreatorFn(ctx, creatorID)
}

func (f *fakeRequestRepo) FindByStatus(ctx context.Context, status string) ([]TimeOffRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) FindByCreatorAndStatuses(ctx context.Context, creatorID string, statuses ...string) ([]TimeOffRequest, error) {
	if f.findByCreatorAndStatusesFn == nil {
		return nil, nil
	}
	return f.findByCreatorAndStatusesFn(ctx, creatorID, statuses...)
}

func (f *fakeRequestRepo) Update(ctx context.Context, r *TimeOffRequest) error {
	f.updated = append(f.updated, r)
	return nil
}

func (f *fakeRequestRepo) SetStatus(ctx context.Context, id, status string) error {
	if f.statusSets == nil {
		f.statusSets = make(map[string]string)
	}
	f.statusSets[id] = status
	return nil
}

func (f *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeApprovalRepo struct {
	findPendingFn    func(ctx context.Context, requestID, approverID string) (*Approval, error)
	findForRequestFn func(ctx context.Context, requestID string) ([]Approval, error)
	pendingCount     int64

	createdBatches    [][]Approval
	statusSets        map[string]string
	removed           []string
	removedForRequest []string
}

func (f *fakeApprovalRepo) WithTx(tx *sql.Tx) ApprovalRepository { return f }

func (f *fakeApprovalRepo) CreateBatch(ctx context.Context, approvals []Approval) error {
	f.createdBatches = append(f.createdBatches, approvals)
	return nil
}

func (f *fakeApprovalRepo) FindForRequest(ctx context.Context, requestID string) ([]Approval, error) {
	if f.findForRequestFn == nil {
		return nil, nil
	}
	return f.findForRequestFn(ctx, requestID)
}

func (f *fakeApprovalRepo) FindPending(ctx context.Context, requestID, approverID string) (*Approval, error) {
	if f.findPendingFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findPendingFn(ctx, requestID, approverID)
}

func (f *fakeApprovalRepo) CountPendingByApprover(ctx context.Context, approverID string) (int64, error) {
	return f.pendingCount, nil
}

func (f *fakeApprovalRepo) SetStatus(ctx context.Context, id, status string) error {
	if f.statusSets == nil {
		f.statusSets = make(map[string]string)
	}
	f.statusSets[id] = status
	return nil
}

func (f *fakeApprovalRepo) Remove(ctx context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeApprovalRepo) RemoveForRequest(ctx context.Context, requestID string) error {
	f.removedForRequest = append(f.removedForRequest, requestID)
	return nil
}

type fakeTeams struct {
	leaders   []Approver
	teammates []string
}

func (f *fakeTeams) DistinctLeadersOf(ctx context.Context, userID string) ([]Approver, error) {
	return f.leaders, nil
}

func (f *fakeTeams) TeammateEmailsOf(ctx context.Context, userID string) ([]string, error) {
	return f.teammates, nil
}

type fakeCalendar struct {
	holidays map[string]bool
}

func (f *fakeCalendar) Exists(ctx context.Context, date time.Time) (bool, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

type fakeScheduler struct {
	scheduled []string
}

func (f *fakeScheduler) Schedule(ctx context.Context, userID string) error {
	f.scheduled = append(f.scheduled, userID)
	return nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ListDue(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error   { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, r string) error { return nil }

type engineFixture struct {
	service   *Service
	mock      sqlmock.Sqlmock
	requests  *fakeRequestRepo
	approvals *fakeApprovalRepo
	ledger    *fakeLedger
	teams     *fakeTeams
	calendar  *fakeCalendar
	scheduler *fakeScheduler
	outbox    *fakeOutbox
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &engineFixture{
		mock:      mock,
		requests:  &fakeRequestRepo{},
		approvals: &fakeApprovalRepo{},
		ledger:    &fakeLedger{},
		teams:     &fakeTeams{},
		calendar:  &fakeCalendar{holidays: map[string]bool{}},
		scheduler: &fakeScheduler{},
		outbox:    &fakeOutbox{},
	}
	f.service = NewService(
		db,
		f.requests,
		f.approvals,
		f.ledger,
		f.teams,
		f.calendar,
		f.scheduler,
		f.outbox,
		zap.NewNop(),
	)
	return f
}

func awaitedRequest(creator uuid.UUID) *TimeOffRequest {
	return &TimeOffRequest{
		ID:        uuid.New(),
		CreatorID: creator,
		Type:      TypePaid,
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		Duration:  5,
		Status:    StatusAwaited,
	}
}

func TestCreate(t *testing.T) {
	creator := uuid.New()

	t.Run("reserves working days and persists", func(t *testing.T) {
		f := newEngineFixture(t)
		f.calendar.holidays["2026-01-07"] = true
		f.ledger.user = LedgerUser{ID: creator.String(), Email: "ann@corp.test"}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      TypePaid,
			StartDate: "2026-01-05",
			EndDate:   "2026-01-09",
		})

		require.NoError(t, err)
		assert.Equal(t, 4, resp.Duration)
		assert.Equal(t, StatusCreated, resp.Status)
		require.Len(t, f.ledger.decreases, 1)
		assert.Equal(t, balanceMove{creator.String(), 4, TypePaid}, f.ledger.decreases[0])
		require.Len(t, f.requests.created, 1)
	})

	t.Run("weekend only range is refused", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      TypePaid,
			StartDate: "2026-01-10",
			EndDate:   "2026-01-11",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrZeroDuration)
		assert.Empty(t, f.ledger.decreases)
	})

	t.Run("start after end is refused", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      TypePaid,
			StartDate: "2026-01-09",
			EndDate:   "2026-01-05",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidDateRange)
	})

	t.Run("insufficient balance rolls back", func(t *testing.T) {
		f := newEngineFixture(t)
		f.ledger.decreaseErr = timeofferrors.ErrInsufficientDays
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      TypePaid,
			StartDate: "2026-01-05",
			EndDate:   "2026-01-09",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInsufficientDays)
		assert.Empty(t, f.requests.created)
	})

	t.Run("unknown type is refused", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      "SABBATICAL",
			StartDate: "2026-01-05",
			EndDate:   "2026-01-09",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidRequestType)
	})
}

func TestCreateOverlap(t *testing.T) {
	creator := uuid.New()

	existing := func(start, end string) []TimeOffRequest {
		return []TimeOffRequest{{
			ID:        uuid.New(),
			CreatorID: creator,
			Type:      TypePaid,
			StartDate: day(t, start),
			EndDate:   day(t, end),
			Status:    StatusApproved,
		}}
	}

	t.Run("touching ranges overlap", func(t *testing.T) {
		f := newEngineFixture(t)
		f.requests.findByCreatorFn = func(ctx context.Context, id string) ([]TimeOffRequest, error) {
			return existing("2026-01-12", "2026-01-15"), nil
		}

		_, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      TypePaid,
			StartDate: "2026-01-15",
			EndDate:   "2026-01-20",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrOverlappingRequest)
	})

	t.Run("adjacent ranges do not overlap", func(t *testing.T) {
		f := newEngineFixture(t)
		f.requests.findByCreatorFn = func(ctx context.Context, id string) ([]TimeOffRequest, error) {
			return existing("2026-01-12", "2026-01-14"), nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		_, err := f.service.Create(context.Background(), creator.String(), CreateTimeOffRequest{
			Type:      TypePaid,
			StartDate: "2026-01-15",
			EndDate:   "2026-01-20",
		})

		assert.NoError(t, err)
	})
}

func TestSubmit(t *testing.T) {
	creator := uuid.New()

	createdRequest := func(typ string) *TimeOffRequest {
		return &TimeOffRequest{
			ID:        uuid.New(),
			CreatorID: creator,
			Type:      typ,
			StartDate: day(t, "2026-01-05"),
			EndDate:   day(t, "2026-01-09"),
			Duration:  5,
			Status:    StatusCreated,
		}
	}

	t.Run("creates one pending approval per working leader", func(t *testing.T) {
		f := newEngineFixture(t)
		req := createdRequest(TypePaid)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.ledger.user = LedgerUser{ID: creator.String(), Email: "ann@corp.test", FullName: "Ann Bell"}
		f.teams.leaders = []Approver{
			{ID: uuid.NewString(), Email: "lead1@corp.test", IsWorking: true},
			{ID: uuid.NewString(), Email: "lead2@corp.test", IsWorking: true},
			{ID: uuid.NewString(), Email: "away@corp.test", IsWorking: false},
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Submit(context.Background(), creator.String(), req.ID.String())

		require.NoError(t, err)
		assert.Equal(t, StatusAwaited, resp.Status)
		require.Len(t, f.approvals.createdBatches, 1)
		assert.Len(t, f.approvals.createdBatches[0], 2)
		assert.Equal(t, []string{"lead1@corp.test", "lead2@corp.test"}, resp.ApproverEmails)
		require.Len(t, f.outbox.events, 1)
		assert.Equal(t, "timeoff.request_submitted", f.outbox.events[0].EventType)
	})

	t.Run("sick request auto approves without approvals", func(t *testing.T) {
		f := newEngineFixture(t)
		req := createdRequest(TypeSick)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.ledger.user = LedgerUser{ID: creator.String(), Email: "ann@corp.test"}
		f.teams.leaders = []Approver{{ID: uuid.NewString(), Email: "lead1@corp.test", IsWorking: true}}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Submit(context.Background(), creator.String(), req.ID.String())

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Empty(t, f.approvals.createdBatches)
	})

	t.Run("no eligible approver auto approves", func(t *testing.T) {
		f := newEngineFixture(t)
		req := createdRequest(TypePaid)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.ledger.user = LedgerUser{ID: creator.String(), Email: "ann@corp.test"}
		f.teams.leaders = []Approver{{ID: uuid.NewString(), Email: "away@corp.test", IsWorking: false}}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Submit(context.Background(), creator.String(), req.ID.String())

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Empty(t, f.approvals.createdBatches)
	})

	t.Run("only the creator may submit", func(t *testing.T) {
		f := newEngineFixture(t)
		req := createdRequest(TypePaid)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Submit(context.Background(), uuid.NewString(), req.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrNotCreator)
	})

	t.Run("resubmission is refused", func(t *testing.T) {
		f := newEngineFixture(t)
		req := createdRequest(TypePaid)
		req.Status = StatusAwaited
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Submit(context.Background(), creator.String(), req.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrAlreadySubmitted)
	})
}

func TestVote(t *testing.T) {
	creator := uuid.New()
	approverA := uuid.New()
	approverB := uuid.New()

	t.Run("intermediate approval consumes the record and stays awaited", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		mine := Approval{ID: uuid.New(), RequestID: req.ID, ApproverID: approverA, Status: ApprovalPending}
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.approvals.findPendingFn = func(ctx context.Context, rid, aid string) (*Approval, error) {
			return &mine, nil
		}
		f.approvals.findForRequestFn = func(ctx context.Context, rid string) ([]Approval, error) {
			return []Approval{
				{ID: mine.ID, RequestID: req.ID, ApproverID: approverA, Status: ApprovalApproved},
				{ID: uuid.New(), RequestID: req.ID, ApproverID: approverB, Status: ApprovalPending},
			}, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Vote(context.Background(), approverA.String(), req.ID.String(), true)

		require.NoError(t, err)
		assert.Equal(t, StatusAwaited, resp.Status)
		assert.Equal(t, []string{mine.ID.String()}, f.approvals.removed)
		assert.Empty(t, f.approvals.removedForRequest)
		assert.Empty(t, f.ledger.increases)
	})

	t.Run("single rejection vetoes and restores the reservation", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		req.ApproverEmails = []string{"lead1@corp.test", "lead2@corp.test"}
		mine := Approval{ID: uuid.New(), RequestID: req.ID, ApproverID: approverB, Status: ApprovalPending}
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.approvals.findPendingFn = func(ctx context.Context, rid, aid string) (*Approval, error) {
			return &mine, nil
		}
		f.approvals.findForRequestFn = func(ctx context.Context, rid string) ([]Approval, error) {
			return []Approval{
				{ID: uuid.New(), RequestID: req.ID, ApproverID: approverA, Status: ApprovalApproved},
				{ID: mine.ID, RequestID: req.ID, ApproverID: approverB, Status: ApprovalRejected},
			}, nil
		}
		f.ledger.user = LedgerUser{ID: creator.String(), Email: "ann@corp.test"}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Vote(context.Background(), approverB.String(), req.ID.String(), false)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		require.Len(t, f.ledger.increases, 1)
		assert.Equal(t, balanceMove{creator.String(), 5, TypePaid}, f.ledger.increases[0])
		assert.Equal(t, []string{req.ID.String()}, f.approvals.removedForRequest)
		require.Len(t, f.outbox.events, 1)
		assert.Equal(t, "timeoff.request_outcome", f.outbox.events[0].EventType)
	})

	t.Run("last approval resolves the request", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		mine := Approval{ID: uuid.New(), RequestID: req.ID, ApproverID: approverB, Status: ApprovalPending}
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.approvals.findPendingFn = func(ctx context.Context, rid, aid string) (*Approval, error) {
			return &mine, nil
		}
		f.approvals.findForRequestFn = func(ctx context.Context, rid string) ([]Approval, error) {
			return []Approval{
				{ID: mine.ID, RequestID: req.ID, ApproverID: approverB, Status: ApprovalApproved},
			}, nil
		}
		f.ledger.user = LedgerUser{ID: creator.String(), Email: "ann@corp.test"}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Vote(context.Background(), approverB.String(), req.ID.String(), true)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Empty(t, f.ledger.increases)
		assert.Equal(t, []string{req.ID.String()}, f.approvals.removedForRequest)
	})

	t.Run("second vote by the same approver reads as not found", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.approvals.findPendingFn = func(ctx context.Context, rid, aid string) (*Approval, error) {
			return nil, gorm.ErrRecordNotFound
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Vote(context.Background(), approverA.String(), req.ID.String(), true)

		assert.ErrorIs(t, err, timeofferrors.ErrApprovalNotFound)
	})

	t.Run("voting on a resolved request is refused", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		req.Status = StatusApproved
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Vote(context.Background(), approverA.String(), req.ID.String(), true)

		assert.ErrorIs(t, err, timeofferrors.ErrNotAwaitingApproval)
	})

	t.Run("missing request is refused", func(t *testing.T) {
		f := newEngineFixture(t)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Vote(context.Background(), approverA.String(), uuid.NewString(), true)

		assert.ErrorIs(t, err, timeofferrors.ErrRequestNotFound)
	})
}

func TestUpdate(t *testing.T) {
	creator := uuid.New()

	t.Run("restores the old reservation and takes the new one", func(t *testing.T) {
		f := newEngineFixture(t)
		req := &TimeOffRequest{
			ID:        uuid.New(),
			CreatorID: creator,
			Type:      TypePaid,
			StartDate: day(t, "2026-01-05"),
			EndDate:   day(t, "2026-01-09"),
			Duration:  5,
			Status:    StatusCreated,
		}
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		resp, err := f.service.Update(context.Background(), creator.String(), req.ID.String(), UpdateTimeOffRequest{
			StartDate: "2026-01-05",
			EndDate:   "2026-01-06",
		})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Duration)
		require.Len(t, f.ledger.increases, 1)
		assert.Equal(t, balanceMove{creator.String(), 5, TypePaid}, f.ledger.increases[0])
		require.Len(t, f.ledger.decreases, 1)
		assert.Equal(t, balanceMove{creator.String(), 2, TypePaid}, f.ledger.decreases[0])
	})

	t.Run("refused re-reservation keeps the original via rollback", func(t *testing.T) {
		f := newEngineFixture(t)
		req := &TimeOffRequest{
			ID:        uuid.New(),
			CreatorID: creator,
			Type:      TypePaid,
			StartDate: day(t, "2026-01-05"),
			EndDate:   day(t, "2026-01-06"),
			Duration:  2,
			Status:    StatusCreated,
		}
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.ledger.decreaseErr = timeofferrors.ErrInsufficientDays
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Update(context.Background(), creator.String(), req.ID.String(), UpdateTimeOffRequest{
			StartDate: "2026-01-05",
			EndDate:   "2026-01-16",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInsufficientDays)
		assert.Empty(t, f.requests.updated)
	})

	t.Run("only requests still created can change", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.Update(context.Background(), creator.String(), req.ID.String(), UpdateTimeOffRequest{
			StartDate: "2026-01-05",
			EndDate:   "2026-01-06",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrNotEditable)
	})
}

func TestDelete(t *testing.T) {
	creator := uuid.New()

	t.Run("open request returns its reservation", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		err := f.service.Delete(context.Background(), creator.String(), false, req.ID.String())

		require.NoError(t, err)
		require.Len(t, f.ledger.increases, 1)
		assert.Equal(t, balanceMove{creator.String(), 5, TypePaid}, f.ledger.increases[0])
		assert.Equal(t, []string{req.ID.String()}, f.approvals.removedForRequest)
		assert.Equal(t, []string{req.ID.String()}, f.requests.deleted)
	})

	t.Run("terminal request does not restore balance", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		req.Status = StatusApproved
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		err := f.service.Delete(context.Background(), creator.String(), false, req.ID.String())

		require.NoError(t, err)
		assert.Empty(t, f.ledger.increases)
		assert.Equal(t, []string{req.ID.String()}, f.requests.deleted)
	})

	t.Run("someone else's request needs admin", func(t *testing.T) {
		f := newEngineFixture(t)
		req := awaitedRequest(creator)
		f.requests.findByIDForUpdateFn = func(ctx context.Context, id string) (*TimeOffRequest, error) {
			return req, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		err := f.service.Delete(context.Background(), uuid.NewString(), false, req.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrNotCreator)
	})
}

func TestCancelPendingRequests(t *testing.T) {
	creator := uuid.New()

	t.Run("flips every open request and restores balances", func(t *testing.T) {
		f := newEngineFixture(t)
		first := awaitedRequest(creator)
		second := awaitedRequest(creator)
		second.Status = StatusCreated
		second.Type = TypeUnpaid
		second.Duration = 3
		f.requests.findByCreatorAndStatusesFn = func(ctx context.Context, id string, statuses ...string) ([]TimeOffRequest, error) {
			assert.ElementsMatch(t, []string{StatusCreated, StatusAwaited}, statuses)
			return []TimeOffRequest{*first, *second}, nil
		}
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		count, err := f.service.CancelPendingRequests(context.Background(), creator.String())

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, StatusCancelled, f.requests.statusSets[first.ID.String()])
		assert.Equal(t, StatusCancelled, f.requests.statusSets[second.ID.String()])
		assert.ElementsMatch(t, []balanceMove{
			{creator.String(), 5, TypePaid},
			{creator.String(), 3, TypeUnpaid},
		}, f.ledger.increases)
	})

	t.Run("nothing to cancel reports no pending requests", func(t *testing.T) {
		f := newEngineFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.service.CancelPendingRequests(context.Background(), creator.String())

		assert.ErrorIs(t, err, timeofferrors.ErrNoPendingRequests)
	})
}

func TestHasOpenApprovals(t *testing.T) {
	f := newEngineFixture(t)
	f.approvals.pendingCount = 2

	open, err := f.service.HasOpenApprovals(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.True(t, open)
}

func TestScheduleRequestsDeletion(t *testing.T) {
	f := newEngineFixture(t)
	id := uuid.NewString()

	require.NoError(t, f.service.ScheduleRequestsDeletion(context.Background(), id))
	assert.Equal(t, []string{id}, f.scheduler.scheduled)
}
