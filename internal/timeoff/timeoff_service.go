package timeoff

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"
	timeofferrors "go-workforce/internal/timeoff/errors"
)

const dateLayout = "2006-01-02"

// Service drives the request lifecycle. All multi-step mutations run in
// a single database transaction; notification rows go through the
// outbox inside the same transaction so they are atomic with the state
// change but delivered asynchronously.
type Service struct {
	db        *sql.DB
	requests  RequestRepository
	approvals ApprovalRepository
	ledger    BalanceLedger
	teams     TeamDirectory
	calendar  HolidayCalendar
	scheduler DeletionScheduler
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	requests RequestRepository,
	approvals ApprovalRepository,
	ledger BalanceLedger,
	teams TeamDirectory,
	calendar HolidayCalendar,
	scheduler DeletionScheduler,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) *Service {
	l := zap.L().Named("timeoff_service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Service{
		db:        db,
		requests:  requests,
		approvals: approvals,
		ledger:    ledger,
		teams:     teams,
		calendar:  calendar,
		scheduler: scheduler,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *Service) Create(ctx context.Context, creatorID string, in CreateTimeOffRequest) (*TimeOffResponse, error) {
	creator, err := uuid.Parse(creatorID)
	if err != nil {
		return nil, timeofferrors.ErrInvalidUserID
	}
	if !ValidType(in.Type) {
		return nil, timeofferrors.ErrInvalidRequestType
	}

	start, end, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	duration, err := s.workingDays(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to compute working days", zap.Error(err))
		return nil, err
	}
	if duration == 0 {
		return nil, timeofferrors.ErrZeroDuration
	}

	existing, err := s.requests.FindByCreator(ctx, creatorID)
	if err != nil {
		s.logger.Error("failed to load requests for overlap check", zap.Error(err))
		return nil, err
	}
	if overlapsAny(existing, start, end, uuid.Nil) {
		return nil, timeofferrors.ErrOverlappingRequest
	}

	req := &TimeOffRequest{
		ID:          uuid.New(),
		CreatorID:   creator,
		Type:        in.Type,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		Duration:    duration,
		Status:      StatusCreated,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ledger := s.ledger.WithTx(tx)
	if _, err := ledger.FindUser(ctx, creatorID); err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrUserNotFound
		}
		return nil, err
	}
	if err := ledger.DecreaseRemainingDays(ctx, creatorID, duration, in.Type); err != nil {
		return nil, err
	}
	if err := s.requests.WithTx(tx).Create(ctx, req); err != nil {
		s.logger.Error("failed to create time off request", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("time off request created",
		zap.String("request_id", req.ID.String()),
		zap.String("creator_id", creatorID),
		zap.Int("duration", duration))

	resp := toResponse(req)
	return &resp, nil
}

func (s *Service) GetAll(ctx context.Context) ([]TimeOffResponse, error) {
	reqs, err := s.requests.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(reqs), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*TimeOffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, timeofferrors.ErrInvalidRequestID
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrRequestNotFound
		}
		return nil, err
	}
	resp := toResponse(req)
	return &resp, nil
}

func (s *Service) GetByCreator(ctx context.Context, creatorID string) ([]TimeOffResponse, error) {
	if _, err := uuid.Parse(creatorID); err != nil {
		return nil, timeofferrors.ErrInvalidUserID
	}
	reqs, err := s.requests.FindByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return toResponses(reqs), nil
}

func (s *Service) GetByStatus(ctx context.Context, status string) ([]TimeOffResponse, error) {
	reqs, err := s.requests.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return toResponses(reqs), nil
}

// Update is allowed only while the request is still CREATED. The old
// reservation is returned and the new one taken inside one transaction,
// so a refused re-reservation leaves the original reservation intact.
func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateTimeOffRequest) (*TimeOffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, timeofferrors.ErrInvalidRequestID
	}

	start, end, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	duration, err := s.workingDays(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if duration == 0 {
		return nil, timeofferrors.ErrZeroDuration
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	requests := s.requests.WithTx(tx)

	req, err := requests.FindByIDForUpdate(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrRequestNotFound
		}
		return nil, err
	}
	if req.CreatorID.String() != callerID {
		return nil, timeofferrors.ErrNotCreator
	}
	if req.Status != StatusCreated {
		return nil, timeofferrors.ErrNotEditable
	}

	existing, err := requests.FindByCreator(ctx, req.CreatorID.String())
	if err != nil {
		return nil, err
	}
	if overlapsAny(existing, start, end, req.ID) {
		return nil, timeofferrors.ErrOverlappingRequest
	}

	ledger := s.ledger.WithTx(tx)
	if err := ledger.IncreaseRemainingDays(ctx, req.CreatorID.String(), req.Duration, req.Type); err != nil {
		return nil, err
	}
	if err := ledger.DecreaseRemainingDays(ctx, req.CreatorID.String(), duration, req.Type); err != nil {
		return nil, err
	}

	req.Description = in.Description
	req.StartDate = start
	req.EndDate = end
	req.Duration = duration

	if err := requests.Update(ctx, req); err != nil {
		s.logger.Error("failed to update time off request", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	resp := toResponse(req)
	return &resp, nil
}

// Delete hard-removes the request. A request that never reached a
// terminal status still holds its reservation, which is returned to the
// creator here. Non-admin callers may only delete their own requests.
func (s *Service) Delete(ctx context.Context, callerID string, isAdmin bool, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return timeofferrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	requests := s.requests.WithTx(tx)

	req, err := requests.FindByIDForUpdate(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return timeofferrors.ErrRequestNotFound
		}
		return err
	}
	if !isAdmin && req.CreatorID.String() != callerID {
		return timeofferrors.ErrNotCreator
	}

	if err := s.approvals.WithTx(tx).RemoveForRequest(ctx, id); err != nil {
		return err
	}
	if req.Open() {
		if err := s.ledger.WithTx(tx).IncreaseRemainingDays(ctx, req.CreatorID.String(), req.Duration, req.Type); err != nil {
			return err
		}
	}
	if err := requests.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("time off request deleted", zap.String("request_id", id))
	return nil
}

// Submit moves a CREATED request to AWAITED, creating one pending
// approval per working team leader of the creator. Sick requests and
// requests with no eligible approver are approved on the spot.
func (s *Service) Submit(ctx context.Context, callerID, id string) (*TimeOffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, timeofferrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	requests := s.requests.WithTx(tx)

	req, err := requests.FindByIDForUpdate(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrRequestNotFound
		}
		return nil, err
	}
	if req.CreatorID.String() != callerID {
		return nil, timeofferrors.ErrNotCreator
	}
	if req.Status != StatusCreated {
		return nil, timeofferrors.ErrAlreadySubmitted
	}

	creator, err := s.ledger.WithTx(tx).FindUser(ctx, req.CreatorID.String())
	if err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrUserNotFound
		}
		return nil, err
	}

	leaders, err := s.teams.DistinctLeadersOf(ctx, req.CreatorID.String())
	if err != nil {
		return nil, err
	}
	approvers := workingOnly(leaders)

	if req.Type == TypeSick || len(approvers) == 0 {
		req.Status = StatusApproved
		if err := requests.Update(ctx, req); err != nil {
			return nil, err
		}
		if err := s.enqueueOutcome(ctx, tx, req, creator, true); err != nil {
			s.logger.Warn("failed to enqueue approval notification", zap.Error(err))
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		resp := toResponse(req)
		return &resp, nil
	}

	pending := make([]Approval, 0, len(approvers))
	emails := make([]string, 0, len(approvers))
	for _, a := range approvers {
		approverID, err := uuid.Parse(a.ID)
		if err != nil {
			return nil, err
		}
		pending = append(pending, Approval{
			ID:         uuid.New(),
			RequestID:  req.ID,
			ApproverID: approverID,
			Status:     ApprovalPending,
		})
		emails = append(emails, a.Email)
	}

	if err := s.approvals.WithTx(tx).CreateBatch(ctx, pending); err != nil {
		return nil, err
	}

	req.Status = StatusAwaited
	req.ApproverEmails = emails
	if err := requests.Update(ctx, req); err != nil {
		return nil, err
	}

	if err := s.enqueueSubmitted(ctx, tx, req, creator, emails); err != nil {
		s.logger.Warn("failed to enqueue submission notification", zap.Error(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("time off request submitted",
		zap.String("request_id", id),
		zap.Int("approvers", len(approvers)))

	resp := toResponse(req)
	return &resp, nil
}

// Vote records one approver's decision and re-evaluates the aggregate:
// any rejection vetoes the request, a full set of approvals resolves it,
// anything in between consumes the approval and keeps the request
// AWAITED. The row lock taken on the request serializes concurrent
// votes so the aggregate is always evaluated against a settled set.
func (s *Service) Vote(ctx context.Context, approverID, requestID string, approved bool) (*TimeOffResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, timeofferrors.ErrInvalidRequestID
	}
	if _, err := uuid.Parse(approverID); err != nil {
		return nil, timeofferrors.ErrInvalidUserID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	requests := s.requests.WithTx(tx)
	approvals := s.approvals.WithTx(tx)

	req, err := requests.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != StatusAwaited {
		return nil, timeofferrors.ErrNotAwaitingApproval
	}

	approval, err := approvals.FindPending(ctx, requestID, approverID)
	if err != nil {
		if isNotFound(err) {
			return nil, timeofferrors.ErrApprovalNotFound
		}
		return nil, err
	}

	voteStatus := ApprovalApproved
	if !approved {
		voteStatus = ApprovalRejected
	}
	if err := approvals.SetStatus(ctx, approval.ID.String(), voteStatus); err != nil {
		return nil, err
	}

	all, err := approvals.FindForRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	anyRejected := false
	allApproved := true
	for _, a := range all {
		if a.Status == ApprovalRejected {
			anyRejected = true
		}
		if a.Status != ApprovalApproved {
			allApproved = false
		}
	}

	switch {
	case anyRejected:
		req.Status = StatusRejected
		if err := s.ledger.WithTx(tx).IncreaseRemainingDays(ctx, req.CreatorID.String(), req.Duration, req.Type); err != nil {
			return nil, err
		}
		if err := approvals.RemoveForRequest(ctx, requestID); err != nil {
			return nil, err
		}
	case allApproved:
		req.Status = StatusApproved
		if err := approvals.RemoveForRequest(ctx, requestID); err != nil {
			return nil, err
		}
	default:
		// The vote is folded into the aggregate; the record itself is
		// spent and removed so a second vote reads as not found.
		if err := approvals.Remove(ctx, approval.ID.String()); err != nil {
			return nil, err
		}
	}

	if err := requests.Update(ctx, req); err != nil {
		return nil, err
	}

	if req.Status == StatusApproved || req.Status == StatusRejected {
		creator, err := s.ledger.WithTx(tx).FindUser(ctx, req.CreatorID.String())
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if err == nil {
			if err := s.enqueueOutcome(ctx, tx, req, creator, req.Status == StatusApproved); err != nil {
				s.logger.Warn("failed to enqueue outcome notification", zap.Error(err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("vote recorded",
		zap.String("request_id", requestID),
		zap.String("approver_id", approverID),
		zap.Bool("approved", approved),
		zap.String("status", req.Status))

	resp := toResponse(req)
	return &resp, nil
}

// CancelPendingRequests flips every CREATED or AWAITED request of the
// user to CANCELLED, returning reservations and dropping outstanding
// approvals. Reports ErrNoPendingRequests when there is nothing to do.
func (s *Service) CancelPendingRequests(ctx context.Context, userID string) (int, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, timeofferrors.ErrInvalidUserID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	requests := s.requests.WithTx(tx)
	approvals := s.approvals.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	pending, err := requests.FindByCreatorAndStatuses(ctx, userID, StatusCreated, StatusAwaited)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, timeofferrors.ErrNoPendingRequests
	}

	for i := range pending {
		req := &pending[i]
		if err := approvals.RemoveForRequest(ctx, req.ID.String()); err != nil {
			return 0, err
		}
		if err := ledger.IncreaseRemainingDays(ctx, userID, req.Duration, req.Type); err != nil {
			return 0, err
		}
		if err := requests.SetStatus(ctx, req.ID.String(), StatusCancelled); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info("pending requests cancelled",
		zap.String("user_id", userID),
		zap.Int("count", len(pending)))

	return len(pending), nil
}

// HasOpenApprovals reports whether the user still holds pending
// approvals on other people's requests.
func (s *Service) HasOpenApprovals(ctx context.Context, approverID string) (bool, error) {
	count, err := s.approvals.CountPendingByApprover(ctx, approverID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) ScheduleRequestsDeletion(ctx context.Context, userID string) error {
	return s.scheduler.Schedule(ctx, userID)
}

// PurgeForCreator hard-deletes every request of the user. Used by the
// deferred cleanup job once the deletion horizon has passed; balances
// are not touched since the account is already deactivated.
func (s *Service) PurgeForCreator(ctx context.Context, userID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	requests := s.requests.WithTx(tx)
	approvals := s.approvals.WithTx(tx)

	reqs, err := requests.FindByCreator(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range reqs {
		id := reqs[i].ID.String()
		if err := approvals.RemoveForRequest(ctx, id); err != nil {
			return 0, err
		}
		if err := requests.Delete(ctx, id); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(reqs), nil
}

// workingDays counts days in [start, end] that are neither weekend days
// nor holiday calendar entries.
func (s *Service) workingDays(ctx context.Context, start, end time.Time) (int, error) {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		holiday, err := s.calendar.Exists(ctx, d)
		if err != nil {
			return 0, err
		}
		if !holiday {
			days++
		}
	}
	return days, nil
}

func (s *Service) enqueueSubmitted(ctx context.Context, tx *sql.Tx, req *TimeOffRequest, creator LedgerUser, recipients []string) error {
	return s.enqueue(ctx, tx, req, events.EventTypeRequestSubmitted, events.TimeOffNotification{
		EventType:   events.EventTypeRequestSubmitted,
		RequestID:   req.ID.String(),
		RequestType: req.Type,
		CreatorName: creator.FullName,
		StartDate:   req.StartDate.Format(dateLayout),
		EndDate:     req.EndDate.Format(dateLayout),
		Duration:    req.Duration,
		Description: req.Description,
		Recipients:  recipients,
		OccurredAt:  time.Now().UTC(),
	})
}

func (s *Service) enqueueOutcome(ctx context.Context, tx *sql.Tx, req *TimeOffRequest, creator LedgerUser, approved bool) error {
	recipients := []string{creator.Email}
	recipients = append(recipients, req.ApproverEmails...)
	if approved {
		teammates, err := s.teams.TeammateEmailsOf(ctx, req.CreatorID.String())
		if err != nil {
			s.logger.Warn("failed to resolve teammates for notification", zap.Error(err))
		} else {
			recipients = append(recipients, teammates...)
		}
	}

	return s.enqueue(ctx, tx, req, events.EventTypeRequestOutcome, events.TimeOffNotification{
		EventType:   events.EventTypeRequestOutcome,
		RequestID:   req.ID.String(),
		RequestType: req.Type,
		CreatorName: creator.FullName,
		StartDate:   req.StartDate.Format(dateLayout),
		EndDate:     req.EndDate.Format(dateLayout),
		Duration:    req.Duration,
		Description: req.Description,
		Approved:    approved,
		Recipients:  dedupe(recipients),
		OccurredAt:  time.Now().UTC(),
	})
}

func (s *Service) enqueue(ctx context.Context, tx *sql.Tx, req *TimeOffRequest, eventType string, payload events.TimeOffNotification) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "timeoff_request",
		AggregateID:   req.ID.String(),
		EventType:     eventType,
		Topic:         events.TimeOffNotificationTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, timeofferrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, timeofferrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, timeofferrors.ErrInvalidDateRange
	}
	return start, end, nil
}

// overlapsAny reports whether [start, end] intersects any existing
// request's range, inclusive on both ends. The request identified by
// skip is left out of the comparison so updates do not collide with
// themselves.
func overlapsAny(existing []TimeOffRequest, start, end time.Time, skip uuid.UUID) bool {
	for i := range existing {
		r := &existing[i]
		if r.ID == skip {
			continue
		}
		if !start.After(r.EndDate) && !r.StartDate.After(end) {
			return true
		}
	}
	return false
}

func workingOnly(leaders []Approver) []Approver {
	out := make([]Approver, 0, len(leaders))
	for _, l := range leaders {
		if l.IsWorking {
			out = append(out, l)
		}
	}
	return out
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows)
}

func toResponse(r *TimeOffRequest) TimeOffResponse {
	return TimeOffResponse{
		ID:             r.ID.String(),
		CreatorID:      r.CreatorID.String(),
		Type:           r.Type,
		Description:    r.Description,
		StartDate:      r.StartDate.Format(dateLayout),
		EndDate:        r.EndDate.Format(dateLayout),
		Duration:       r.Duration,
		Status:         r.Status,
		ApproverEmails: r.ApproverEmails,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
}

func toResponses(reqs []TimeOffRequest) []TimeOffResponse {
	out := make([]TimeOffResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toResponse(&reqs[i]))
	}
	return out
}
