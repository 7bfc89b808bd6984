package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-workforce/internal/rbac"
	timeofferrors "go-workforce/internal/timeoff/errors"
	usererrors "go-workforce/internal/user/errors"
)

// Yearly allocation applied when an account is activated and rolled
// forward at new year.
const (
	InitialPaidDays   = 20
	InitialUnpaidDays = 90
	InitialSickDays   = 40
)

// TeamMembership is the slice of the team service the deactivation
// cascade needs.
type TeamMembership interface {
	LeadsAnyTeam(ctx context.Context, userID string) (bool, error)
	RemoveFromAllTeams(ctx context.Context, userID string) error
}

// WorkflowEngine is the slice of the time-off engine the deactivation
// cascade needs.
type WorkflowEngine interface {
	CancelPendingRequests(ctx context.Context, userID string) (int, error)
	HasOpenApprovals(ctx context.Context, userID string) (bool, error)
	ScheduleRequestsDeletion(ctx context.Context, userID string) error
}

type Service struct {
	repo     Repository
	teams    TeamMembership
	requests WorkflowEngine
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	teams TeamMembership,
	requests WorkflowEngine,
	logger ...*zap.Logger,
) *Service {
	l := zap.L().Named("user_service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Service{repo: repo, teams: teams, requests: requests, logger: l}
}

func (s *Service) Create(ctx context.Context, in CreateUserRequest) (*UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = rbac.RoleMember
	}

	u := &User{
		ID:           uuid.New(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsWorking:    true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, usererrors.ErrEmailExists
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", u.ID.String()))

	resp := toResponse(u)
	return &resp, nil
}

func (s *Service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	resp := toResponse(u)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateUserRequest) (*UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}

	u.FirstName = in.FirstName
	u.LastName = in.LastName
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := toResponse(u)
	return &resp, nil
}

// SetInitialDaysOff applies the standard allocation once per account;
// repeated calls fail instead of silently resetting balances.
func (s *Service) SetInitialDaysOff(ctx context.Context, id string) (*DaysOffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}

	affected, err := s.repo.SetInitialDaysOff(ctx, id, InitialPaidDays, InitialUnpaidDays, InitialSickDays)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, usererrors.ErrDaysAlreadySet
	}

	return &DaysOffResponse{
		Paid:   InitialPaidDays,
		Unpaid: InitialUnpaidDays,
		Sick:   InitialSickDays,
	}, nil
}

// Delete deactivates the account: leadership must be reassigned first,
// then the user is pulled out of every team (resolving in-flight
// approvals through the membership cascade), their open requests are
// cancelled, and the request purge is scheduled for the deletion
// horizon. The row itself stays until the purge job runs.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usererrors.ErrInvalidUserID
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return err
	}

	leads, err := s.teams.LeadsAnyTeam(ctx, id)
	if err != nil {
		return err
	}
	if leads {
		return usererrors.ErrUserLeadsTeam
	}

	if err := s.teams.RemoveFromAllTeams(ctx, id); err != nil {
		return err
	}

	if _, err := s.requests.CancelPendingRequests(ctx, id); err != nil &&
		!errors.Is(err, timeofferrors.ErrNoPendingRequests) {
		return err
	}

	open, err := s.requests.HasOpenApprovals(ctx, id)
	if err != nil {
		return err
	}
	if open {
		return usererrors.ErrHasOpenApprovals
	}

	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return err
	}

	if err := s.requests.ScheduleRequestsDeletion(ctx, id); err != nil {
		// The account is already deactivated; a missed schedule only
		// delays cleanup.
		s.logger.Warn("failed to schedule request deletion",
			zap.String("user_id", id), zap.Error(err))
	}

	s.logger.Info("user deactivated", zap.String("user_id", id))
	return nil
}

// ResetYearlyAllowances is invoked by the new-year job.
func (s *Service) ResetYearlyAllowances(ctx context.Context) (int64, error) {
	affected, err := s.repo.ResetYearlyAllowances(ctx, InitialPaidDays, InitialUnpaidDays, InitialSickDays)
	if err != nil {
		s.logger.Error("yearly allowance reset failed", zap.Error(err))
		return 0, err
	}
	s.logger.Info("yearly allowances reset", zap.Int64("users", affected))
	return affected, nil
}

// RefreshWorkingStatus is invoked daily to sync is_working with
// approved leave spanning the current date.
func (s *Service) RefreshWorkingStatus(ctx context.Context, now time.Time) (int64, error) {
	affected, err := s.repo.RefreshWorkingStatus(ctx, now)
	if err != nil {
		s.logger.Error("working status refresh failed", zap.Error(err))
		return 0, err
	}
	if affected > 0 {
		s.logger.Info("working status refreshed", zap.Int64("users", affected))
	}
	return affected, nil
}

func toResponse(u *User) UserResponse {
	return UserResponse{
		ID:                  u.ID.String(),
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Email:               u.Email,
		Role:                u.Role,
		IsWorking:           u.IsWorking,
		InitialDaysSet:      u.InitialDaysSet,
		RemainingPaidDays:   u.RemainingPaidDays,
		RemainingUnpaidDays: u.RemainingUnpaidDays,
		RemainingSickDays:   u.RemainingSickDays,
	}
}
