package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	teamerrors "go-workforce/internal/team/errors"
	"go-workforce/internal/timeoff"
	timeofferrors "go-workforce/internal/timeoff/errors"
	"go-workforce/internal/user"
)

// WorkflowEngine is the slice of the time-off engine the membership
// cascade drives votes through.
type WorkflowEngine interface {
	Vote(ctx context.Context, approverID, requestID string, approved bool) (*timeoff.TimeOffResponse, error)
	GetByCreator(ctx context.Context, creatorID string) ([]timeoff.TimeOffResponse, error)
}

type Service struct {
	repo     Repository
	users    user.Repository
	requests WorkflowEngine
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	users user.Repository,
	requests WorkflowEngine,
	logger ...*zap.Logger,
) *Service {
	l := zap.L().Named("team_service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Service{repo: repo, users: users, requests: requests, logger: l}
}

func (s *Service) Create(ctx context.Context, in CreateTeamRequest) (*TeamResponse, error) {
	leader, err := s.users.FindByID(ctx, in.LeaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamerrors.ErrLeaderNotFound
		}
		return nil, err
	}

	t := &Team{
		ID:       uuid.New(),
		Name:     in.Name,
		LeaderID: leader.ID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, teamerrors.ErrTeamExists
		}
		s.logger.Error("failed to create team", zap.Error(err))
		return nil, err
	}

	s.logger.Info("team created", zap.String("team_id", t.ID.String()))

	resp := toTeamResponse(t)
	return &resp, nil
}

func (s *Service) GetAll(ctx context.Context) ([]TeamResponse, error) {
	teams, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TeamResponse, 0, len(teams))
	for i := range teams {
		out = append(out, toTeamResponse(&teams[i]))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*TeamResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, teamerrors.ErrInvalidTeamID
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamerrors.ErrTeamNotFound
		}
		return nil, err
	}
	resp := toTeamResponse(t)
	return &resp, nil
}

// Update renames the team and may hand it to a new leader. A leader
// change severs the old leader's authority over every member, so each
// member who is not reachable under the old leader through another team
// gets their in-flight approvals resolved before the handover.
func (s *Service) Update(ctx context.Context, id string, in UpdateTeamRequest) (*TeamResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, teamerrors.ErrInvalidTeamID
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamerrors.ErrTeamNotFound
		}
		return nil, err
	}

	newLeader, err := s.users.FindByID(ctx, in.LeaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamerrors.ErrLeaderNotFound
		}
		return nil, err
	}

	if newLeader.ID != t.LeaderID {
		oldLeader := t.LeaderID.String()
		for i := range t.Members {
			if err := s.cascadeSeveredAuthority(ctx, oldLeader, t.Members[i].ID.String(), t.ID); err != nil {
				return nil, err
			}
		}
	}

	t.Name = in.Name
	t.LeaderID = newLeader.ID
	if err := s.repo.Update(ctx, t); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, teamerrors.ErrTeamExists
		}
		return nil, err
	}

	resp := toTeamResponse(t)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return teamerrors.ErrInvalidTeamID
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return teamerrors.ErrTeamNotFound
		}
		return err
	}

	leader := t.LeaderID.String()
	for i := range t.Members {
		if err := s.cascadeSeveredAuthority(ctx, leader, t.Members[i].ID.String(), t.ID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("team deleted", zap.String("team_id", id))
	return nil
}

func (s *Service) AddMember(ctx context.Context, teamID, userID string) error {
	if _, err := uuid.Parse(teamID); err != nil {
		return teamerrors.ErrInvalidTeamID
	}

	if _, err := s.repo.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return teamerrors.ErrTeamNotFound
		}
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return teamerrors.ErrMemberNotFound
		}
		return err
	}

	member, err := s.repo.IsMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if member {
		return teamerrors.ErrAlreadyMember
	}

	return s.repo.AddMember(ctx, teamID, userID)
}

func (s *Service) RemoveMember(ctx context.Context, teamID, userID string) error {
	if _, err := uuid.Parse(teamID); err != nil {
		return teamerrors.ErrInvalidTeamID
	}

	t, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return teamerrors.ErrTeamNotFound
		}
		return err
	}

	member, err := s.repo.IsMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !member {
		return teamerrors.ErrNotAMember
	}

	if err := s.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}

	return s.cascadeSeveredAuthority(ctx, t.LeaderID.String(), userID, uuid.Nil)
}

// LeadsAnyTeam satisfies the user deactivation contract.
func (s *Service) LeadsAnyTeam(ctx context.Context, userID string) (bool, error) {
	count, err := s.repo.CountLedBy(ctx, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RemoveFromAllTeams pulls the user out of every team they belong to,
// running the authority cascade per team.
func (s *Service) RemoveFromAllTeams(ctx context.Context, userID string) error {
	teams, err := s.repo.TeamsOf(ctx, userID)
	if err != nil {
		return err
	}
	for i := range teams {
		if err := s.repo.RemoveMember(ctx, teams[i].ID.String(), userID); err != nil {
			return err
		}
		if err := s.cascadeSeveredAuthority(ctx, teams[i].LeaderID.String(), userID, uuid.Nil); err != nil {
			return err
		}
	}
	return nil
}

// cascadeSeveredAuthority resolves the leader's outstanding approvals on
// the member's awaited requests once the member is no longer reachable
// under that leader. The implicit vote is an approve, so a leader who
// lost authority cannot keep a request pending.
func (s *Service) cascadeSeveredAuthority(ctx context.Context, leaderID, memberID string, excludeTeamID uuid.UUID) error {
	reachable, err := s.repo.ReachableUnderLeader(ctx, leaderID, memberID, excludeTeamID)
	if err != nil {
		return err
	}
	if reachable {
		return nil
	}

	requests, err := s.requests.GetByCreator(ctx, memberID)
	if err != nil {
		return err
	}

	for _, req := range requests {
		if req.Status != timeoff.StatusAwaited {
			continue
		}
		_, err := s.requests.Vote(ctx, leaderID, req.ID, true)
		if err == nil {
			s.logger.Info("approval resolved by membership change",
				zap.String("request_id", req.ID),
				zap.String("leader_id", leaderID))
			continue
		}
		// The leader may have voted already, or the request may have
		// resolved while iterating.
		if errors.Is(err, timeofferrors.ErrApprovalNotFound) ||
			errors.Is(err, timeofferrors.ErrNotAwaitingApproval) {
			continue
		}
		return err
	}
	return nil
}

func toTeamResponse(t *Team) TeamResponse {
	members := make([]string, 0, len(t.Members))
	for i := range t.Members {
		members = append(members, t.Members[i].ID.String())
	}
	return TeamResponse{
		ID:       t.ID.String(),
		Name:     t.Name,
		LeaderID: t.LeaderID.String(),
		Members:  members,
	}
}
