package team

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-workforce/internal/timeoff"
)

//go:generate mockgen -source=team_repo.go -destination=mock/team_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
	FindAll(ctx context.Context) ([]Team, error)
	Update(ctx context.Context, t *Team) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)

	TeamsOf(ctx context.Context, userID string) ([]Team, error)
	CountLedBy(ctx context.Context, leaderID string) (int64, error)
	// ReachableUnderLeader reports whether the user is still a member of
	// any team the leader leads, ignoring the excluded team.
	ReachableUnderLeader(ctx context.Context, leaderID, userID string, excludeTeamID uuid.UUID) (bool, error)

	DistinctLeadersOf(ctx context.Context, userID string) ([]timeoff.Approver, error)
	TeammateEmailsOf(ctx context.Context, userID string) ([]string, error)
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

func (r *repository) Create(ctx context.Context, t *Team) error {
	return r.conn(ctx).Omit("Members").Create(t).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Team, error) {
	var t Team
	err := r.conn(ctx).
		Preload("Members").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Team, error) {
	var teams []Team
	err := r.conn(ctx).
		Preload("Members").
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *repository) Update(ctx context.Context, t *Team) error {
	return r.conn(ctx).Omit("Members").Save(t).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.conn(ctx).Exec("DELETE FROM team_members WHERE team_id = ?", id).Error; err != nil {
		return err
	}
	return r.conn(ctx).Delete(&Team{}, "id = ?", id).Error
}

func (r *repository) AddMember(ctx context.Context, teamID, userID string) error {
	return r.conn(ctx).Exec(
		"INSERT INTO team_members (team_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		teamID, userID,
	).Error
}

func (r *repository) RemoveMember(ctx context.Context, teamID, userID string) error {
	return r.conn(ctx).Exec(
		"DELETE FROM team_members WHERE team_id = ? AND user_id = ?",
		teamID, userID,
	).Error
}

func (r *repository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("team_members").
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) TeamsOf(ctx context.Context, userID string) ([]Team, error) {
	var teams []Team
	err := r.conn(ctx).
		Joins("JOIN team_members tm ON tm.team_id = teams.id").
		Where("tm.user_id = ?", userID).
		Find(&teams).Error
	return teams, err
}

func (r *repository) CountLedBy(ctx context.Context, leaderID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Team{}).
		Where("leader_id = ?", leaderID).
		Count(&count).Error
	return count, err
}

func (r *repository) ReachableUnderLeader(ctx context.Context, leaderID, userID string, excludeTeamID uuid.UUID) (bool, error) {
	var count int64
	q := r.conn(ctx).
		Model(&Team{}).
		Joins("JOIN team_members tm ON tm.team_id = teams.id").
		Where("teams.leader_id = ? AND tm.user_id = ?", leaderID, userID)
	if excludeTeamID != uuid.Nil {
		q = q.Where("teams.id <> ?", excludeTeamID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) DistinctLeadersOf(ctx context.Context, userID string) ([]timeoff.Approver, error) {
	var approvers []timeoff.Approver
	err := r.conn(ctx).Raw(`
SELECT DISTINCT u.id::text AS id, u.email, u.is_working
FROM teams t
JOIN team_members tm ON tm.team_id = t.id
JOIN users u ON u.id = t.leader_id
WHERE tm.user_id = ? AND t.leader_id <> ? AND u.is_deleted = false
`, userID, userID).Scan(&approvers).Error
	return approvers, err
}

func (r *repository) TeammateEmailsOf(ctx context.Context, userID string) ([]string, error) {
	var emails []string
	err := r.conn(ctx).Raw(`
SELECT DISTINCT u.email
FROM team_members own
JOIN team_members tm ON tm.team_id = own.team_id
JOIN users u ON u.id = tm.user_id
WHERE own.user_id = ? AND tm.user_id <> ? AND u.is_deleted = false
`, userID, userID).Scan(&emails).Error
	return emails, err
}
