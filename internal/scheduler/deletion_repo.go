package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cleanup fires this long after the account is deactivated.
const DeletionHorizonMonths = 6

//go:generate mockgen -source=deletion_repo.go -destination=mock/deletion_repo_mock.go -package=mock
type Repository interface {
	// Schedule satisfies the workflow engine's deletion contract.
	// Scheduling twice for the same user keeps the earliest run.
	Schedule(ctx context.Context, userID string) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]ScheduledDeletion, error)
	MarkDone(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return r.db.Session(&gorm.Session{Context: ctx, NewDB: true})
}

func (r *repository) Schedule(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	entry := ScheduledDeletion{
		ID:     uuid.New(),
		UserID: uid,
		RunAt:  time.Now().AddDate(0, DeletionHorizonMonths, 0),
		Status: DeletionPending,
	}
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&entry).Error
}

func (r *repository) ListDue(ctx context.Context, now time.Time, limit int) ([]ScheduledDeletion, error) {
	var due []ScheduledDeletion
	err := r.conn(ctx).
		Where("status = ? AND run_at <= ?", DeletionPending, now).
		Order("run_at ASC").
		Limit(limit).
		Find(&due).Error
	return due, err
}

func (r *repository) MarkDone(ctx context.Context, id string) error {
	return r.conn(ctx).
		Model(&ScheduledDeletion{}).
		Where("id = ?", id).
		Update("status", DeletionDone).Error
}
