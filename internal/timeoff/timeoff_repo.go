package timeoff

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository exposes the fixed set of named queries the engine
// needs; arbitrary predicates deliberately have no place here.
//
//go:generate mockgen -source=timeoff_repo.go -destination=mock/timeoff_repo_mock.go -package=mock
type RequestRepository interface {
	WithTx(tx *sql.Tx) RequestRepository
	Create(ctx context.Context, r *TimeOffRequest) error
	FindByID(ctx context.Context, id string) (*TimeOffRequest, error)
	// FindByIDForUpdate locks the request row for the duration of the
	// surrounding transaction, serializing concurrent votes.
	FindByIDForUpdate(ctx context.Context, id string) (*TimeOffRequest, error)
	FindAll(ctx context.Context) ([]TimeOffRequest, error)
	FindByCreator(ctx context.Context, creatorID string) ([]TimeOffRequest, error)
	FindByStatus(ctx context.Context, status string) ([]TimeOffRequest, error)
	FindByCreatorAndStatuses(ctx context.Context, creatorID string, statuses ...string) ([]TimeOffRequest, error)
	Update(ctx context.Context, r *TimeOffRequest) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type requestRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) WithTx(tx *sql.Tx) RequestRepository {
	return &requestRepository{db: r.db, tx: tx}
}

func (r *requestRepository) conn(ctx context.Context) *gorm.DB {
	db := r.db.Session(&gorm.Session{Context: ctx, NewDB: true})
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *requestRepository) Create(ctx context.Context, req *TimeOffRequest) error {
	return r.conn(ctx).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*TimeOffRequest, error) {
	var req TimeOffRequest
	err := r.conn(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id string) (*TimeOffRequest, error) {
	var req TimeOffRequest
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindAll(ctx context.Context) ([]TimeOffRequest, error) {
	var reqs []TimeOffRequest
	err := r.conn(ctx).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepository) FindByCreator(ctx context.Context, creatorID string) ([]TimeOffRequest, error) {
	var reqs []TimeOffRequest
	err := r.conn(ctx).
		Where("creator_id = ?", creatorID).
		Order("start_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepository) FindByStatus(ctx context.Context, status string) ([]TimeOffRequest, error) {
	var reqs []TimeOffRequest
	err := r.conn(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepository) FindByCreatorAndStatuses(ctx context.Context, creatorID string, statuses ...string) ([]TimeOffRequest, error) {
	var reqs []TimeOffRequest
	err := r.conn(ctx).
		Where("creator_id = ?", creatorID).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepository) Update(ctx context.Context, req *TimeOffRequest) error {
	return r.conn(ctx).
		Omit("Approvals").
		Save(req).Error
}

func (r *requestRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.conn(ctx).
		Model(&TimeOffRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&TimeOffRequest{}, "id = ?", id).Error
}
