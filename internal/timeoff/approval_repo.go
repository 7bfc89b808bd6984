package timeoff

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type ApprovalRepository interface {
	WithTx(tx *sql.Tx) ApprovalRepository
	CreateBatch(ctx context.Context, approvals []Approval) error
	FindForRequest(ctx context.Context, requestID string) ([]Approval, error)
	// FindPending returns the open approval for the pair, or
	// gorm.ErrRecordNotFound when the approver already voted or never
	// held one.
	FindPending(ctx context.Context, requestID, approverID string) (*Approval, error)
	CountPendingByApprover(ctx context.Context, approverID string) (int64, error)
	SetStatus(ctx context.Context, id, status string) error
	Remove(ctx context.Context, id string) error
	RemoveForRequest(ctx context.Context, requestID string) error
}

type approvalRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) WithTx(tx *sql.Tx) ApprovalRepository {
	return &approvalRepository{db: r.db, tx: tx}
}

func (r *approvalRepository) conn(ctx context.Context) *gorm.DB {
	db := r.db.Session(&gorm.Session{Context: ctx, NewDB: true})
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *approvalRepository) CreateBatch(ctx context.Context, approvals []Approval) error {
	if len(approvals) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&approvals).Error
}

func (r *approvalRepository) FindForRequest(ctx context.Context, requestID string) ([]Approval, error) {
	var approvals []Approval
	err := r.conn(ctx).
		Where("request_id = ?", requestID).
		Find(&approvals).Error
	return approvals, err
}

func (r *approvalRepository) FindPending(ctx context.Context, requestID, approverID string) (*Approval, error) {
	var a Approval
	err := r.conn(ctx).
		Where("request_id = ?", requestID).
		Where("approver_id = ?", approverID).
		Where("status = ?", ApprovalPending).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *approvalRepository) CountPendingByApprover(ctx context.Context, approverID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Approval{}).
		Where("approver_id = ?", approverID).
		Where("status = ?", ApprovalPending).
		Count(&count).Error
	return count, err
}

func (r *approvalRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.conn(ctx).
		Model(&Approval{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *approvalRepository) Remove(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Approval{}, "id = ?", id).Error
}

func (r *approvalRepository) RemoveForRequest(ctx context.Context, requestID string) error {
	return r.conn(ctx).Delete(&Approval{}, "request_id = ?", requestID).Error
}
