package sqldb

import (
	"context"
	"errors"
	"time"

	approvalDomain "purchase-approval/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalTaskRepository struct{ db *gorm.DB }

func NewApprovalTaskRepository(db *gorm.DB) *ApprovalTaskRepository {
	return &ApprovalTaskRepository{db: db}
}

func (r *ApprovalTaskRepository) Create(ctx context.Context, t *approvalDomain.ApprovalTask) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ApprovalTaskRepository) GetByID(ctx context.Context, id string) (*approvalDomain.ApprovalTask, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *ApprovalTaskRepository) GetByIDForUpdate(ctx context.Context, id string) (*approvalDomain.ApprovalTask, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *ApprovalTaskRepository) get(q *gorm.DB, id string) (*approvalDomain.ApprovalTask, error) {
	var out approvalDomain.ApprovalTask
	if err := q.Where("id = ?", id).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *ApprovalTaskRepository) ListByRequestID(ctx context.Context, requestID string, decisions ...approvalDomain.Decision) ([]*approvalDomain.ApprovalTask, error) {
	q := r.db.WithContext(ctx).Where("request_id = ?", requestID)
	if len(decisions) > 0 {
		q = q.Where("decision IN ?", decisions)
	}
	return r.list(q)
}

func (r *ApprovalTaskRepository) ListByRequestIDForUpdate(ctx context.Context, requestID string) ([]*approvalDomain.ApprovalTask, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID)
	return r.list(q)
}

func (r *ApprovalTaskRepository) list(q *gorm.DB) ([]*approvalDomain.ApprovalTask, error) {
	var out []*approvalDomain.ApprovalTask
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *ApprovalTaskRepository) RecordDecision(ctx context.Context, id string, d approvalDomain.Decision, comments *string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&approvalDomain.ApprovalTask{}).
		Where("id = ? AND decision = ?", id, approvalDomain.DecisionPending).
		Updates(map[string]any{
			"decision":   d,
			"comments":   comments,
			"decided_at": at.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return approvalDomain.ErrAlreadyDecided
	}
	return nil
}
