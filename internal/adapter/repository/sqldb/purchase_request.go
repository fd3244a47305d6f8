package sqldb

import (
	"context"
	"errors"

	purchaseDomain "purchase-approval/internal/domain/purchase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 50

type PurchaseRequestRepository struct{ db *gorm.DB }

func NewPurchaseRequestRepository(db *gorm.DB) *PurchaseRequestRepository {
	return &PurchaseRequestRepository{db: db}
}

func (r *PurchaseRequestRepository) Create(ctx context.Context, pr *purchaseDomain.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

func (r *PurchaseRequestRepository) GetByID(ctx context.Context, id string) (*purchaseDomain.PurchaseRequest, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *PurchaseRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*purchaseDomain.PurchaseRequest, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *PurchaseRequestRepository) get(q *gorm.DB, id string) (*purchaseDomain.PurchaseRequest, error) {
	var out purchaseDomain.PurchaseRequest
	if err := q.Where("id = ?", id).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchaseDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseRequestRepository) UpdateStatus(ctx context.Context, id string, from, to purchaseDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&purchaseDomain.PurchaseRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":            to,
			"status_updated_at": nowUTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return purchaseDomain.ErrStatusConflict
	}
	return nil
}

func (r *PurchaseRequestRepository) List(ctx context.Context, f purchaseDomain.ListFilter) ([]*purchaseDomain.PurchaseRequest, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := r.db.WithContext(ctx)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var out []*purchaseDomain.PurchaseRequest
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
