package sqldb

import (
	"context"
	"time"

	"purchase-approval/internal/domain/purchase"
	"purchase-approval/internal/domain/uow"

	"gorm.io/gorm"
)

var _ uow.UnitOfWork = (*GormUoW)(nil)

func nowUTC() time.Time { return time.Now().UTC() }

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Requests: &PurchaseRequestRepository{db: tx},
		Tasks:    &ApprovalTaskRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, pr *purchase.PurchaseRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the request row up-front so status updates on it are serialized
		pr, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, pr)
	})
}
