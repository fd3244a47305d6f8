package uow

import (
	"context"

	"purchase-approval/internal/domain/approval"
	"purchase-approval/internal/domain/purchase"
)

// Repos are bound to one transaction; they must not escape the callback.
type Repos struct {
	Requests purchase.Repository
	Tasks    approval.Repository
}

type UnitOfWork interface {
	// plain tx; rolled back when fn returns an error
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the purchase request row first, then pass it in
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, pr *purchase.PurchaseRequest) error) error
}
