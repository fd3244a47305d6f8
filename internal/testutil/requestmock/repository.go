package requestmock

import (
	"context"

	domain "purchase-approval/internal/domain/purchase"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a no-op; reads default to context.Canceled.
type Repo struct {
	CreateFn           func(ctx context.Context, pr *domain.PurchaseRequest) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.PurchaseRequest, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.PurchaseRequest, error)
	UpdateStatusFn     func(ctx context.Context, id string, from, to domain.Status) error
	ListFn             func(ctx context.Context, f domain.ListFilter) ([]*domain.PurchaseRequest, error)
}

func (m *Repo) Create(ctx context.Context, pr *domain.PurchaseRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, pr)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]*domain.PurchaseRequest, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}
