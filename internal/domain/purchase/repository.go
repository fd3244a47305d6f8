package purchase

import "context"

type ListFilter struct {
	Status *Status
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, pr *PurchaseRequest) error
	GetByID(ctx context.Context, id string) (*PurchaseRequest, error)
	// Locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*PurchaseRequest, error)
	// Compare-and-set: updates only while the row is still in `from`.
	// Returns ErrStatusConflict when no row matched.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	List(ctx context.Context, f ListFilter) ([]*PurchaseRequest, error)
}
