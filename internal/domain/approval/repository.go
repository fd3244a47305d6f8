package approval

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *ApprovalTask) error

	GetByID(ctx context.Context, id string) (*ApprovalTask, error)
	// Locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*ApprovalTask, error)

	// Tasks of one request, optionally restricted to the given decisions.
	ListByRequestID(ctx context.Context, requestID string, decisions ...Decision) ([]*ApprovalTask, error)
	// Same as ListByRequestID without filters, but locks the returned rows.
	ListByRequestIDForUpdate(ctx context.Context, requestID string) ([]*ApprovalTask, error)

	// Writes the decision only while the row is still PENDING.
	// Returns ErrAlreadyDecided when no row matched.
	RecordDecision(ctx context.Context, id string, d Decision, comments *string, at time.Time) error
}
