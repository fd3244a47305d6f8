package taskmock

import (
	"context"
	"time"

	domain "purchase-approval/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                   func(ctx context.Context, t *domain.ApprovalTask) error
	GetByIDFn                  func(ctx context.Context, id string) (*domain.ApprovalTask, error)
	GetByIDForUpdateFn         func(ctx context.Context, id string) (*domain.ApprovalTask, error)
	ListByRequestIDFn          func(ctx context.Context, requestID string, decisions ...domain.Decision) ([]*domain.ApprovalTask, error)
	ListByRequestIDForUpdateFn func(ctx context.Context, requestID string) ([]*domain.ApprovalTask, error)
	RecordDecisionFn           func(ctx context.Context, id string, d domain.Decision, comments *string, at time.Time) error
}

func (m *Repo) Create(ctx context.Context, t *domain.ApprovalTask) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.ApprovalTask, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.ApprovalTask, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByRequestID(ctx context.Context, requestID string, decisions ...domain.Decision) ([]*domain.ApprovalTask, error) {
	if m.ListByRequestIDFn != nil {
		return m.ListByRequestIDFn(ctx, requestID, decisions...)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByRequestIDForUpdate(ctx context.Context, requestID string) ([]*domain.ApprovalTask, error) {
	if m.ListByRequestIDForUpdateFn != nil {
		return m.ListByRequestIDForUpdateFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) RecordDecision(ctx context.Context, id string, d domain.Decision, comments *string, at time.Time) error {
	if m.RecordDecisionFn != nil {
		return m.RecordDecisionFn(ctx, id, d, comments, at)
	}
	return nil
}
