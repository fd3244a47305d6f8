package uowmock

import (
	"context"
	"errors"

	"purchase-approval/internal/domain/purchase"
	"purchase-approval/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn        func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinRequestTxFn func(ctx context.Context, requestID string, fn func(r uow.Repos, pr *purchase.PurchaseRequest) error) error
}

func New() *UoW { return &UoW{} }

// Bind returns a UoW that hands repos straight to the callback with no
// transaction. WithinRequestTx loads the request through
// repos.Requests.GetByIDForUpdate the same way the real implementation does.
func Bind(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinRequestTxFn: func(ctx context.Context, requestID string, fn func(uow.Repos, *purchase.PurchaseRequest) error) error {
			pr, err := repos.Requests.GetByIDForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			return fn(repos, pr)
		},
	}
}

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

func (m *UoW) WithWithinRequestTx(fn func(context.Context, string, func(uow.Repos, *purchase.PurchaseRequest) error) error) *UoW {
	m.WithinRequestTxFn = fn
	return m
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, pr *purchase.PurchaseRequest) error) error {
	if m.WithinRequestTxFn != nil {
		return m.WithinRequestTxFn(ctx, requestID, fn)
	}
	return errUnimplemented
}
