package uowmock

import (
	"context"
	"errors"
	"testing"

	"purchase-approval/internal/domain/purchase"
	"purchase-approval/internal/domain/uow"
	"purchase-approval/internal/testutil/requestmock"
	"purchase-approval/internal/testutil/taskmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	requests := &requestmock.Repo{}
	tasks := &taskmock.Repo{}
	repos := uow.Repos{Requests: requests, Tasks: tasks}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Requests != requests || r.Tasks != tasks {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error { return sentinel },
	}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Defaults_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	err := m.WithinRequestTx(ctx, "r1", func(uow.Repos, *purchase.PurchaseRequest) error { return nil })
	if !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinRequestTx default: want errUnimplemented, got %v", err)
	}
}

func TestBind_WithinRequestTx_LoadsLockedRequest(t *testing.T) {
	ctx := context.Background()
	lock := &purchase.PurchaseRequest{ID: "r7", Status: purchase.StatusDraft}
	requests := &requestmock.Repo{
		GetByIDForUpdateFn: func(_ context.Context, id string) (*purchase.PurchaseRequest, error) {
			if id != "r7" {
				t.Fatalf("GetByIDForUpdate: id mismatch, got %s", id)
			}
			return lock, nil
		},
	}
	m := Bind(uow.Repos{Requests: requests, Tasks: &taskmock.Repo{}})

	innerCalled := false
	err := m.WithinRequestTx(ctx, "r7", func(r uow.Repos, pr *purchase.PurchaseRequest) error {
		innerCalled = true
		if pr != lock {
			t.Fatalf("WithinRequestTx: request not forwarded: %+v", pr)
		}
		return nil
	})
	if err != nil || !innerCalled {
		t.Fatalf("WithinRequestTx: err=%v called=%v", err, innerCalled)
	}
}

func TestBind_WithinRequestTx_LoadErrorSkipsCallback(t *testing.T) {
	requests := &requestmock.Repo{
		GetByIDForUpdateFn: func(context.Context, string) (*purchase.PurchaseRequest, error) {
			return nil, purchase.ErrNotFound
		},
	}
	m := Bind(uow.Repos{Requests: requests})

	err := m.WithinRequestTx(context.Background(), "missing", func(uow.Repos, *purchase.PurchaseRequest) error {
		t.Fatalf("callback must not run")
		return nil
	})
	if !errors.Is(err, purchase.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinRequestTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinRequestTx(func(context.Context, string, func(uow.Repos, *purchase.PurchaseRequest) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinRequestTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinRequestTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
