// Package policy decides which approval tasks a submitted purchase request
// gets and when its task set closes the request.
//
// The workflow controller only depends on Resolver; swapping the routing
// rules never changes the controller's transaction shape.
package policy

import (
	"context"

	"purchase-approval/internal/domain/approval"
	"purchase-approval/internal/domain/purchase"
)

const (
	StepManager          = "MANAGER"
	DefaultApproverEmail = "manager@example.com"
)

type Resolver interface {
	// CreateInitialTasks returns PENDING tasks for pr; the caller persists them.
	CreateInitialTasks(ctx context.Context, pr *purchase.PurchaseRequest) ([]*approval.ApprovalTask, error)
	// IsComplete reports whether tasks close pr as APPROVED.
	IsComplete(pr *purchase.PurchaseRequest, tasks []*approval.ApprovalTask) bool
}

// allApproved is the shared completion rule: at least one task, none pending, none rejected.
func allApproved(tasks []*approval.ApprovalTask) bool {
	if len(tasks) == 0 {
		return false
	}
	return approval.Count(tasks, approval.DecisionPending) == 0 &&
		approval.Count(tasks, approval.DecisionRejected) == 0
}

// SingleApprover routes every request to one fixed MANAGER approver.
type SingleApprover struct {
	ApproverEmail string
}

func NewSingleApprover(approverEmail string) *SingleApprover {
	if approverEmail == "" {
		approverEmail = DefaultApproverEmail
	}
	return &SingleApprover{ApproverEmail: approverEmail}
}

func (p *SingleApprover) CreateInitialTasks(_ context.Context, pr *purchase.PurchaseRequest) ([]*approval.ApprovalTask, error) {
	return []*approval.ApprovalTask{approval.NewTask(pr.ID, StepManager, p.ApproverEmail)}, nil
}

func (p *SingleApprover) IsComplete(_ *purchase.PurchaseRequest, tasks []*approval.ApprovalTask) bool {
	return allApproved(tasks)
}

var (
	_ Resolver = (*SingleApprover)(nil)
	_ Resolver = (*Tiered)(nil)
)
