// Package purchase is the intake and read side: creating DRAFT requests and
// looking up requests and their tasks. State transitions live in workflow.
package purchase

import (
	"context"
	"errors"
	"strings"
	"time"

	"purchase-approval/internal/domain/apperror"
	"purchase-approval/internal/domain/approval"
	"purchase-approval/internal/domain/purchase"
	"purchase-approval/pkg/id"
)

const maxListLimit = 200

type Usecase struct {
	requests purchase.Repository
	tasks    approval.Repository
}

func NewUsecase(requests purchase.Repository, tasks approval.Repository) *Usecase {
	return &Usecase{requests: requests, tasks: tasks}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*RequestDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.InvalidInput("amount must be > 0")
	}
	email := strings.TrimSpace(in.RequesterEmail)
	if email == "" {
		return nil, apperror.InvalidInput("requesterEmail is required")
	}

	now := time.Now().UTC()
	pr := &purchase.PurchaseRequest{
		ID:              id.NewID32(),
		Amount:          in.Amount.Round(2),
		RequesterEmail:  email,
		Description:     strings.TrimSpace(in.Description),
		Status:          purchase.StatusDraft,
		StatusUpdatedAt: now,
	}
	if err := u.requests.Create(ctx, pr); err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return ToRequestDTO(pr), nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*RequestDTO, error) {
	pr, err := u.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, requestErr(err, requestID)
	}
	return ToRequestDTO(pr), nil
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]*RequestDTO, error) {
	var f purchase.ListFilter
	if in.Status != "" {
		s, err := purchase.ParseStatus(strings.ToUpper(in.Status))
		if err != nil {
			return nil, apperror.InvalidInput("unknown status: %s", in.Status)
		}
		f.Status = &s
	}
	if in.Limit < 0 || in.Limit > maxListLimit {
		return nil, apperror.InvalidInput("limit must be between 0 and %d", maxListLimit)
	}
	f.Limit = in.Limit

	prs, err := u.requests.List(ctx, f)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	out := make([]*RequestDTO, 0, len(prs))
	for _, pr := range prs {
		out = append(out, ToRequestDTO(pr))
	}
	return out, nil
}

// ListTasks returns the tasks of an existing request, oldest first.
func (u *Usecase) ListTasks(ctx context.Context, requestID string) ([]*TaskDTO, error) {
	if _, err := u.requests.GetByID(ctx, requestID); err != nil {
		return nil, requestErr(err, requestID)
	}
	tasks, err := u.tasks.ListByRequestID(ctx, requestID)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	out := make([]*TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskDTO(t))
	}
	return out, nil
}

func (u *Usecase) GetTask(ctx context.Context, taskID string) (*TaskDTO, error) {
	t, err := u.tasks.GetByID(ctx, taskID)
	if errors.Is(err, approval.ErrNotFound) {
		return nil, apperror.NotFound("approval task not found for ID %s", taskID)
	}
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return ToTaskDTO(t), nil
}

func requestErr(err error, requestID string) error {
	if errors.Is(err, purchase.ErrNotFound) {
		return apperror.NotFound("purchase request not found for ID %s", requestID)
	}
	return apperror.Infrastructure(err)
}
