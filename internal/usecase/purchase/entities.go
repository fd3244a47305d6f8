package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"purchase-approval/internal/domain/approval"
	"purchase-approval/internal/domain/purchase"
)

type CreateInput struct {
	Amount         decimal.Decimal `json:"amount"`
	RequesterEmail string          `json:"requester_email"`
	Description    string          `json:"description"`
}

type ListInput struct {
	Status string
	Limit  int
}

type RequestDTO struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	RequesterEmail  string          `json:"requester_email"`
	Description     string          `json:"description,omitempty"`
	Status          string          `json:"status"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TaskDTO struct {
	ID            string     `json:"id"`
	RequestID     string     `json:"request_id"`
	Step          string     `json:"step"`
	ApproverEmail string     `json:"approver_email"`
	Decision      string     `json:"decision"`
	Comments      *string    `json:"comments"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToRequestDTO(pr *purchase.PurchaseRequest) *RequestDTO {
	return &RequestDTO{
		ID:              pr.ID,
		Amount:          pr.Amount,
		RequesterEmail:  pr.RequesterEmail,
		Description:     pr.Description,
		Status:          string(pr.Status),
		StatusUpdatedAt: pr.StatusUpdatedAt,
		CreatedAt:       pr.CreatedAt,
	}
}

func ToTaskDTO(t *approval.ApprovalTask) *TaskDTO {
	return &TaskDTO{
		ID:            t.ID,
		RequestID:     t.RequestID,
		Step:          t.Step,
		ApproverEmail: t.ApproverEmail,
		Decision:      string(t.Decision),
		Comments:      t.Comments,
		DecidedAt:     t.DecidedAt,
		CreatedAt:     t.CreatedAt,
	}
}
