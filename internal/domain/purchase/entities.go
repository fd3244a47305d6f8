package purchase

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"purchase-approval/internal/domain/apperror"
)

var (
	ErrNotFound = errors.New("purchase request not found")
	// ErrStatusConflict: a compare-and-set status update matched no row.
	ErrStatusConflict = errors.New("purchase request status changed concurrently")
)

// Table: purchase_requests
type PurchaseRequest struct {
	// Public identifier (32-char lowercase hex)
	ID              string          `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	RequesterEmail  string          `gorm:"column:requester_email;size:255;not null" json:"requester_email"`
	Description     string          `gorm:"column:description;type:text" json:"description,omitempty"`
	Status          Status          `gorm:"column:status;size:16;not null;index:idx_purchase_requests_status" json:"status"`
	StatusUpdatedAt time.Time       `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PurchaseRequest) TableName() string { return "purchase_requests" }

// ValidateForSubmit returns the first violated submission rule.
func (pr *PurchaseRequest) ValidateForSubmit() error {
	if pr.Status != StatusDraft {
		return apperror.InvalidState("only DRAFT requests can be submitted. Current status: %s", pr.Status)
	}
	if !pr.Amount.IsPositive() {
		return apperror.InvalidInput("amount must be > 0")
	}
	if strings.TrimSpace(pr.RequesterEmail) == "" {
		return apperror.InvalidInput("requesterEmail is required")
	}
	return nil
}

// TransitionTo moves the request forward along the lifecycle or fails with InvalidState.
func (pr *PurchaseRequest) TransitionTo(next Status, at time.Time) error {
	if !pr.Status.CanTransitionTo(next) {
		return apperror.InvalidState("purchase request %s cannot move from %s to %s", pr.ID, pr.Status, next)
	}
	pr.Status = next
	pr.StatusUpdatedAt = at
	return nil
}
