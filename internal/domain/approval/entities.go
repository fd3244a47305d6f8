package approval

import (
	"errors"
	"time"

	"purchase-approval/internal/domain/apperror"
	"purchase-approval/pkg/id"
)

var (
	ErrNotFound = errors.New("approval task not found")
	// ErrAlreadyDecided: the conditional decision update matched no pending row.
	ErrAlreadyDecided = errors.New("approval task already decided")
)

// Table: approval_tasks
type ApprovalTask struct {
	ID string `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	// FK to purchase_requests.id; back-reference only
	RequestID     string     `gorm:"column:request_id;type:char(32);not null;index:idx_approval_tasks_request" json:"request_id"`
	Step          string     `gorm:"column:step;size:64;not null" json:"step"`
	ApproverEmail string     `gorm:"column:approver_email;size:255;not null" json:"approver_email"`
	Decision      Decision   `gorm:"column:decision;size:16;not null;index:idx_approval_tasks_request" json:"decision"`
	Comments      *string    `gorm:"column:comments;type:text" json:"comments"`
	DecidedAt     *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ApprovalTask) TableName() string { return "approval_tasks" }

// NewTask builds a PENDING task with a fresh id and no comments.
func NewTask(requestID, step, approverEmail string) *ApprovalTask {
	return &ApprovalTask{
		ID:            id.NewID32(),
		RequestID:     requestID,
		Step:          step,
		ApproverEmail: approverEmail,
		Decision:      DecisionPending,
	}
}

// Decide records a terminal decision exactly once.
func (t *ApprovalTask) Decide(d Decision, comment *string, at time.Time) error {
	if t.Decision != DecisionPending {
		return apperror.InvalidState("already decided: %s", t.Decision)
	}
	if !d.Final() {
		return apperror.InvalidInput("decision must be APPROVED or REJECTED, got %s", d)
	}
	t.Decision = d
	t.Comments = comment
	t.DecidedAt = &at
	return nil
}

// Count returns how many tasks carry decision d.
func Count(tasks []*ApprovalTask, d Decision) int {
	n := 0
	for _, t := range tasks {
		if t.Decision == d {
			n++
		}
	}
	return n
}
