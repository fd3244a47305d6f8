// Package workflow implements the purchase request state transitions.
//
// Submit, Approve and Reject each run as one transaction through
// uow.UnitOfWork. Decisions on the same request are serialized on the
// request row: tasks are read with a row lock, then the owning request, then
// the request's task set. Status and decision writes are additionally
// conditional on the previous value, so a committed REJECTED can never be
// overwritten by a late APPROVED.
package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"purchase-approval/internal/domain/apperror"
	"purchase-approval/internal/domain/approval"
	"purchase-approval/internal/domain/purchase"
	"purchase-approval/internal/domain/uow"
	"purchase-approval/internal/infrastructure/metrics"
	"purchase-approval/internal/infrastructure/tracing"
	"purchase-approval/internal/policy"
)

const (
	OpSubmit  = "submit"
	OpApprove = "approve"
	OpReject  = "reject"
)

var errNotConfigured = errors.New("workflow controller is not configured")

type Controller struct {
	uow      uow.UnitOfWork
	resolver policy.Resolver
	log      zerolog.Logger
	metrics  *metrics.Workflow
	now      func() time.Time
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

func WithMetrics(m *metrics.Workflow) Option { return func(c *Controller) { c.metrics = m } }

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// NewController: pass the UoW for tx flows and the task routing policy.
func NewController(tx uow.UnitOfWork, resolver policy.Resolver, opts ...Option) *Controller {
	c := &Controller{
		uow:      tx,
		resolver: resolver,
		log:      zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit moves a DRAFT request to IN_APPROVAL and creates its approval tasks.
func (c *Controller) Submit(ctx context.Context, requestID string) (*purchase.PurchaseRequest, error) {
	ctx, span := c.start(ctx, OpSubmit, attribute.String("purchase_request.id", requestID))
	defer span.End()

	var moved []purchase.Status
	out, err := c.submit(ctx, strings.TrimSpace(requestID), &moved)
	c.finish(span, OpSubmit, requestID, "", out, moved, err)
	return out, err
}

// Approve records an APPROVED decision and closes the request when the
// policy says the task set is complete.
func (c *Controller) Approve(ctx context.Context, taskID string, comment *string) (*purchase.PurchaseRequest, error) {
	return c.decideOp(ctx, OpApprove, taskID, approval.DecisionApproved, comment)
}

// Reject records a REJECTED decision and rejects the whole request.
// Other pending tasks stay PENDING.
func (c *Controller) Reject(ctx context.Context, taskID string, comment *string) (*purchase.PurchaseRequest, error) {
	return c.decideOp(ctx, OpReject, taskID, approval.DecisionRejected, comment)
}

func (c *Controller) decideOp(ctx context.Context, op, taskID string, d approval.Decision, comment *string) (*purchase.PurchaseRequest, error) {
	ctx, span := c.start(ctx, op, attribute.String("approval_task.id", taskID))
	defer span.End()

	var moved []purchase.Status
	out, err := c.decide(ctx, strings.TrimSpace(taskID), d, normalizeComment(comment), &moved)
	c.finish(span, op, "", taskID, out, moved, err)
	return out, err
}

func (c *Controller) submit(ctx context.Context, requestID string, moved *[]purchase.Status) (*purchase.PurchaseRequest, error) {
	if requestID == "" {
		return nil, apperror.InvalidInput("id is required")
	}
	if c.uow == nil || c.resolver == nil {
		return nil, apperror.Infrastructure(errNotConfigured)
	}

	var out *purchase.PurchaseRequest
	err := c.uow.WithinRequestTx(ctx, requestID, func(r uow.Repos, pr *purchase.PurchaseRequest) error {
		if err := pr.ValidateForSubmit(); err != nil {
			return err
		}
		now := c.now()
		if err := advance(ctx, r, pr, purchase.StatusSubmitted, now); err != nil {
			return err
		}

		tasks, err := c.resolver.CreateInitialTasks(ctx, pr)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return apperror.InvalidState("approval policy produced no tasks for purchase request %s", pr.ID)
		}
		for _, t := range tasks {
			if t.RequestID != pr.ID || t.Decision != approval.DecisionPending {
				return apperror.InvalidState("approval policy produced an invalid task for purchase request %s", pr.ID)
			}
			if err := r.Tasks.Create(ctx, t); err != nil {
				return err
			}
		}

		if err := advance(ctx, r, pr, purchase.StatusInApproval, now); err != nil {
			return err
		}
		*moved = []purchase.Status{purchase.StatusSubmitted, purchase.StatusInApproval}

		out, err = r.Requests.GetByID(ctx, pr.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, purchase.ErrNotFound) {
			return nil, apperror.NotFound("purchase request not found for ID %s", requestID)
		}
		return nil, classify(err)
	}
	return out, nil
}

func (c *Controller) decide(ctx context.Context, taskID string, d approval.Decision, comment *string, moved *[]purchase.Status) (*purchase.PurchaseRequest, error) {
	if taskID == "" {
		return nil, apperror.InvalidInput("taskId is required")
	}
	if c.uow == nil || c.resolver == nil {
		return nil, apperror.Infrastructure(errNotConfigured)
	}

	var out *purchase.PurchaseRequest
	err := c.uow.WithinTx(ctx, func(r uow.Repos) error {
		// Lock order is request, then tasks (same as Submit). The first read
		// only finds the owning request and takes no lock.
		peek, err := r.Tasks.GetByID(ctx, taskID)
		if errors.Is(err, approval.ErrNotFound) {
			return apperror.NotFound("approval task not found for ID %s", taskID)
		}
		if err != nil {
			return err
		}

		pr, err := r.Requests.GetByIDForUpdate(ctx, peek.RequestID)
		if errors.Is(err, purchase.ErrNotFound) {
			return apperror.NotFound("purchase request not found for ID %s", peek.RequestID)
		}
		if err != nil {
			return err
		}

		task, err := r.Tasks.GetByIDForUpdate(ctx, taskID)
		if errors.Is(err, approval.ErrNotFound) {
			return apperror.NotFound("approval task not found for ID %s", taskID)
		}
		if err != nil {
			return err
		}
		if task.RequestID != pr.ID {
			return apperror.InvalidState("approval task %s does not belong to purchase request %s", task.ID, pr.ID)
		}

		if task.Decision.Final() {
			return apperror.InvalidState("already decided: %s", task.Decision)
		}
		if pr.Status.Terminal() {
			return apperror.InvalidState("purchase request %s is already %s", pr.ID, pr.Status)
		}
		if pr.Status != purchase.StatusInApproval {
			return apperror.InvalidState("purchase request %s is %s; decisions are only accepted while %s",
				pr.ID, pr.Status, purchase.StatusInApproval)
		}

		now := c.now()
		if err := task.Decide(d, comment, now); err != nil {
			return err
		}
		if err := r.Tasks.RecordDecision(ctx, task.ID, d, comment, now); err != nil {
			return err
		}

		switch d {
		case approval.DecisionRejected:
			if err := advance(ctx, r, pr, purchase.StatusRejected, now); err != nil {
				return err
			}
			*moved = []purchase.Status{purchase.StatusRejected}
		case approval.DecisionApproved:
			// siblings are already serialized behind the request lock
			tasks, err := r.Tasks.ListByRequestIDForUpdate(ctx, pr.ID)
			if err != nil {
				return err
			}
			if c.resolver.IsComplete(pr, tasks) {
				if err := advance(ctx, r, pr, purchase.StatusApproved, now); err != nil {
					return err
				}
				*moved = []purchase.Status{purchase.StatusApproved}
			}
		}

		out, err = r.Requests.GetByID(ctx, pr.ID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// advance validates the transition in memory, then writes it with a
// compare-and-set on the previous status.
func advance(ctx context.Context, r uow.Repos, pr *purchase.PurchaseRequest, next purchase.Status, at time.Time) error {
	from := pr.Status
	if err := pr.TransitionTo(next, at); err != nil {
		return err
	}
	return r.Requests.UpdateStatus(ctx, pr.ID, from, next)
}

func classify(err error) error {
	switch {
	case apperror.KindOf(err) != apperror.KindUnknown:
		return err
	case errors.Is(err, purchase.ErrStatusConflict), errors.Is(err, approval.ErrAlreadyDecided):
		return apperror.InvalidState("%s", err.Error())
	default:
		return apperror.Infrastructure(err)
	}
}

// normalizeComment maps a blank comment to nil; anything else is stored as written.
func normalizeComment(comment *string) *string {
	if comment == nil || strings.TrimSpace(*comment) == "" {
		return nil
	}
	return comment
}

func (c *Controller) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracing.TracerName).Start(ctx, "workflow."+op, trace.WithAttributes(attrs...))
}

func (c *Controller) finish(span trace.Span, op, requestID, taskID string, out *purchase.PurchaseRequest, moved []purchase.Status, err error) {
	if err != nil {
		kind := apperror.KindOf(err)
		c.metrics.Operation(op, kind.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())

		ev := c.log.Warn()
		if kind == apperror.KindInfrastructure {
			ev = c.log.Error()
		}
		ev.Err(err).Str("operation", op).Str("request_id", requestID).Str("task_id", taskID).Msg("workflow operation failed")
		return
	}

	c.metrics.Operation(op, "ok")
	for _, s := range moved {
		c.metrics.Transition(string(s))
	}
	span.SetAttributes(attribute.String("purchase_request.status", string(out.Status)))
	c.log.Info().
		Str("operation", op).
		Str("request_id", out.ID).
		Str("task_id", taskID).
		Str("status", string(out.Status)).
		Msg("workflow operation committed")
}
