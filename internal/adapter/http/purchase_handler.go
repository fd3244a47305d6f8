package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"purchase-approval/internal/domain/purchase"
	purchaseuc "purchase-approval/internal/usecase/purchase"
)

// Purchases is the intake and read side (*purchaseuc.Usecase).
type Purchases interface {
	Create(ctx context.Context, in purchaseuc.CreateInput) (*purchaseuc.RequestDTO, error)
	Get(ctx context.Context, requestID string) (*purchaseuc.RequestDTO, error)
	List(ctx context.Context, in purchaseuc.ListInput) ([]*purchaseuc.RequestDTO, error)
	ListTasks(ctx context.Context, requestID string) ([]*purchaseuc.TaskDTO, error)
	GetTask(ctx context.Context, taskID string) (*purchaseuc.TaskDTO, error)
}

// Workflow is the transition side (*workflow.Controller).
type Workflow interface {
	Submit(ctx context.Context, requestID string) (*purchase.PurchaseRequest, error)
	Approve(ctx context.Context, taskID string, comment *string) (*purchase.PurchaseRequest, error)
	Reject(ctx context.Context, taskID string, comment *string) (*purchase.PurchaseRequest, error)
}

type PurchaseHandler struct {
	uc Purchases
	wf Workflow
}

func NewPurchaseHandler(uc Purchases, wf Workflow) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, wf: wf}
}

type createPurchaseReq struct {
	Amount         decimal.Decimal `json:"amount"          validate:"gt=0,dec2"`
	RequesterEmail string          `json:"requester_email" validate:"required,email,max=255"`
	Description    string          `json:"description"     validate:"max=2000"`
}

type requestPathReq struct {
	ID string `param:"id" validate:"required,hex32"`
}

type listPurchaseReq struct {
	Status string `query:"status" validate:"omitempty,oneof=DRAFT SUBMITTED IN_APPROVAL APPROVED REJECTED draft submitted in_approval approved rejected"`
	Limit  int    `query:"limit"  validate:"gte=0,lte=200"`
}

func (h *PurchaseHandler) Create(c echo.Context) error {
	var req createPurchaseReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), purchaseuc.CreateInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PurchaseHandler) Get(c echo.Context) error {
	var req requestPathReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), req.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PurchaseHandler) List(c echo.Context) error {
	var req listPurchaseReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.List(c.Request().Context(), purchaseuc.ListInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

func (h *PurchaseHandler) ListTasks(c echo.Context) error {
	var req requestPathReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.ListTasks(c.Request().Context(), req.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// Submit: DRAFT -> IN_APPROVAL, creating the approval tasks.
func (h *PurchaseHandler) Submit(c echo.Context) error {
	var req requestPathReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	pr, err := h.wf.Submit(c.Request().Context(), req.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, purchaseuc.ToRequestDTO(pr))
}
