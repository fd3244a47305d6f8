package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"purchase-approval/internal/domain/purchase"
	purchaseuc "purchase-approval/internal/usecase/purchase"
)

type TaskHandler struct {
	uc Purchases
	wf Workflow
}

func NewTaskHandler(uc Purchases, wf Workflow) *TaskHandler {
	return &TaskHandler{uc: uc, wf: wf}
}

type taskPathReq struct {
	TaskID string `param:"task_id" validate:"required,hex32"`
}

type decideTaskReq struct {
	TaskID  string  `param:"task_id" validate:"required,hex32"`
	Comment *string `json:"comment"  validate:"omitempty,max=2000"`
}

func (h *TaskHandler) Get(c echo.Context) error {
	var req taskPathReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.GetTask(c.Request().Context(), req.TaskID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TaskHandler) Approve(c echo.Context) error {
	return h.decide(c, h.wf.Approve)
}

func (h *TaskHandler) Reject(c echo.Context) error {
	return h.decide(c, h.wf.Reject)
}

func (h *TaskHandler) decide(c echo.Context, op func(context.Context, string, *string) (*purchase.PurchaseRequest, error)) error {
	var req decideTaskReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	pr, err := op(c.Request().Context(), req.TaskID, req.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, purchaseuc.ToRequestDTO(pr))
}
