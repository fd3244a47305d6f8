package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"purchase-approval/internal/domain/apperror"
	"purchase-approval/internal/domain/purchase"
	purchaseuc "purchase-approval/internal/usecase/purchase"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

type fakePurchases struct {
	createFn func(purchaseuc.CreateInput) (*purchaseuc.RequestDTO, error)
	getErr   error
}

func (f *fakePurchases) Create(_ context.Context, in purchaseuc.CreateInput) (*purchaseuc.RequestDTO, error) {
	return f.createFn(in)
}
func (f *fakePurchases) Get(_ context.Context, id string) (*purchaseuc.RequestDTO, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &purchaseuc.RequestDTO{ID: id, Status: "DRAFT"}, nil
}
func (f *fakePurchases) List(context.Context, purchaseuc.ListInput) ([]*purchaseuc.RequestDTO, error) {
	return nil, nil
}
func (f *fakePurchases) ListTasks(context.Context, string) ([]*purchaseuc.TaskDTO, error) {
	return nil, nil
}
func (f *fakePurchases) GetTask(context.Context, string) (*purchaseuc.TaskDTO, error) {
	return nil, apperror.NotFound("approval task not found")
}

type fakeWorkflow struct {
	err         error
	gotComment  *string
	gotTaskID   string
	rejectCalls int
}

func (f *fakeWorkflow) Submit(_ context.Context, id string) (*purchase.PurchaseRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &purchase.PurchaseRequest{ID: id, Status: purchase.StatusInApproval}, nil
}
func (f *fakeWorkflow) Approve(_ context.Context, taskID string, comment *string) (*purchase.PurchaseRequest, error) {
	f.gotTaskID, f.gotComment = taskID, comment
	if f.err != nil {
		return nil, f.err
	}
	return &purchase.PurchaseRequest{ID: "r", Status: purchase.StatusApproved}, nil
}
func (f *fakeWorkflow) Reject(_ context.Context, taskID string, comment *string) (*purchase.PurchaseRequest, error) {
	f.rejectCalls++
	f.gotTaskID, f.gotComment = taskID, comment
	if f.err != nil {
		return nil, f.err
	}
	return &purchase.PurchaseRequest{ID: "r", Status: purchase.StatusRejected}, nil
}

// -------- tests --------

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperror.InvalidInput("x"), stdhttp.StatusBadRequest},
		{apperror.NotFound("x"), stdhttp.StatusNotFound},
		{apperror.InvalidState("x"), stdhttp.StatusConflict},
		{apperror.Infrastructure(errors.New("db")), stdhttp.StatusServiceUnavailable},
		{errors.New("unclassified"), stdhttp.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusFor(c.err); got != c.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestCreatePurchase_Success(t *testing.T) {
	e := newEchoWithValidator()
	var got purchaseuc.CreateInput
	h := NewPurchaseHandler(&fakePurchases{createFn: func(in purchaseuc.CreateInput) (*purchaseuc.RequestDTO, error) {
		got = in
		return &purchaseuc.RequestDTO{ID: strings.Repeat("a", 32), Amount: in.Amount, Status: "DRAFT"}, nil
	}}, &fakeWorkflow{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/purchase-requests",
		strings.NewReader(`{"amount":"100.50","requester_email":"a@x.com","description":"chairs"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	if !got.Amount.Equal(decimal.RequireFromString("100.5")) || got.RequesterEmail != "a@x.com" || got.Description != "chairs" {
		t.Fatalf("input not forwarded: %+v", got)
	}
}

func TestCreatePurchase_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewPurchaseHandler(&fakePurchases{}, &fakeWorkflow{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/purchase-requests", strings.NewReader(`{"amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreatePurchase_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewPurchaseHandler(&fakePurchases{createFn: func(purchaseuc.CreateInput) (*purchaseuc.RequestDTO, error) {
		t.Fatalf("usecase must not be called")
		return nil, nil
	}}, &fakeWorkflow{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/purchase-requests",
		mustJSON(map[string]any{"amount": 0, "requester_email": "nope"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !containsFieldMsg(body.Details, "amount", "greater than 0") || !containsFieldMsg(body.Details, "requester_email", "valid email") {
		t.Fatalf("unexpected details: %+v", body.Details)
	}
}

func TestGetPurchase_InvalidID(t *testing.T) {
	e := newEchoWithValidator()
	h := NewPurchaseHandler(&fakePurchases{}, &fakeWorkflow{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(stdhttp.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("NOT-AN-ID")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestSubmit_MapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, stdhttp.StatusOK},
		{apperror.NotFound("purchase request not found for ID x"), stdhttp.StatusNotFound},
		{apperror.InvalidState("only DRAFT requests can be submitted. Current status: APPROVED"), stdhttp.StatusConflict},
		{apperror.InvalidInput("amount must be > 0"), stdhttp.StatusBadRequest},
		{apperror.Infrastructure(errors.New("dial tcp 10.0.0.1:3306: i/o timeout")), stdhttp.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		e := newEchoWithValidator()
		h := NewPurchaseHandler(&fakePurchases{}, &fakeWorkflow{err: tc.err})

		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(stdhttp.MethodPost, "/", nil), rec)
		c.SetParamNames("id")
		c.SetParamValues(strings.Repeat("a", 32))

		if err := h.Submit(c); err != nil {
			t.Fatalf("Submit error: %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("err %v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
		if tc.want == stdhttp.StatusServiceUnavailable && strings.Contains(rec.Body.String(), "10.0.0.1") {
			t.Fatalf("storage details leaked: %s", rec.Body.String())
		}
	}
}

func TestRejectTask_ForwardsComment(t *testing.T) {
	e := newEchoWithValidator()
	wf := &fakeWorkflow{}
	h := NewTaskHandler(&fakePurchases{}, wf)

	req := httptest.NewRequest(stdhttp.MethodPost, "/", mustJSON(map[string]string{"comment": "bad"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("task_id")
	c.SetParamValues(strings.Repeat("b", 32))

	if err := h.Reject(c); err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if wf.rejectCalls != 1 || wf.gotTaskID != strings.Repeat("b", 32) || wf.gotComment == nil || *wf.gotComment != "bad" {
		t.Fatalf("call not forwarded: %+v", wf)
	}
	var dto purchaseuc.RequestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &dto)
	if dto.Status != "REJECTED" {
		t.Fatalf("status in body = %s, want REJECTED", dto.Status)
	}
}

func TestApproveTask_NoBody(t *testing.T) {
	e := newEchoWithValidator()
	wf := &fakeWorkflow{}
	h := NewTaskHandler(&fakePurchases{}, wf)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(stdhttp.MethodPost, "/", nil), rec)
	c.SetParamNames("task_id")
	c.SetParamValues(strings.Repeat("c", 32))

	if err := h.Approve(c); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK || wf.gotComment != nil {
		t.Fatalf("status=%d comment=%v", rec.Code, wf.gotComment)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h := NewTaskHandler(&fakePurchases{}, &fakeWorkflow{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(stdhttp.MethodGet, "/", nil), rec)
	c.SetParamNames("task_id")
	c.SetParamValues(strings.Repeat("d", 32))

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
