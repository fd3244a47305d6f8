package http

import (
	"github.com/labstack/echo/v4"
)

type Routes struct {
	Health    *Handler
	Purchases *PurchaseHandler
	Tasks     *TaskHandler
}

// Register mounts the API. mutating wraps every POST route (idempotency).
func (r Routes) Register(e *echo.Echo, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)

	pr := e.Group("/purchase-requests")
	pr.POST("", r.Purchases.Create, mutating...)
	pr.GET("", r.Purchases.List)
	pr.GET("/:id", r.Purchases.Get)
	pr.GET("/:id/tasks", r.Purchases.ListTasks)
	pr.POST("/:id/submit", r.Purchases.Submit, mutating...)

	tasks := e.Group("/tasks")
	tasks.GET("/:task_id", r.Tasks.Get)
	tasks.POST("/:task_id/approve", r.Tasks.Approve, mutating...)
	tasks.POST("/:task_id/reject", r.Tasks.Reject, mutating...)
}
