package main

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	httpadp "purchase-approval/internal/adapter/http"
	"purchase-approval/internal/adapter/middleware"
	"purchase-approval/internal/adapter/repository/sqldb"
	"purchase-approval/internal/config"
	"purchase-approval/internal/infrastructure/cache"
	"purchase-approval/internal/infrastructure/metrics"
	"purchase-approval/internal/policy"
	purchaseuc "purchase-approval/internal/usecase/purchase"
	"purchase-approval/internal/usecase/workflow"
)

type deps struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *gorm.DB
	rdb      *redis.Client // nil disables idempotency
	reg      *prometheus.Registry
	resolver policy.Resolver
}

func resolverFor(cfg *config.Config) (policy.Resolver, error) {
	if cfg.PolicyFile == "" {
		return policy.NewSingleApprover(cfg.ApproverEmail), nil
	}
	p, err := policy.LoadTiered(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", cfg.PolicyFile, err)
	}
	return p, nil
}

func newServer(d deps) (*echo.Echo, error) {
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil, err
	}

	requests := sqldb.NewPurchaseRequestRepository(d.db)
	tasks := sqldb.NewApprovalTaskRepository(d.db)
	wf := workflow.NewController(
		sqldb.NewGormUoW(d.db),
		d.resolver,
		workflow.WithLogger(d.log),
		workflow.WithMetrics(metrics.NewWorkflow(d.reg)),
	)
	uc := purchaseuc.NewUsecase(requests, tasks)

	checks := map[string]httpadp.Pinger{"db": sqlDB.PingContext}
	var mutating []echo.MiddlewareFunc
	if d.rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return d.rdb.Ping(ctx).Err() }
		mutating = append(mutating, middleware.Idempotency(
			cache.NewIdempotencyStore(d.rdb), d.cfg.IdempotencyTTL(), d.log,
		))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(d.log))

	httpadp.Routes{
		Health:    httpadp.NewHandler(checks),
		Purchases: httpadp.NewPurchaseHandler(uc, wf),
		Tasks:     httpadp.NewTaskHandler(uc, wf),
	}.Register(e, mutating...)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.reg, promhttp.HandlerOpts{})))

	return e, nil
}
