package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"purchase-approval/internal/infrastructure/cache"
	"purchase-approval/pkg/id"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	storeTimeout = 2 * time.Second
)

// IdempotencyStore is satisfied by *cache.IdempotencyStore.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, e cache.IdempotencyEntry) (bool, error)
	Load(ctx context.Context, key string) (cache.IdempotencyEntry, error)
	Save(ctx context.Context, key string, e cache.IdempotencyEntry, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// Idempotency replays the stored response for a retried mutating request.
// Requests without an Idempotency-Key header pass straight through.
// The key must be a UUID or 32-char hex. Reusing a key with a different body
// or while the first request is still running yields 409. Server errors are
// not stored, so the client may retry them with the same key.
func Idempotency(store IdempotencyStore, ttl time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			// Only enforce on mutating methods
			switch method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			idempKey := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
			if idempKey == "" {
				return next(c)
			}
			if !id.ValidKey(strings.ToLower(idempKey)) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid Idempotency-Key format"})
			}

			// Buffer & hash body
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(method, req.URL.Path, idempKey)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			ok, err := store.Reserve(ctx, key, cache.IdempotencyEntry{
				InProgress: true,
				BodySHA256: bhash,
				Key:        idempKey,
				CreatedAt:  nowUTC(),
			})
			if err != nil {
				log.Error().Err(err).Str("key", key).Msg("idempotency reserve failed")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				// Key exists: body must match, and we may be able to replay
				cur, errLoad := store.Load(ctx, key)
				if errLoad != nil && !errors.Is(errLoad, cache.ErrNoEntry) {
					log.Warn().Err(errLoad).Str("key", key).Msg("idempotency load failed")
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": "Idempotency-Key reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 {
					c.Response().Header().Set(HeaderReplayed, "true")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be done; finish the bookkeeping anyway
			saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer saveCancel()

			if rec.code >= http.StatusInternalServerError {
				if err := store.Release(saveCtx, key); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("idempotency release failed")
				}
				return nil
			}
			final := cache.IdempotencyEntry{
				Code:       rec.code,
				Body:       rec.buf.Bytes(),
				BodySHA256: bhash,
				Key:        idempKey,
				CreatedAt:  nowUTC(),
			}
			if err := store.Save(saveCtx, key, final, ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("idempotency save failed")
			}
			return nil
		}
	}
}
