package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It does not
// touch the store.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Root answers GET / with a banner.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Pliva Retreat API running"})
}

// StoreDiagnostics is implemented by repository.DiagnosticsRepo and
// repository.MemoryStore.
type StoreDiagnostics interface {
	Ping(ctx context.Context) error
	Name(ctx context.Context) (string, error)
	CollectionNames(ctx context.Context, limit int) ([]string, error)
}

// maxCollections caps the collection names reported by Diagnostics.
const maxCollections = 10

// HealthHandler reports the reachability of the backing services.
type HealthHandler struct {
	Store   StoreDiagnostics
	Redis   *redis.Client // nil when redis is disabled
	Timeout time.Duration
	Log     *zap.Logger
}

func NewHealthHandler(store StoreDiagnostics, rdb *redis.Client, timeout time.Duration, log *zap.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{Store: store, Redis: rdb, Timeout: timeout, Log: log}
}

type storeStatus struct {
	Status      string   `json:"status"`
	Name        string   `json:"name,omitempty"`
	Collections []string `json:"collections"`
	Error       string   `json:"error,omitempty"`
}

type redisStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type diagnosticsResp struct {
	Backend string      `json:"backend"`
	Store   storeStatus `json:"store"`
	Redis   redisStatus `json:"redis"`
}

// Diagnostics handles GET /v1/diagnostics.  It always answers 200; the
// body says which dependency is unhealthy.  Error texts are cut short so
// connection strings do not leak.
func (h *HealthHandler) Diagnostics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	resp := diagnosticsResp{
		Backend: "running",
		Store:   h.storeStatus(ctx),
		Redis:   h.redisStatus(ctx),
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) storeStatus(ctx context.Context) storeStatus {
	st := storeStatus{Status: "unavailable", Collections: []string{}}
	if h.Store == nil {
		return st
	}
	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Warn("store ping failed", zap.Error(err))
		st.Error = shorten(err.Error())
		return st
	}
	st.Status = "connected"
	if name, err := h.Store.Name(ctx); err == nil {
		st.Name = name
	}
	names, err := h.Store.CollectionNames(ctx, maxCollections)
	if err != nil {
		st.Status = "degraded"
		st.Error = shorten(err.Error())
		return st
	}
	st.Collections = append(st.Collections, names...)
	return st
}

func (h *HealthHandler) redisStatus(ctx context.Context) redisStatus {
	if h.Redis == nil {
		return redisStatus{Status: "disabled"}
	}
	if err := h.Redis.Ping(ctx).Err(); err != nil {
		return redisStatus{Status: "unavailable", Error: shorten(err.Error())}
	}
	return redisStatus{Status: "connected"}
}

func shorten(s string) string {
	const limit = 50
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
