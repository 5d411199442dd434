// Package httptransport assembles the public HTTP surface: the feature
// handlers behind the shared middleware chain, plus the operational
// endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fakturo/internal/platform/metrics"
	"fakturo/internal/platform/middleware"
	"fakturo/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// FeatureHandler registers a feature's routes on a chi router.
type FeatureHandler interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a dependency is reachable. A nil checker is
// skipped.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router needs.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator
	Redis        HealthChecker
	Features     []FeatureHandler
}

// NewRouter wires the API under /v1 behind auth, and the operational
// endpoints without it.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", handleHealthz(deps.Redis))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(requestTimeout))
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))
		for _, feature := range deps.Features {
			feature.Register(api)
		}
	})

	return r
}

func handleHealthz(redis HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if redis != nil {
			if err := redis.Health(r.Context()); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["redis"] = "ok"
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
