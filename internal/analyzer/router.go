package analyzer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Bahjat/page-snapshot/internal/platform/middleware"
)

// RouterOptions configures the HTTP router.
type RouterOptions struct {
	RateLimit rate.Limit
	Burst     int
}

// NewRouter mounts the transport, health and metrics endpoints behind the
// shared middleware stack.
func NewRouter(t *Transport, logger *slog.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	var limited []func(http.Handler) http.Handler
	if opts.RateLimit > 0 && opts.Burst > 0 {
		limited = append(limited, middleware.RateLimit(opts.RateLimit, opts.Burst))
	}
	t.RegisterRoutes(r, limited...)

	return r
}
