package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Bahjat/page-snapshot/internal/model"
	"github.com/Bahjat/page-snapshot/internal/platform/errs"
)

const defaultSnapshotTimeout = 60 * time.Second

// Fixed client-facing error messages.
const (
	msgMissingURL = "Missing ?url="
	msgBlocked    = "Site is protected by a bot-check or returned an error"
	msgFailed     = "Failed to fetch or parse page"
	msgTimeout    = "Snapshot timed out"
)

// Transport handles HTTP requests for page snapshots.
type Transport struct {
	service *Service
	logger  *slog.Logger
	timeout time.Duration
}

// NewTransport creates an HTTP transport backed by the given service. A
// non-positive timeout selects the default of 60s.
func NewTransport(service *Service, logger *slog.Logger, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = defaultSnapshotTimeout
	}
	return &Transport{service: service, logger: logger, timeout: timeout}
}

// RegisterRoutes attaches the transport's handlers to the given router.
// Extra middleware (rate limiting) applies to the snapshot route only.
func (t *Transport) RegisterRoutes(r chi.Router, snapshotMiddleware ...func(http.Handler) http.Handler) {
	r.Get("/healthz", t.handleHealth)
	r.With(snapshotMiddleware...).Get("/snapshot", t.handleSnapshot)
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Transport) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := model.SnapshotRequest{
		URL:       q.Get("url"),
		Prerender: q.Get("prerender") == "1",
	}

	if req.URL == "" {
		t.renderJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: msgMissingURL})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), t.timeout)
	defer cancel()

	result, err := t.service.Analyze(ctx, req)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, result)
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		t.renderJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: msgFailed, Detail: err.Error()})
		return
	}

	switch appErr.Kind {
	case errs.InvalidInput:
		t.renderJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: appErr.Message})
	case errs.Blocked:
		t.renderJSON(w, http.StatusLocked, model.ErrorResponse{Error: msgBlocked})
	case errs.Timeout:
		t.renderJSON(w, http.StatusGatewayTimeout, model.ErrorResponse{Error: msgTimeout, Detail: appErr.Error()})
	default: // Unreachable, ParsingFailed, Unknown
		t.renderJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: msgFailed, Detail: appErr.Error()})
	}
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
