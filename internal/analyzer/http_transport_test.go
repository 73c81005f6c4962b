package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Bahjat/page-snapshot/internal/model"
	"github.com/Bahjat/page-snapshot/internal/platform/errs"
	"github.com/Bahjat/page-snapshot/internal/platform/logger"
)

// mockProvider implements PageInsightProvider for testing.
type mockProvider struct {
	result *model.PageProfile
	err    error
	got    model.SnapshotRequest
	// wait blocks Analyze until ctx is done.
	wait bool
}

func (m *mockProvider) Analyze(ctx context.Context, req model.SnapshotRequest) (*model.PageProfile, error) {
	m.got = req
	if m.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.result, m.err
}

func newTestRouter(provider PageInsightProvider, timeout time.Duration) chi.Router {
	log := logger.Discard()
	transport := NewTransport(NewService(provider, log), log, timeout)
	r := chi.NewRouter()
	transport.RegisterRoutes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, model.ErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body model.ErrorResponse
	if rec.Code != http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestHandleSnapshot_Success(t *testing.T) {
	title := "Example"
	provider := &mockProvider{
		result: &model.PageProfile{
			URL:           "https://example.com",
			Title:         &title,
			HeadingCounts: map[string]int{"h1": 1, "h2": 0, "h3": 0, "h4": 0, "h5": 0, "h6": 0},
			LinkStats:     model.LinkStats{Internal: 3, External: 1},
			Prerendered:   true,
		},
	}
	r := newTestRouter(provider, time.Second)

	rec, _ := doGet(t, r, "/snapshot?url=https%3A%2F%2Fexample.com&prerender=1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if provider.got.URL != "https://example.com" || !provider.got.Prerender {
		t.Errorf("provider got %+v, want url and prerender=true", provider.got)
	}

	var result map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["title"] != "Example" {
		t.Errorf("title = %v, want Example", result["title"])
	}
	if result["prerendered"] != true {
		t.Errorf("prerendered = %v, want true", result["prerendered"])
	}
	links, _ := result["linkStats"].(map[string]any)
	if links["internalLinks"] != float64(3) {
		t.Errorf("linkStats = %v, want internalLinks 3", result["linkStats"])
	}
}

func TestHandleSnapshot_PrerenderFlagOnlyForOne(t *testing.T) {
	for _, value := range []string{"", "0", "true", "yes"} {
		provider := &mockProvider{result: &model.PageProfile{}}
		r := newTestRouter(provider, time.Second)

		doGet(t, r, "/snapshot?url=https://example.com&prerender="+value)

		if provider.got.Prerender {
			t.Errorf("prerender=%q should not force prerendering", value)
		}
	}
}

func TestHandleSnapshot_MissingURL(t *testing.T) {
	provider := &mockProvider{}
	r := newTestRouter(provider, time.Second)

	rec, body := doGet(t, r, "/snapshot")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if body.Error != "Missing ?url=" {
		t.Errorf("error = %q, want %q", body.Error, "Missing ?url=")
	}
	if provider.got.URL != "" {
		t.Error("provider should not be called without a url")
	}
}

func TestHandleSnapshot_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail bool
	}{
		{
			name:       "invalid input",
			err:        &errs.AppError{Kind: errs.InvalidInput, Message: "bad url"},
			wantStatus: http.StatusBadRequest,
			wantError:  "bad url",
		},
		{
			name:       "blocked",
			err:        &errs.AppError{Kind: errs.Blocked, UpstreamStatus: 403, Message: "blocked"},
			wantStatus: http.StatusLocked,
			wantError:  "Site is protected by a bot-check or returned an error",
		},
		{
			name:       "unreachable",
			err:        &errs.AppError{Kind: errs.Unreachable, Message: "cannot reach", Cause: errors.New("dial tcp: refused")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to fetch or parse page",
			wantDetail: true,
		},
		{
			name:       "parsing failed",
			err:        &errs.AppError{Kind: errs.ParsingFailed, Message: "parse"},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to fetch or parse page",
			wantDetail: true,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to fetch or parse page",
			wantDetail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&mockProvider{err: tt.err}, time.Second)

			rec, body := doGet(t, r, "/snapshot?url=https://example.com")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if tt.wantDetail && body.Detail == "" {
				t.Error("detail should carry the underlying error message")
			}
			if !tt.wantDetail && body.Detail != "" {
				t.Errorf("detail = %q, want none", body.Detail)
			}
		})
	}
}

func TestHandleSnapshot_Timeout(t *testing.T) {
	r := newTestRouter(&mockProvider{wait: true}, 20*time.Millisecond)

	rec, body := doGet(t, r, "/snapshot?url=https://slow.example.com")

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
	if !strings.HasPrefix(body.Error, "Snapshot timed out") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestHandleHealth(t *testing.T) {
	r := newTestRouter(&mockProvider{}, time.Second)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestHandleSnapshot_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(&mockProvider{}, time.Second)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot?url=https://example.com", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
