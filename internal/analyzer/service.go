package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Bahjat/page-snapshot/internal/model"
	"github.com/Bahjat/page-snapshot/internal/platform/errs"
	"github.com/Bahjat/page-snapshot/internal/platform/metrics"
	"github.com/Bahjat/page-snapshot/internal/platform/requestid"
)

// Service runs a PageInsightProvider, classifies deadline failures and logs
// the outcome.
type Service struct {
	provider PageInsightProvider
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider PageInsightProvider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, req model.SnapshotRequest) (*model.PageProfile, error) {
	logger := requestid.Logger(ctx, s.logger).With("url", req.URL, "prerender", req.Prerender)
	start := time.Now()

	result, err := s.provider.Analyze(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "Snapshot timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		kind := errs.KindOf(err)
		metrics.RequestDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())

		attrs := []any{"error", err, "kind", kind.String()}
		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
			attrs = append(attrs, "target_status", appErr.UpstreamStatus)
		}
		logger.Error("snapshot failed", attrs...)
		return nil, err
	}

	metrics.RequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	logger.Info("snapshot complete",
		"prerendered", result.Prerendered,
		"page_size_kb", result.PageSizeKB,
		"word_count", result.WordCount,
		"h1_count", result.SEO.H1Count,
		"internal_links", result.LinkStats.Internal,
		"external_links", result.LinkStats.External,
		"nofollow_links", result.LinkStats.Nofollow,
		"broken_links", result.LinkStats.Broken,
		"json_ld", len(result.JSONLD),
	)
	return result, nil
}
