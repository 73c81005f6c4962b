package pageinsight

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Bahjat/page-snapshot/internal/platform/logger"
	"github.com/Bahjat/page-snapshot/internal/platform/metrics"
)

// DefaultProbeCap is the number of distinct external URLs probed per page.
// Links past the cap are never counted as broken, so pages with many
// external links under-report.
const DefaultProbeCap = 10

const defaultProbeTimeout = 5 * time.Second

// ProberOptions configures a Prober. Zero values select defaults.
type ProberOptions struct {
	MaxTargets int
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Prober estimates external link breakage with HEAD requests.
type Prober struct {
	fetcher    Fetcher
	maxTargets int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewProber returns a Prober that issues HEAD requests through fetcher.
func NewProber(fetcher Fetcher, opts ProberOptions) *Prober {
	if opts.MaxTargets <= 0 {
		opts.MaxTargets = DefaultProbeCap
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProbeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Prober{
		fetcher:    fetcher,
		maxTargets: opts.MaxTargets,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}
}

// CountBroken probes up to the configured cap of targets concurrently and
// returns how many failed. All probes settle before it returns; one failing
// probe never cancels or delays another.
func (p *Prober) CountBroken(ctx context.Context, targets []string) int {
	targets = targets[:min(len(targets), p.maxTargets)]
	if len(targets) == 0 {
		return 0
	}

	results := make([]outcome[int], len(targets))
	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			results[i] = p.probe(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	var broken int
	for i, res := range results {
		if isBroken(res) {
			broken++
			metrics.Probes.WithLabelValues("broken").Inc()
			p.logger.Debug("external link broken", "target", targets[i], "status", res.value, "error", res.err)
			continue
		}
		metrics.Probes.WithLabelValues("ok").Inc()
	}
	return broken
}

// probe issues one HEAD request under its own deadline. Redirects are
// followed by the fetcher.
func (p *Prober) probe(ctx context.Context, target string) outcome[int] {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.fetcher.Fetch(ctx, http.MethodHead, target)
	if err != nil {
		return failed[int](err)
	}
	return succeeded(res.StatusCode)
}

// isBroken treats transport errors, timeouts and statuses >= 400 as broken.
func isBroken(res outcome[int]) bool {
	return !res.ok() || res.value >= http.StatusBadRequest
}
