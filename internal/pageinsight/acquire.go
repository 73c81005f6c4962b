package pageinsight

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Bahjat/page-snapshot/internal/platform/errs"
	"github.com/Bahjat/page-snapshot/internal/platform/logger"
	"github.com/Bahjat/page-snapshot/internal/platform/metrics"
)

// AcquiredPage is the page body that will be analyzed. Headers belong to the
// response the body came from.
type AcquiredPage struct {
	HTML        string
	FinalStatus int
	Headers     http.Header
	// FinalURL is where the primary fetch landed after redirects.
	FinalURL string
	// Prerendered records that the prerender path ran, not that it produced
	// a better body.
	Prerendered bool
}

// AcquirerOptions configures an Acquirer. Zero values select defaults.
type AcquirerOptions struct {
	Classifier   Classifier
	Proxy        PrerenderProxy
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

const defaultFetchTimeout = 15 * time.Second

// Acquirer sequences the primary fetch, the shell/block detector and the
// prerender fallback into one AcquiredPage.
type Acquirer struct {
	fetcher      Fetcher
	classify     Classifier
	proxy        PrerenderProxy
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewAcquirer returns an Acquirer that fetches through fetcher.
func NewAcquirer(fetcher Fetcher, opts AcquirerOptions) *Acquirer {
	if opts.Classifier == nil {
		opts.Classifier = NewHeuristicClassifier(DefaultShellMaxBytes, DefaultBlockPhrases)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Acquirer{
		fetcher:      fetcher,
		classify:     opts.Classifier,
		proxy:        opts.Proxy,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
	}
}

// Acquire fetches targetURL and, when forcePrerender is set or the body looks
// like a JavaScript shell, replaces it with the prerender proxy's rendering.
// Blocked pages fail with an errs.Blocked AppError and never reach the proxy.
func (a *Acquirer) Acquire(ctx context.Context, targetURL string, forcePrerender bool) (*AcquiredPage, error) {
	primary, err := a.fetch(ctx, targetURL)
	if err != nil {
		metrics.Acquisitions.WithLabelValues("failed").Inc()
		if ownDeadline(ctx, err) {
			return nil, &errs.AppError{
				Kind:    errs.Blocked,
				Message: "The page did not respond before the fetch deadline.",
				Cause:   err,
			}
		}
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The provided URL could not be reached.",
			Cause:   err,
		}
	}

	verdict := a.classify(primary)
	metrics.Acquisitions.WithLabelValues(verdict.String()).Inc()

	if verdict == VerdictBlocked {
		return nil, &errs.AppError{
			Kind:           errs.Blocked,
			UpstreamStatus: primary.StatusCode,
			Message:        "The site is protected by a bot-check or returned an error status.",
		}
	}

	if primary.FinalURL != "" && primary.FinalURL != targetURL {
		a.logger.Debug("primary fetch redirected", "url", targetURL, "final_url", primary.FinalURL)
	}

	page := &AcquiredPage{
		HTML:        primary.Body,
		FinalStatus: primary.StatusCode,
		Headers:     primary.Headers,
		FinalURL:    primary.FinalURL,
		Prerendered: forcePrerender || verdict == VerdictShell,
	}
	if !page.Prerendered {
		return page, nil
	}

	reason := "shell"
	if forcePrerender {
		reason = "forced"
	}
	metrics.Prerenders.WithLabelValues(reason).Inc()
	a.logger.Debug("prerendering page", "url", targetURL, "reason", reason, "primary_bytes", len(primary.Body))

	rendered, err := a.fetch(ctx, a.proxy.Rewrite(targetURL))
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The prerender service could not be reached.",
			Cause:   err,
		}
	}

	page.HTML = rendered.Body
	page.FinalStatus = rendered.StatusCode
	page.Headers = rendered.Headers
	return page, nil
}

func (a *Acquirer) fetch(ctx context.Context, target string) (*FetchResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()
	return a.fetcher.Fetch(fetchCtx, http.MethodGet, target)
}

// ownDeadline reports whether err came from the per-fetch deadline while the
// caller's context was still live.
func ownDeadline(parent context.Context, err error) bool {
	return parent.Err() == nil && errors.Is(err, context.DeadlineExceeded)
}
