package pageinsight

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/Bahjat/page-snapshot/internal/model"
	"github.com/Bahjat/page-snapshot/internal/platform/config"
	"github.com/Bahjat/page-snapshot/internal/platform/errs"
	"github.com/Bahjat/page-snapshot/internal/platform/logger"
)

// pageAcquirer defines how the engine obtains the HTML to analyze.
type pageAcquirer interface {
	Acquire(ctx context.Context, targetURL string, forcePrerender bool) (*AcquiredPage, error)
}

// linkProber defines how the engine estimates external link breakage.
type linkProber interface {
	CountBroken(ctx context.Context, targets []string) int
}

// Engine orchestrates acquisition, extraction, link probing and the SEO summary.
type Engine struct {
	acquirer pageAcquirer
	prober   linkProber
	logger   *slog.Logger
}

// NewEngine returns an Engine backed by the given acquirer and prober.
func NewEngine(acquirer pageAcquirer, prober linkProber, log *slog.Logger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		acquirer: acquirer,
		prober:   prober,
		logger:   log,
	}
}

// New wires an Engine from configuration: one HTTP client shared by the
// acquirer and the prober, the heuristic classifier and the prerender proxy.
func New(cfg config.Config, log *slog.Logger) *Engine {
	client := NewHTTPClient(ClientOptions{
		Headers:              HeadersFromConfig(cfg),
		MaxBodyBytes:         cfg.MaxBodyBytes,
		AllowPrivateNetworks: cfg.AllowPrivateNetworks,
	})

	acquirer := NewAcquirer(client, AcquirerOptions{
		Classifier:   NewHeuristicClassifier(cfg.ShellMaxBytes, cfg.BlockPhrases),
		Proxy:        PrerenderProxy{Endpoint: cfg.PrerenderEndpoint},
		FetchTimeout: cfg.FetchTimeout,
		Logger:       log,
	})

	prober := NewProber(client, ProberOptions{
		MaxTargets: cfg.LinkProbeCap,
		Timeout:    cfg.ProbeTimeout,
		Logger:     log,
	})

	return NewEngine(acquirer, prober, log)
}

const invalidURLMessage = "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com)."

// Analyze acquires the requested page and builds its profile. It returns
// either a complete profile or an *errs.AppError; partial profiles are never
// returned.
func (e *Engine) Analyze(ctx context.Context, req model.SnapshotRequest) (*model.PageProfile, error) {
	pageURL, err := validateURL(req.URL)
	if err != nil {
		return nil, err
	}

	page, err := e.acquirer.Acquire(ctx, req.URL, req.Prerender)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(page.HTML)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "Failed to parse the HTML content.",
			Cause:   err,
		}
	}

	e.logger.Debug("page acquired",
		"url", req.URL,
		"final_url", page.FinalURL,
		"status", page.FinalStatus,
		"prerendered", page.Prerendered,
	)

	ex := Extract(doc, req.URL, page.Headers)
	if ex.JSONLDSkipped > 0 {
		e.logger.Debug("skipped malformed json-ld blocks", "url", req.URL, "count", ex.JSONLDSkipped)
	}

	links := ClassifyLinks(doc.Find("a[href]"), pageURL)
	links.Stats.Broken = e.prober.CountBroken(ctx, links.ExternalTargets)

	return &model.PageProfile{
		URL:             req.URL,
		Title:           ex.Title,
		MetaDescription: ex.MetaDescription,
		Canonical:       ex.Canonical,
		Lang:            ex.Lang,
		PageSizeKB:      sizeKB(page.HTML),
		WordCount:       ex.WordCount,
		ImageCount:      ex.ImageCount,
		MetaTags:        ex.MetaTags,
		OGTags:          ex.OGTags,
		Headings:        ex.Headings,
		HeadingCounts:   ex.HeadingCounts,
		LinkStats:       links.Stats,
		JSONLD:          ex.JSONLD,
		HrefLangs:       ex.HrefLangs,
		SEO:             BuildSummary(ex, links.Stats),
		Prerendered:     page.Prerendered,
	}, nil
}

func validateURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Missing ?url=",
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: invalidURLMessage,
			Cause:   err,
		}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: invalidURLMessage,
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Only http and https URLs are supported.",
		}
	}
	return parsed, nil
}

// sizeKB reports the body size in KiB rounded to two decimals.
func sizeKB(body string) float64 {
	return math.Round(float64(len(body))/10.24) / 100
}
