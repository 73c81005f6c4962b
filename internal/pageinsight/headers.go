package pageinsight

import (
	"net/http"

	"github.com/Bahjat/page-snapshot/internal/platform/config"
)

// RequestHeaders is the browser-like header set sent on every fetch and
// probe.
type RequestHeaders struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// DefaultHeaders returns the desktop Chrome header set.
func DefaultHeaders() RequestHeaders {
	return RequestHeaders{
		UserAgent:      config.DefaultUserAgent,
		Accept:         config.DefaultAccept,
		AcceptLanguage: config.DefaultAcceptLanguage,
	}
}

// HeadersFromConfig returns the header set configured in cfg.
func HeadersFromConfig(cfg config.Config) RequestHeaders {
	return RequestHeaders{
		UserAgent:      cfg.UserAgent,
		Accept:         cfg.Accept,
		AcceptLanguage: cfg.AcceptLanguage,
	}
}

func (h RequestHeaders) apply(req *http.Request) {
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	if h.Accept != "" {
		req.Header.Set("Accept", h.Accept)
	}
	if h.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", h.AcceptLanguage)
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
}
