package pageinsight

import (
	"net/http"
	"regexp"
	"strings"
)

// Verdict is the detector's classification of a primary fetch.
type Verdict int

const (
	// VerdictOK means the body looks like a normal, server-rendered page.
	VerdictOK Verdict = iota
	// VerdictShell means the body looks like an empty JavaScript bootstrap.
	VerdictShell
	// VerdictBlocked means the target answered with an error or a bot-check page.
	VerdictBlocked
)

func (v Verdict) String() string {
	switch v {
	case VerdictShell:
		return "shell"
	case VerdictBlocked:
		return "blocked"
	default:
		return "ok"
	}
}

// Classifier inspects a fetched page and returns a Verdict. Swapping the
// classifier changes thresholds and phrases without touching orchestration.
type Classifier func(res *FetchResult) Verdict

// Default detector thresholds.
const (
	DefaultShellMaxBytes = 5000
)

// DefaultBlockPhrases are bot-check interstitial markers, matched case-insensitively.
var DefaultBlockPhrases = []string{"just a moment"}

var scriptSrcPattern = regexp.MustCompile(`(?i)<script\b[^>]*src`)

// NewHeuristicClassifier returns a Classifier that reports blocked when the
// status is >= 400 or the body contains any of phrases, and shell when the
// body is shorter than shellMaxBytes and carries a <script src> tag. Short
// static pages that include a script tag are classified as shells.
func NewHeuristicClassifier(shellMaxBytes int, phrases []string) Classifier {
	if shellMaxBytes <= 0 {
		shellMaxBytes = DefaultShellMaxBytes
	}
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}

	return func(res *FetchResult) Verdict {
		if res.StatusCode >= http.StatusBadRequest || containsAny(strings.ToLower(res.Body), lowered) {
			return VerdictBlocked
		}
		if len(res.Body) < shellMaxBytes && scriptSrcPattern.MatchString(res.Body) {
			return VerdictShell
		}
		return VerdictOK
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
