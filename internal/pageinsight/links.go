package pageinsight

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Bahjat/page-snapshot/internal/model"
)

// LinkClassification is the anchor breakdown before liveness probing.
// ExternalTargets holds each distinct resolved external URL once, in the
// order first encountered; Stats.External counts every external anchor.
type LinkClassification struct {
	Stats           model.LinkStats
	ExternalTargets []string
}

// ClassifyLinks partitions anchors into internal and external links relative
// to pageURL and counts nofollow hints. Anchors with an empty, javascript: or
// mailto: href are ignored.
func ClassifyLinks(anchors *goquery.Selection, pageURL *url.URL) LinkClassification {
	var lc LinkClassification
	pageHost := bareHost(pageURL)
	seen := make(map[string]struct{})

	for _, a := range anchors.EachIter() {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			continue
		}

		if strings.Contains(strings.ToLower(a.AttrOr("rel", "")), "nofollow") {
			lc.Stats.Nofollow++
		}

		resolved, ok := resolve(pageURL, href)
		if !ok || isInternal(href, bareHost(resolved), pageHost) {
			lc.Stats.Internal++
			continue
		}

		lc.Stats.External++
		target := resolved.String()
		if _, dup := seen[target]; !dup {
			seen[target] = struct{}{}
			lc.ExternalTargets = append(lc.ExternalTargets, target)
		}
	}
	return lc
}

// isInternal applies the fail-safe rule: an unresolvable host, the page's own
// host, or a fragment/root-relative href all count as internal.
func isInternal(href, host, pageHost string) bool {
	return host == "" ||
		host == pageHost ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "/")
}

func resolve(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(ref), true
}

// bareHost returns the lower-cased hostname without port or leading "www.".
func bareHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
