package pageinsight

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Bahjat/page-snapshot/internal/model"
)

// Extraction holds every structural signal derived from one document.
type Extraction struct {
	Title           *string
	MetaDescription *string
	Canonical       *string
	Lang            *string

	MetaTags map[string]string
	OGTags   map[string]string

	Headings      []model.Heading
	HeadingCounts map[string]int

	JSONLD        []model.JSONLDEntity
	JSONLDSkipped int
	HrefLangs     []model.HrefLang

	WordCount        int
	ImageCount       int
	ImagesWithAlt    int
	ImagesMissingAlt int

	RobotsDirectives []string
	CanonicalStatus  string
}

// Extract derives metadata, headings, JSON-LD, hreflang, counts and robots
// directives from doc. pageURL is the URL the caller asked for; headers are
// those of the response the document came from.
func Extract(doc *goquery.Document, pageURL string, headers http.Header) Extraction {
	ex := Extraction{
		Title:           nullable(doc.Find("title").First().Text()),
		MetaDescription: nullable(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		Canonical:       nullable(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")),
		Lang:            nullable(doc.Find("html").AttrOr("lang", "")),
		MetaTags:        collectMetaTags(doc.Find("meta")),
	}

	ex.OGTags = openGraphSubset(ex.MetaTags)
	ex.Headings, ex.HeadingCounts = collectHeadings(doc)
	ex.JSONLD, ex.JSONLDSkipped = collectJSONLD(doc.Find(jsonLDSelector))
	ex.HrefLangs = collectHrefLangs(doc.Find(`link[rel="alternate"][hreflang]`))
	ex.WordCount = countWords(doc.Find("body").Text())

	images := doc.Find("img")
	ex.ImageCount = images.Length()
	for _, img := range images.EachIter() {
		if strings.TrimSpace(img.AttrOr("alt", "")) != "" {
			ex.ImagesWithAlt++
		} else {
			ex.ImagesMissingAlt++
		}
	}

	ex.RobotsDirectives = robotsDirectives(ex.MetaTags["robots"], headers)
	ex.CanonicalStatus = canonicalStatus(ex.Canonical, pageURL)
	return ex
}

// collectMetaTags folds every <meta> into a map keyed by the lower-cased name
// attribute, or property when name is absent. Later duplicates overwrite
// earlier ones.
func collectMetaTags(metas *goquery.Selection) map[string]string {
	tags := make(map[string]string)
	for _, s := range metas.EachIter() {
		key, ok := s.Attr("name")
		if !ok {
			key, _ = s.Attr("property")
		}
		content := s.AttrOr("content", "")
		if key == "" || content == "" {
			continue
		}
		tags[strings.ToLower(key)] = content
	}
	return tags
}

func openGraphSubset(tags map[string]string) map[string]string {
	og := make(map[string]string)
	for k, v := range tags {
		if strings.HasPrefix(k, "og:") {
			og[k] = v
		}
	}
	return og
}

// collectHeadings returns non-empty headings grouped by level: every h1 in
// document order, then every h2, and so on. Counts for all six levels are
// always present.
func collectHeadings(doc *goquery.Document) ([]model.Heading, map[string]int) {
	headings := []model.Heading{}
	counts := make(map[string]int, 6)

	for level := 1; level <= 6; level++ {
		tag := "h" + strconv.Itoa(level)
		counts[tag] = 0
		for _, s := range doc.Find(tag).EachIter() {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				continue
			}
			headings = append(headings, model.Heading{Level: level, Tag: tag, Text: text})
			counts[tag]++
		}
	}
	return headings, counts
}

// countWords counts runs of non-whitespace, using the ECMAScript \s set:
// U+FEFF separates words, U+0085 does not.
func countWords(text string) int {
	return len(strings.FieldsFunc(text, isWordSeparator))
}

func isWordSeparator(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

func collectHrefLangs(links *goquery.Selection) []model.HrefLang {
	out := []model.HrefLang{}
	for _, s := range links.EachIter() {
		lang := s.AttrOr("hreflang", "")
		href := s.AttrOr("href", "")
		if lang != "" && href != "" {
			out = append(out, model.HrefLang{HrefLang: lang, Href: href})
		}
	}
	return out
}

// robotsDirectives pools lower-cased comma separated tokens from the robots
// meta tag followed by every X-Robots-Tag header value. Duplicates are kept.
func robotsDirectives(metaRobots string, headers http.Header) []string {
	directives := []string{}
	sources := []string{metaRobots, strings.Join(headers.Values("X-Robots-Tag"), ",")}
	for _, src := range sources {
		for _, tok := range strings.Split(strings.ToLower(src), ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				directives = append(directives, tok)
			}
		}
	}
	return directives
}

// canonicalStatus compares the declared canonical with the requested URL
// after stripping one trailing slash from each. Scheme and host are not
// normalized: http vs https or a www. prefix count as different.
func canonicalStatus(canonical *string, pageURL string) string {
	if canonical == nil {
		return model.CanonicalMissing
	}
	if strings.TrimSuffix(*canonical, "/") == strings.TrimSuffix(pageURL, "/") {
		return model.CanonicalSelf
	}
	return model.CanonicalDifferent
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
