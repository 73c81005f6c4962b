package model

// SnapshotRequest is the input to a single page snapshot.
type SnapshotRequest struct {
	URL       string
	Prerender bool
}

// PageProfile holds the complete structured profile of a snapshotted page.
type PageProfile struct {
	URL             string            `json:"url" yaml:"url"`
	Title           *string           `json:"title" yaml:"title"`
	MetaDescription *string           `json:"metaDescription" yaml:"metaDescription"`
	Canonical       *string           `json:"canonical" yaml:"canonical"`
	Lang            *string           `json:"lang" yaml:"lang"`
	PageSizeKB      float64           `json:"pageSizeKb" yaml:"pageSizeKb"`
	WordCount       int               `json:"wordCount" yaml:"wordCount"`
	ImageCount      int               `json:"imageCount" yaml:"imageCount"`
	MetaTags        map[string]string `json:"metaTags" yaml:"metaTags"`
	OGTags          map[string]string `json:"ogTags" yaml:"ogTags"`
	Headings        []Heading         `json:"headings" yaml:"headings"`
	HeadingCounts   map[string]int    `json:"headingCounts" yaml:"headingCounts"`
	LinkStats       LinkStats         `json:"linkStats" yaml:"linkStats"`
	JSONLD          []JSONLDEntity    `json:"jsonLd" yaml:"jsonLd"`
	HrefLangs       []HrefLang        `json:"hreflangs" yaml:"hreflangs"`
	SEO             SEOSummary        `json:"seo" yaml:"seo"`
	Prerendered     bool              `json:"prerendered" yaml:"prerendered"`
}

// Heading is a single h1-h6 element in document order.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Tag   string `json:"tag" yaml:"tag"`
	Text  string `json:"text" yaml:"text"`
}

// LinkStats breaks down the anchors found on a page.
type LinkStats struct {
	Internal int `json:"internalLinks" yaml:"internalLinks"`
	External int `json:"externalLinks" yaml:"externalLinks"`
	Nofollow int `json:"nofollowCount" yaml:"nofollowCount"`
	Broken   int `json:"brokenCount" yaml:"brokenCount"`
}

// JSONLDEntity is the type/name pair of one top-level JSON-LD object.
type JSONLDEntity struct {
	Type *string `json:"type" yaml:"type"`
	Name *string `json:"name" yaml:"name"`
}

// HrefLang is one language alternate declared with <link rel="alternate">.
type HrefLang struct {
	HrefLang string `json:"hreflang" yaml:"hreflang"`
	Href     string `json:"href" yaml:"href"`
}

// Canonical status values.
const (
	CanonicalMissing   = "missing"
	CanonicalSelf      = "self"
	CanonicalDifferent = "different"
)

// SEOSummary is the diagnostic view derived from the extracted signals.
type SEOSummary struct {
	TitleLength            int      `json:"titleLength" yaml:"titleLength"`
	TitleTooLong           bool     `json:"titleTooLong" yaml:"titleTooLong"`
	MetaDescriptionLength  int      `json:"metaDescriptionLength" yaml:"metaDescriptionLength"`
	MetaDescriptionTooLong bool     `json:"metaDescriptionTooLong" yaml:"metaDescriptionTooLong"`
	H1Count                int      `json:"h1Count" yaml:"h1Count"`
	ImagesWithAlt          int      `json:"imagesWithAlt" yaml:"imagesWithAlt"`
	ImagesMissingAlt       int      `json:"imagesMissingAlt" yaml:"imagesMissingAlt"`
	RobotsDirectives       []string `json:"robotsDirectives" yaml:"robotsDirectives"`
	CanonicalStatus        string   `json:"canonicalStatus" yaml:"canonicalStatus"`
	HasOGTags              bool     `json:"hasOgTags" yaml:"hasOgTags"`
	HasJSONLD              bool     `json:"hasJsonLd" yaml:"hasJsonLd"`
	WordCount              int      `json:"wordCount" yaml:"wordCount"`

	LinkStats `yaml:",inline"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
