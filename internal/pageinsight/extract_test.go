package pageinsight

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/Bahjat/page-snapshot/internal/model"
)

func mustExtract(t *testing.T, markup, pageURL string, headers http.Header) Extraction {
	t.Helper()
	doc, err := ParseDocument(markup)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if headers == nil {
		headers = http.Header{}
	}
	return Extract(doc, pageURL, headers)
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestExtract_Metadata(t *testing.T) {
	markup := `<!DOCTYPE html>
<html lang="en-GB">
<head>
	<title>Widgets &amp; Co</title>
	<meta name="description" content="All about widgets">
	<meta name="Robots" content="NoIndex, follow">
	<meta property="og:title" content="Widgets OG">
	<meta property="og:image" content="https://cdn.example.com/w.png">
	<meta name="twitter:card" property="og:ignored" content="summary">
	<meta charset="utf-8">
	<link rel="canonical" href="https://example.com/widgets/">
	<link rel="alternate" hreflang="de" href="https://example.com/de/widgets">
	<link rel="alternate" hreflang="x-default" href="https://example.com/widgets">
	<link rel="alternate" href="https://example.com/feed">
</head>
<body><p>one two  three</p>
<p>four</p></body>
</html>`

	ex := mustExtract(t, markup, "https://example.com/widgets", nil)

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"Title", strOrNil(ex.Title), "Widgets & Co"},
		{"MetaDescription", strOrNil(ex.MetaDescription), "All about widgets"},
		{"Canonical", strOrNil(ex.Canonical), "https://example.com/widgets/"},
		{"Lang", strOrNil(ex.Lang), "en-GB"},
		{"WordCount", ex.WordCount, 4},
		{"CanonicalStatus", ex.CanonicalStatus, model.CanonicalSelf},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}

	wantMeta := map[string]string{
		"description":  "All about widgets",
		"robots":       "NoIndex, follow",
		"og:title":     "Widgets OG",
		"og:image":     "https://cdn.example.com/w.png",
		"twitter:card": "summary",
	}
	if !reflect.DeepEqual(ex.MetaTags, wantMeta) {
		t.Errorf("MetaTags = %v, want %v", ex.MetaTags, wantMeta)
	}

	wantOG := map[string]string{"og:title": "Widgets OG", "og:image": "https://cdn.example.com/w.png"}
	if !reflect.DeepEqual(ex.OGTags, wantOG) {
		t.Errorf("OGTags = %v, want %v", ex.OGTags, wantOG)
	}

	wantHrefLangs := []model.HrefLang{
		{HrefLang: "de", Href: "https://example.com/de/widgets"},
		{HrefLang: "x-default", Href: "https://example.com/widgets"},
	}
	if !reflect.DeepEqual(ex.HrefLangs, wantHrefLangs) {
		t.Errorf("HrefLangs = %v, want %v", ex.HrefLangs, wantHrefLangs)
	}

	if want := []string{"noindex", "follow"}; !reflect.DeepEqual(ex.RobotsDirectives, want) {
		t.Errorf("RobotsDirectives = %v, want %v", ex.RobotsDirectives, want)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	ex := mustExtract(t, "", "https://example.com", nil)

	if ex.Title != nil || ex.MetaDescription != nil || ex.Canonical != nil || ex.Lang != nil {
		t.Errorf("absent fields should be nil, got %+v", ex)
	}
	if ex.CanonicalStatus != model.CanonicalMissing {
		t.Errorf("CanonicalStatus = %q, want %q", ex.CanonicalStatus, model.CanonicalMissing)
	}
	if ex.Headings == nil || ex.JSONLD == nil || ex.HrefLangs == nil || ex.RobotsDirectives == nil {
		t.Error("list fields should be empty, not nil")
	}
	if len(ex.HeadingCounts) != 6 {
		t.Errorf("HeadingCounts has %d levels, want 6", len(ex.HeadingCounts))
	}
	if ex.WordCount != 0 || ex.ImageCount != 0 {
		t.Errorf("WordCount = %d, ImageCount = %d, want 0", ex.WordCount, ex.ImageCount)
	}
}

func TestExtract_Headings(t *testing.T) {
	markup := `<body>
		<h2>Intro</h2>
		<h1> Main <span>Title</span> </h1>
		<h3></h3>
		<h2>Details</h2>
		<h6>Footnote</h6>
	</body>`

	ex := mustExtract(t, markup, "https://example.com", nil)

	want := []model.Heading{
		{Level: 1, Tag: "h1", Text: "Main Title"},
		{Level: 2, Tag: "h2", Text: "Intro"},
		{Level: 2, Tag: "h2", Text: "Details"},
		{Level: 6, Tag: "h6", Text: "Footnote"},
	}
	if !reflect.DeepEqual(ex.Headings, want) {
		t.Errorf("Headings = %+v, want %+v", ex.Headings, want)
	}

	wantCounts := map[string]int{"h1": 1, "h2": 2, "h3": 0, "h4": 0, "h5": 0, "h6": 1}
	if !reflect.DeepEqual(ex.HeadingCounts, wantCounts) {
		t.Errorf("HeadingCounts = %v, want %v", ex.HeadingCounts, wantCounts)
	}
}

func TestExtract_HeadingsGroupedByLevel(t *testing.T) {
	ex := mustExtract(t, `<body><h2>A</h2><h1>B</h1><h2>C</h2></body>`, "https://example.com", nil)

	want := []model.Heading{
		{Level: 1, Tag: "h1", Text: "B"},
		{Level: 2, Tag: "h2", Text: "A"},
		{Level: 2, Tag: "h2", Text: "C"},
	}
	if !reflect.DeepEqual(ex.Headings, want) {
		t.Errorf("Headings = %+v, want %+v", ex.Headings, want)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "only whitespace", text: " \t\n\r ", want: 0},
		{name: "collapsed runs", text: "  one   two\n\tthree  ", want: 3},
		{name: "no-break space separates", text: "one\u00a0two", want: 2},
		{name: "em space separates", text: "one\u2003two", want: 2},
		{name: "byte order mark separates", text: "one\ufefftwo", want: 2},
		{name: "next line does not separate", text: "one\u0085two", want: 1},
		{name: "zero width space does not separate", text: "one\u200btwo", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countWords(tt.text); got != tt.want {
				t.Errorf("countWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_ImageAltAudit(t *testing.T) {
	markup := `<body>
		<img src="a.png" alt="A">
		<img src="b.png" alt="">
		<img src="c.png">
		<img src="d.png" alt="   ">
		<img src="e.png" alt="E">
	</body>`

	ex := mustExtract(t, markup, "https://example.com", nil)

	if ex.ImageCount != 5 {
		t.Errorf("ImageCount = %d, want 5", ex.ImageCount)
	}
	if ex.ImagesWithAlt != 2 || ex.ImagesMissingAlt != 3 {
		t.Errorf("with alt = %d, missing = %d, want 2 and 3", ex.ImagesWithAlt, ex.ImagesMissingAlt)
	}
	if ex.ImagesWithAlt+ex.ImagesMissingAlt != ex.ImageCount {
		t.Error("alt audit should cover every image")
	}
}

func TestExtract_JSONLD(t *testing.T) {
	markup := `<head>
		<script type="application/ld+json">{"@type":"Article","headline":"Hello"}</script>
		<script type="application/ld+json">{ not json</script>
		<script type="application/ld+json">[{"@type":"Person","name":"Ada"}, 42, {"type":"Thing"}]</script>
	</head>`

	ex := mustExtract(t, markup, "https://example.com", nil)

	if ex.JSONLDSkipped != 1 {
		t.Errorf("JSONLDSkipped = %d, want 1", ex.JSONLDSkipped)
	}
	if len(ex.JSONLD) != 3 {
		t.Fatalf("JSONLD has %d entities, want 3: %+v", len(ex.JSONLD), ex.JSONLD)
	}
	got := []any{
		strOrNil(ex.JSONLD[0].Type), strOrNil(ex.JSONLD[0].Name),
		strOrNil(ex.JSONLD[1].Type), strOrNil(ex.JSONLD[1].Name),
		strOrNil(ex.JSONLD[2].Type), strOrNil(ex.JSONLD[2].Name),
	}
	want := []any{"Article", "Hello", "Person", "Ada", "Thing", nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("JSONLD = %v, want %v", got, want)
	}
}

func TestExtract_MalformedJSONLDOnly(t *testing.T) {
	ex := mustExtract(t, `<script type="application/ld+json">{oops</script>`, "https://example.com", nil)

	if len(ex.JSONLD) != 0 {
		t.Errorf("JSONLD = %+v, want empty", ex.JSONLD)
	}
	if ex.JSONLDSkipped != 1 {
		t.Errorf("JSONLDSkipped = %d, want 1", ex.JSONLDSkipped)
	}
}

func TestExtract_RobotsHeaderDirectives(t *testing.T) {
	headers := http.Header{}
	headers.Add("X-Robots-Tag", "NoArchive, nosnippet")
	headers.Add("X-Robots-Tag", "noindex")

	ex := mustExtract(t, `<meta name="robots" content="noindex">`, "https://example.com", headers)

	want := []string{"noindex", "noarchive", "nosnippet", "noindex"}
	if !reflect.DeepEqual(ex.RobotsDirectives, want) {
		t.Errorf("RobotsDirectives = %v, want %v", ex.RobotsDirectives, want)
	}
}

func TestCanonicalStatus(t *testing.T) {
	ptr := func(s string) *string { return &s }

	tests := []struct {
		name      string
		canonical *string
		pageURL   string
		want      string
	}{
		{name: "missing", canonical: nil, pageURL: "https://example.com/", want: model.CanonicalMissing},
		{name: "identical", canonical: ptr("https://example.com/a"), pageURL: "https://example.com/a", want: model.CanonicalSelf},
		{name: "trailing slash on canonical", canonical: ptr("https://example.com/a/"), pageURL: "https://example.com/a", want: model.CanonicalSelf},
		{name: "trailing slash on page", canonical: ptr("https://example.com/a"), pageURL: "https://example.com/a/", want: model.CanonicalSelf},
		{name: "scheme differs", canonical: ptr("http://example.com/a"), pageURL: "https://example.com/a", want: model.CanonicalDifferent},
		{name: "www differs", canonical: ptr("https://www.example.com/a"), pageURL: "https://example.com/a", want: model.CanonicalDifferent},
		{name: "other page", canonical: ptr("https://example.com/b"), pageURL: "https://example.com/a", want: model.CanonicalDifferent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canonicalStatus(tt.canonical, tt.pageURL); got != tt.want {
				t.Errorf("canonicalStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
