package pageinsight

import (
	"unicode/utf8"

	"github.com/Bahjat/page-snapshot/internal/model"
)

// Length thresholds, in characters, past which search engines truncate.
const (
	maxTitleLength           = 60
	maxMetaDescriptionLength = 160
)

// BuildSummary derives the SEO diagnostic view from an extraction and its
// link stats. It performs no I/O.
func BuildSummary(ex Extraction, links model.LinkStats) model.SEOSummary {
	titleLen := length(ex.Title)
	descLen := length(ex.MetaDescription)

	return model.SEOSummary{
		TitleLength:            titleLen,
		TitleTooLong:           titleLen > maxTitleLength,
		MetaDescriptionLength:  descLen,
		MetaDescriptionTooLong: descLen > maxMetaDescriptionLength,
		H1Count:                ex.HeadingCounts["h1"],
		ImagesWithAlt:          ex.ImagesWithAlt,
		ImagesMissingAlt:       ex.ImagesMissingAlt,
		RobotsDirectives:       ex.RobotsDirectives,
		CanonicalStatus:        ex.CanonicalStatus,
		HasOGTags:              len(ex.OGTags) > 0,
		HasJSONLD:              len(ex.JSONLD) > 0,
		WordCount:              ex.WordCount,
		LinkStats:              links,
	}
}

func length(s *string) int {
	if s == nil {
		return 0
	}
	return utf8.RuneCountInString(*s)
}
