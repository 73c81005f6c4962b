package pageinsight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Bahjat/page-snapshot/internal/model"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// collectJSONLD decodes every JSON-LD block in document order. Blocks that
// fail to parse are skipped and counted.
func collectJSONLD(scripts *goquery.Selection) (entities []model.JSONLDEntity, skipped int) {
	entities = []model.JSONLDEntity{}
	for _, s := range scripts.EachIter() {
		res := decodeJSONLD(s.Text())
		if !res.ok() {
			skipped++
			continue
		}
		entities = append(entities, res.value...)
	}
	return entities, skipped
}

// decodeJSONLD parses one block. A top-level array is flattened one level;
// each object contributes its @type (or type) and name (or headline).
func decodeJSONLD(raw string) outcome[[]model.JSONLDEntity] {
	var data any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		return failed[[]model.JSONLDEntity](fmt.Errorf("decode json-ld: %w", err))
	}

	items, isArray := data.([]any)
	if !isArray {
		items = []any{data}
	}

	out := make([]model.JSONLDEntity, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.JSONLDEntity{
			Type: firstString(obj, "@type", "type"),
			Name: firstString(obj, "name", "headline"),
		})
	}
	return succeeded(out)
}

// firstString returns the first non-empty string found under keys. An array
// value such as "@type": ["Article", "NewsArticle"] yields its first string.
func firstString(obj map[string]any, keys ...string) *string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return &v
			}
		case []any:
			for _, elem := range v {
				if s, ok := elem.(string); ok && s != "" {
					return &s
				}
			}
		}
	}
	return nil
}
