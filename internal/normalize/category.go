package normalize

import (
	"strings"

	"github.com/openpredict/marketd/internal/platform/gamma"
)

// DefaultCategory is used when a market carries no tags at all.
const DefaultCategory = "Other"

// Categories is the closed category vocabulary. A tag matching one of these
// (case-insensitively) wins over any other tag; the order here is also the
// order served by the categories endpoint.
var Categories = []string{
	"Politics",
	"Sports",
	"Crypto",
	"Finance",
	"Economy",
	"Entertainment",
	"Science",
	"Technology",
	"Health",
	"World",
}

// ResolveCategory maps a raw tag list onto the category vocabulary: the
// first tag found in the vocabulary wins; failing that, the first tag is used
// verbatim; with no tags, the category is "Other".
func ResolveCategory(tags []gamma.Tag) string {
	first := ""
	for _, t := range tags {
		v := t.Value()
		if v == "" {
			continue
		}
		if first == "" {
			first = v
		}
		for _, c := range Categories {
			if strings.EqualFold(v, c) {
				return c
			}
		}
	}
	if first != "" {
		return first
	}
	return DefaultCategory
}
