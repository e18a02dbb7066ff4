package encode

import (
	"fmt"
	"strings"

	"batchenc/internal/config"
	"batchenc/internal/textutil"
)

// CustomLabel is the catalog entry that asks for user-supplied graphs.
const CustomLabel = "Custom"

// CatalogEntry is one choice offered when picking filters for a cut.
type CatalogEntry struct {
	Label  string
	Filter VideoFilter
}

// Catalog returns the built-in filter choices in prompt order.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{Label: config.NoFiltersLabel, Filter: VideoFilter{}},
		{Label: "720p", Filter: VideoFilter{Name: "720p", Graph: "scale=-1:720", TargetHeight: 720}},
		{Label: "filtered-720p", Filter: VideoFilter{Name: "filtered-720p", Graph: "scale=-1:720,hqdn3d=0:0:3:3,gradfun,unsharp", TargetHeight: 720}},
		{Label: "filtered", Filter: VideoFilter{Name: "filtered", Graph: "hqdn3d=0:0:3:3,gradfun,unsharp"}},
		{Label: "lightdenoise", Filter: VideoFilter{Name: "lightdenoise", Graph: "hqdn3d=0:0:3:3"}},
		{Label: "heavydenoise", Filter: VideoFilter{Name: "heavydenoise", Graph: "hqdn3d=1.5:1.5:6:6"}},
		{Label: "unsharp", Filter: VideoFilter{Name: "unsharp", Graph: "unsharp"}},
		{Label: CustomLabel},
	}
}

// CatalogFilter looks up a built-in filter by label.
func CatalogFilter(label string) (VideoFilter, bool) {
	for _, entry := range Catalog() {
		if entry.Label == label && entry.Label != CustomLabel {
			return entry.Filter, true
		}
	}
	return VideoFilter{}, false
}

// CustomFilters turns ",,"-separated graphs into filters named custom1,
// custom2 and so on.
func CustomFilters(input string) []VideoFilter {
	graphs := textutil.SplitInputs([]string{input})
	filters := make([]VideoFilter, len(graphs))
	for i, graph := range graphs {
		filters[i] = VideoFilter{Name: fmt.Sprintf("custom%d", i+1), Graph: strings.TrimSpace(graph)}
	}
	return filters
}
