package encode

import (
	"fmt"
	"regexp"
	"strconv"

	"batchenc/internal/config"
	"batchenc/internal/services"
)

var scaleHeight = regexp.MustCompile(`scale=-1:(\d+)`)

// VideoFilter is one second-pass variant. An empty Name marks the
// unfiltered encode; an empty Graph omits -vf.
type VideoFilter struct {
	Name         string
	Graph        string
	TargetHeight int
}

// Unfiltered reports whether the entry adds no -vf argument.
func (f VideoFilter) Unfiltered() bool {
	return f.Graph == "" || f.Graph == config.NoFiltersLabel
}

// OutputHeight returns the picture height the filter produces: the
// declared target height, else the height of a scale=-1:H step, else
// sourceHeight.
func (f VideoFilter) OutputHeight(sourceHeight int) int {
	if f.TargetHeight > 0 {
		return f.TargetHeight
	}
	if !f.Unfiltered() {
		if m := scaleHeight.FindStringSubmatch(f.Graph); m != nil {
			if h, err := strconv.Atoi(m[1]); err == nil && h > 0 {
				return h
			}
		}
	}
	return sourceHeight
}

// Settings is the encoding profile applied to a cut.
type Settings struct {
	Modes             []Mode
	CRFs              []int
	Filters           []VideoFilter
	Threads           int
	LimitSize         bool
	IncludeUnfiltered bool
	CreatePreview     bool
}

// FromConfig builds Settings from the loaded configuration.
func FromConfig(cfg *config.Config) (Settings, error) {
	s := Settings{
		CRFs:              append([]int(nil), cfg.Encoding.CRFs...),
		Threads:           cfg.Encoding.Threads,
		LimitSize:         cfg.Encoding.LimitSize,
		IncludeUnfiltered: cfg.Encoding.IncludeUnfiltered,
		CreatePreview:     cfg.Encoding.CreatePreview,
	}
	for _, name := range cfg.Encoding.Modes {
		mode, err := ParseMode(name)
		if err != nil {
			return Settings{}, err
		}
		s.Modes = append(s.Modes, mode)
	}
	for _, f := range cfg.VideoFilters {
		s.Filters = append(s.Filters, VideoFilter{Name: f.Name, Graph: f.Graph, TargetHeight: f.TargetHeight})
	}
	return s, s.Validate()
}

// Clone returns a deep copy for per-cut overrides.
func (s Settings) Clone() Settings {
	clone := s
	clone.Modes = append([]Mode(nil), s.Modes...)
	clone.CRFs = append([]int(nil), s.CRFs...)
	clone.Filters = append([]VideoFilter(nil), s.Filters...)
	return clone
}

// Validate enforces the rules that keep every output filename of a cut
// unique: modes and CRFs do not repeat, filter names are distinct and
// cannot be mistaken for a CRF or tier suffix, and at most one filter is
// unnamed.
func (s Settings) Validate() error {
	modes := make([]string, len(s.Modes))
	needsCRF := false
	for i, m := range s.Modes {
		modes[i] = string(m)
		needsCRF = needsCRF || m.UsesCRF()
	}
	if err := config.ValidateModes(modes); err != nil {
		return err
	}
	if err := config.ValidateCRFs(s.CRFs); err != nil {
		return err
	}
	if needsCRF && len(s.CRFs) == 0 {
		return services.Wrap(services.ErrConfiguration, "encode", "settings", "VBR and CQ need at least one CRF", nil)
	}
	if s.Threads <= 0 {
		return services.Wrap(services.ErrConfiguration, "encode", "settings", fmt.Sprintf("threads must be positive, got %d", s.Threads), nil)
	}
	filters := make([]config.VideoFilter, len(s.Filters))
	for i, f := range s.Filters {
		graph := f.Graph
		if f.Unfiltered() {
			graph = ""
		}
		filters[i] = config.VideoFilter{Name: f.Name, Graph: graph, TargetHeight: f.TargetHeight}
	}
	return config.ValidateVideoFilters(filters)
}

// EffectiveFilters returns the second-pass variants in emission order. No
// filters yields a single unfiltered entry; IncludeUnfiltered puts the
// unfiltered entry first when it is not already listed.
func (s Settings) EffectiveFilters() []VideoFilter {
	if len(s.Filters) == 0 {
		return []VideoFilter{{}}
	}
	filters := append([]VideoFilter(nil), s.Filters...)
	if !s.IncludeUnfiltered {
		return filters
	}
	for _, f := range filters {
		if f.Name == "" {
			return filters
		}
	}
	return append([]VideoFilter{{}}, filters...)
}

// CommandCount returns how many commands Builder emits for these settings.
func (s Settings) CommandCount() int {
	filters := len(s.EffectiveFilters())
	count := 0
	if s.CreatePreview {
		count++
	}
	for _, m := range s.Modes {
		if m.UsesCRF() {
			count += len(s.CRFs) * (1 + filters)
		} else {
			count += 1 + filters
		}
	}
	return count
}
