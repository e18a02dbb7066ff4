package cutsheet

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"batchenc/internal/config"
	"batchenc/internal/cutlist"
	"batchenc/internal/encode"
	"batchenc/internal/media/ffprobe"
	"batchenc/internal/services"
	"batchenc/internal/source"
	"batchenc/internal/textutil"
)

// Options overrides the encoding settings of one cut. Unset fields keep
// the run-wide value.
type Options struct {
	Modes         []string `toml:"modes"`
	CRFs          []int    `toml:"crfs"`
	Filters       []string `toml:"filters"`
	CustomFilters string   `toml:"custom_filters"`
	Preview       *bool    `toml:"preview"`
	LimitSize     *bool    `toml:"limit_size"`
}

// Cut is one entry of a source's cut list.
type Cut struct {
	Start       string   `toml:"start"`
	End         string   `toml:"end"`
	Name        string   `toml:"name"`
	AudioFilter string   `toml:"audio_filter,omitempty"`
	Options     *Options `toml:"options,omitempty"`
}

// Source lists the cuts of one file.
type Source struct {
	Path        string `toml:"path"`
	VideoStream string `toml:"video_stream,omitempty"`
	AudioStream string `toml:"audio_stream,omitempty"`
	Cuts        []Cut  `toml:"cut"`
}

// Sheet is a parsed cut sheet. It answers the planner's questions without
// a terminal.
type Sheet struct {
	Sources []Source `toml:"source"`

	byPath map[string]int
}

// Load reads and validates the sheet at path. Relative source paths are
// resolved against the sheet's directory.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cutsheet", "read", path, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cutsheet", "read", path, err)
	}
	sheet, err := Parse(data, dir)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// Parse decodes a sheet. Unknown keys are rejected so typos do not
// silently drop a cut option. Source paths are stored absolute: relative
// ones are joined to baseDir, or to the working directory when baseDir is
// empty.
func Parse(data []byte, baseDir string) (*Sheet, error) {
	var sheet Sheet
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sheet); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cutsheet", "parse", "", err)
	}
	sheet.byPath = make(map[string]int, len(sheet.Sources))
	for i := range sheet.Sources {
		s := &sheet.Sources[i]
		s.Path = strings.TrimSpace(s.Path)
		if s.Path == "" {
			return nil, invalid(fmt.Sprintf("source %d has no path", i+1))
		}
		if !filepath.IsAbs(s.Path) && baseDir != "" {
			s.Path = filepath.Join(baseDir, s.Path)
		}
		abs, err := filepath.Abs(s.Path)
		if err != nil {
			return nil, invalid(fmt.Sprintf("source %s: %v", s.Path, err))
		}
		s.Path = abs
		if _, dup := sheet.byPath[s.Path]; dup {
			return nil, invalid(fmt.Sprintf("source %s is listed twice", s.Path))
		}
		if len(s.Cuts) == 0 {
			return nil, invalid(fmt.Sprintf("source %s has no cuts", s.Path))
		}
		for j, c := range s.Cuts {
			if c.Options == nil {
				continue
			}
			if len(c.Options.Modes) > 0 {
				if err := config.ValidateModes(c.Options.Modes); err != nil {
					return nil, invalid(fmt.Sprintf("%s cut %d: %v", s.Path, j+1, err))
				}
			}
			if err := config.ValidateCRFs(c.Options.CRFs); err != nil {
				return nil, invalid(fmt.Sprintf("%s cut %d: %v", s.Path, j+1, err))
			}
		}
		sheet.byPath[s.Path] = i
	}
	return &sheet, nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "cutsheet", "validate", message, nil)
}

// Paths returns the source files in sheet order.
func (s *Sheet) Paths() []string {
	paths := make([]string, len(s.Sources))
	for i, src := range s.Sources {
		paths[i] = src.Path
	}
	return paths
}

// source looks path up after making it absolute, so sources named
// relative to the working directory still match.
func (s *Sheet) source(path string) (Source, bool) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	i, ok := s.byPath[path]
	if !ok {
		return Source{}, false
	}
	return s.Sources[i], true
}

// Collect returns the sheet's cuts for src. A sheet cannot correct itself,
// so a rejected attempt is returned as an error and the file is skipped.
func (s *Sheet) Collect(_ context.Context, src *source.Descriptor, previous *cutlist.Result) (cutlist.Batch, error) {
	if previous != nil {
		return cutlist.Batch{}, previous.Err()
	}
	entry, ok := s.source(src.Path)
	if !ok {
		return cutlist.Batch{}, services.Wrap(services.ErrValidation, "cutsheet", "collect", src.Path+" is not listed in the cut sheet", nil)
	}
	var batch cutlist.Batch
	for _, c := range entry.Cuts {
		batch.Starts = append(batch.Starts, strings.TrimSpace(c.Start))
		batch.Ends = append(batch.Ends, strings.TrimSpace(c.End))
		batch.Names = append(batch.Names, strings.TrimSpace(c.Name))
		batch.AudioFilters = append(batch.AudioFilters, c.AudioFilter)
	}
	return batch, nil
}

// ChooseStream answers with the stream index the sheet names for the
// file, else the first stream. A file missing from the sheet is an error.
func (s *Sheet) ChooseStream(_ context.Context, path, kind string, streams []ffprobe.Stream) (int, error) {
	entry, ok := s.source(path)
	if !ok {
		return 0, services.Wrap(services.ErrValidation, "cutsheet", kind+" stream", path+" is not listed in the cut sheet", nil)
	}
	value := entry.AudioStream
	if kind == source.KindVideo {
		value = entry.VideoStream
	}
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	index, err := source.ParseStreamIndex(value, len(streams))
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "cutsheet", kind+" stream", path, err)
	}
	return index, nil
}

// Customize applies the options of the sheet entry for cut.
func (s *Sheet) Customize(_ context.Context, cut cutlist.Cut, settings encode.Settings) (encode.Settings, error) {
	if cut.Source == nil {
		return settings, nil
	}
	entry, ok := s.source(cut.Source.Path)
	if !ok {
		return settings, nil
	}
	var opts *Options
	for _, c := range entry.Cuts {
		if strings.TrimSpace(c.Name) == cut.OutputName {
			opts = c.Options
			break
		}
	}
	if opts == nil {
		return settings, nil
	}
	return opts.Apply(settings)
}

// Apply returns settings with the set options replaced.
func (o Options) Apply(settings encode.Settings) (encode.Settings, error) {
	out := settings.Clone()
	if len(o.Modes) > 0 {
		out.Modes = out.Modes[:0]
		for _, name := range o.Modes {
			mode, err := encode.ParseMode(name)
			if err != nil {
				return settings, err
			}
			out.Modes = append(out.Modes, mode)
		}
	}
	if len(o.CRFs) > 0 {
		out.CRFs = append([]int(nil), o.CRFs...)
	}
	if len(o.Filters) > 0 || o.CustomFilters != "" {
		filters, err := resolveFilters(o.Filters, settings.Filters)
		if err != nil {
			return settings, err
		}
		if o.CustomFilters != "" {
			filters = append(filters, encode.CustomFilters(o.CustomFilters)...)
		}
		out.Filters = filters
		out.IncludeUnfiltered = false
	}
	if o.Preview != nil {
		out.CreatePreview = *o.Preview
	}
	if o.LimitSize != nil {
		out.LimitSize = *o.LimitSize
	}
	if err := out.Validate(); err != nil {
		return settings, err
	}
	return out, nil
}

// resolveFilters maps names to configured filters first, then to the
// built-in catalog.
func resolveFilters(names []string, configured []encode.VideoFilter) ([]encode.VideoFilter, error) {
	var filters []encode.VideoFilter
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || name == config.NoFiltersLabel {
			filters = append(filters, encode.VideoFilter{})
			continue
		}
		found := false
		for _, f := range configured {
			if f.Name == name {
				filters = append(filters, f)
				found = true
				break
			}
		}
		if found {
			continue
		}
		f, ok := encode.CatalogFilter(name)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "cutsheet", "filters", fmt.Sprintf("unknown video filter %q", name), nil)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Template renders an empty sheet for paths with one blank cut each.
func Template(paths []string) ([]byte, error) {
	sheet := Sheet{Sources: make([]Source, len(paths))}
	for i, path := range paths {
		sheet.Sources[i] = Source{Path: path, Cuts: []Cut{{Name: textutil.SlugName(filepath.Base(path))}}}
	}
	return toml.Marshal(sheet)
}
