package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"batchenc/internal/config"
	"batchenc/internal/cutlist"
	"batchenc/internal/encode"
	"batchenc/internal/textutil"
)

// Customize asks for the video filters and, when enabled, the encoding
// options of one cut. The returned settings always pass Validate.
func (p *Prompter) Customize(ctx context.Context, cut cutlist.Cut, settings encode.Settings) (encode.Settings, error) {
	if !p.VideoFilters && !p.Custom {
		return settings, nil
	}
	p.header.Fprintf(p.Out, "\nOutput Name: %s\n", cut.OutputName)
	for {
		candidate := settings.Clone()
		if p.VideoFilters {
			filters, err := p.videoFilters(ctx, candidate)
			if err != nil {
				return settings, err
			}
			candidate.Filters = filters
			candidate.IncludeUnfiltered = false
		}
		if p.Custom {
			var err error
			if candidate, err = p.customOptions(ctx, candidate); err != nil {
				return settings, err
			}
		}
		if err := candidate.Validate(); err != nil {
			p.notice.Fprintf(p.Out, "  %v\n", err)
			continue
		}
		return candidate, nil
	}
}

// videoFilters offers the catalog plus any configured filter missing from
// it. The current effective filters are preselected.
func (p *Prompter) videoFilters(ctx context.Context, settings encode.Settings) ([]encode.VideoFilter, error) {
	catalog := encode.Catalog()
	custom := catalog[len(catalog)-1]
	entries := catalog[:len(catalog)-1]
	for _, f := range settings.Filters {
		if f.Unfiltered() {
			continue
		}
		if _, ok := encode.CatalogFilter(f.Name); !ok {
			entries = append(entries, encode.CatalogEntry{Label: f.Name, Filter: f})
		}
	}
	entries = append(entries, custom)

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	var defaults []int
	for _, f := range settings.EffectiveFilters() {
		for i, e := range entries {
			if e.Label != encode.CustomLabel && e.Filter.Name == f.Name {
				defaults = append(defaults, i)
				break
			}
		}
	}

	picked, err := p.choose(ctx, "Video Filters", labels, defaults, true)
	if err != nil {
		return nil, err
	}
	var filters []encode.VideoFilter
	wantCustom := false
	for _, i := range picked {
		if entries[i].Label == encode.CustomLabel {
			wantCustom = true
			continue
		}
		filters = append(filters, entries[i].Filter)
	}
	if wantCustom {
		answer, err := p.askValid(ctx, `Custom Video Filters (separate with ",,")`, "", func(s string) error {
			if len(textutil.SplitInputs([]string{s})) == 0 {
				return fmt.Errorf("enter at least one filter graph")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		filters = append(filters, encode.CustomFilters(answer)...)
	}
	return filters, nil
}

func (p *Prompter) customOptions(ctx context.Context, settings encode.Settings) (encode.Settings, error) {
	var err error
	if settings.CreatePreview, err = p.confirm(ctx, "Create Preview?", settings.CreatePreview); err != nil {
		return settings, err
	}
	if settings.LimitSize, err = p.confirm(ctx, "Limit Size?", settings.LimitSize); err != nil {
		return settings, err
	}

	current := make([]string, len(settings.Modes))
	for i, m := range settings.Modes {
		current[i] = string(m)
	}
	answer, err := p.askValid(ctx, "Encoding Modes", strings.Join(current, ","), func(s string) error {
		return config.ValidateModes(textutil.SplitList(s, ","))
	})
	if err != nil {
		return settings, err
	}
	settings.Modes = settings.Modes[:0]
	needsCRF := false
	for _, name := range textutil.SplitList(answer, ",") {
		mode, err := encode.ParseMode(name)
		if err != nil {
			return settings, err
		}
		settings.Modes = append(settings.Modes, mode)
		needsCRF = needsCRF || mode.UsesCRF()
	}
	if !needsCRF {
		return settings, nil
	}

	answer, err = p.askValid(ctx, "CRFs", joinInts(settings.CRFs), func(s string) error {
		crfs, err := parseInts(s)
		if err != nil {
			return err
		}
		if len(crfs) == 0 {
			return fmt.Errorf("VBR and CQ need at least one CRF")
		}
		return config.ValidateCRFs(crfs)
	})
	if err != nil {
		return settings, err
	}
	settings.CRFs, _ = parseInts(answer)
	return settings, nil
}

func parseInts(s string) ([]int, error) {
	var values []int
	for _, part := range textutil.SplitList(s, ",") {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", part)
		}
		values = append(values, n)
	}
	return values, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
