package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"batchenc/internal/services"
)

// MaxCRF is the upper bound libvpx-vp9 accepts for -crf.
const MaxCRF = 63

var (
	supportedModes  = map[string]struct{}{"CBR": {}, "VBR": {}, "CQ": {}}
	filterNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+(-[a-zA-Z0-9]+)*$`)
	// Output names read base[-crf][-tier][-filter]; a filter whose first
	// segment looks like a CRF (digits) or a tier (digits + k) would be
	// ambiguous.
	numericSegment = regexp.MustCompile(`^[0-9]+[kK]?$`)
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := ValidateVideoFilters(c.VideoFilters); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validateEncoding() error {
	if len(c.Encoding.AllowedExtensions) == 0 {
		return invalid("encoding.allowed_extensions must include at least one extension")
	}
	if err := ValidateModes(c.Encoding.Modes); err != nil {
		return err
	}
	if err := ValidateCRFs(c.Encoding.CRFs); err != nil {
		return err
	}
	if c.Encoding.Threads <= 0 {
		return invalid("encoding.threads must be positive")
	}
	return nil
}

// ValidateModes checks a mode list: at least one entry, each one of CBR,
// VBR or CQ, no repeats.
func ValidateModes(modes []string) error {
	if len(modes) == 0 {
		return invalid("encoding.modes must include at least one mode")
	}
	seen := make(map[string]struct{}, len(modes))
	for _, mode := range modes {
		upper := strings.ToUpper(strings.TrimSpace(mode))
		if _, ok := supportedModes[upper]; !ok {
			return invalid(fmt.Sprintf("encoding.modes: unsupported mode %q (want CBR, VBR or CQ)", mode))
		}
		if _, dup := seen[upper]; dup {
			return invalid(fmt.Sprintf("encoding.modes: duplicate mode %q", upper))
		}
		seen[upper] = struct{}{}
	}
	return nil
}

// ValidateCRFs checks a CRF list for range and repeats. An empty list is
// allowed; it only matters when a CRF mode is selected.
func ValidateCRFs(crfs []int) error {
	seen := make(map[int]struct{}, len(crfs))
	for _, crf := range crfs {
		if crf < 0 || crf > MaxCRF {
			return invalid(fmt.Sprintf("encoding.crfs: %d out of range 0-%d", crf, MaxCRF))
		}
		if _, dup := seen[crf]; dup {
			return invalid(fmt.Sprintf("encoding.crfs: duplicate value %d", crf))
		}
		seen[crf] = struct{}{}
	}
	return nil
}

// ValidateVideoFilters enforces the rules that keep second-pass output
// names unique: names use letters, digits and single inner hyphens, their
// first segment is not purely numeric, names do not repeat, and at most one
// entry is unnamed.
func ValidateVideoFilters(filters []VideoFilter) error {
	names := make(map[string]struct{}, len(filters))
	unnamed := 0
	for i, f := range filters {
		if f.Name == "" {
			unnamed++
			if unnamed > 1 {
				return invalid("video_filters: only one unnamed (unfiltered) entry is allowed")
			}
			if f.Graph != "" {
				return invalid(fmt.Sprintf("video_filters[%d]: graph %q needs a name", i, f.Graph))
			}
			continue
		}
		if !ValidFilterName(f.Name) {
			return invalid(fmt.Sprintf("video_filters[%d]: name %q must use letters, digits and inner hyphens and must not start with a number or bitrate", i, f.Name))
		}
		if _, dup := names[f.Name]; dup {
			return invalid(fmt.Sprintf("video_filters: duplicate name %q", f.Name))
		}
		names[f.Name] = struct{}{}
		if f.Graph == "" {
			return invalid(fmt.Sprintf("video_filters[%d]: %q has an empty graph", i, f.Name))
		}
		if f.TargetHeight < 0 {
			return invalid(fmt.Sprintf("video_filters[%d]: target_height must not be negative", i))
		}
	}
	return nil
}

// ValidFilterName reports whether name can tag an output file without
// colliding with a CRF or bitrate suffix.
func ValidFilterName(name string) bool {
	if !filterNameRegex.MatchString(name) {
		return false
	}
	first, _, _ := strings.Cut(name, "-")
	return !numericSegment.MatchString(first)
}

func (c *Config) validatePaths() error {
	if !strings.EqualFold(filepath.Ext(c.Paths.CommandFile), ".txt") {
		return invalid(fmt.Sprintf("paths.command_file %q must use the .txt extension", c.Paths.CommandFile))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid(fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return invalid(fmt.Sprintf("notifications.request_timeout %d must be positive", c.Notifications.RequestTimeout))
	}
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return invalid(fmt.Sprintf("notifications.ntfy_topic %q must be an http(s) URL", topic))
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
