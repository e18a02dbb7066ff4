package config

import (
	"fmt"
	"strings"

	"batchenc/internal/language"
)

// NoFiltersLabel is the menu label of the unfiltered entry. A filter whose
// graph equals it is treated as unfiltered.
const NoFiltersLabel = "No Filters"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoding()
	c.normalizeVideoFilters()
	c.normalizeBinaries()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.CommandFile = strings.TrimSpace(c.Paths.CommandFile)
	if c.Paths.CommandFile == "" {
		c.Paths.CommandFile = defaultCommandFile
	}
	if c.Paths.CommandFile, err = expandPath(c.Paths.CommandFile); err != nil {
		return fmt.Errorf("paths.command_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoding() {
	exts := make([]string, 0, len(c.Encoding.AllowedExtensions))
	for _, ext := range c.Encoding.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Encoding.AllowedExtensions = exts

	modes := make([]string, 0, len(c.Encoding.Modes))
	for _, mode := range c.Encoding.Modes {
		if mode = strings.ToUpper(strings.TrimSpace(mode)); mode != "" {
			modes = append(modes, mode)
		}
	}
	c.Encoding.Modes = modes

	c.Encoding.DefaultVideoStream = strings.TrimSpace(c.Encoding.DefaultVideoStream)
	c.Encoding.DefaultAudioStream = strings.TrimSpace(c.Encoding.DefaultAudioStream)
	c.Encoding.PreferredAudioLanguages = language.NormalizeList(c.Encoding.PreferredAudioLanguages)
}

func (c *Config) normalizeVideoFilters() {
	for i := range c.VideoFilters {
		f := &c.VideoFilters[i]
		f.Name = strings.TrimSpace(f.Name)
		f.Graph = strings.TrimSpace(f.Graph)
		if f.Graph == NoFiltersLabel {
			f.Graph = ""
		}
	}
}

func (c *Config) normalizeBinaries() {
	c.Binaries.FFmpeg = strings.TrimSpace(c.Binaries.FFmpeg)
	if c.Binaries.FFmpeg == "" {
		c.Binaries.FFmpeg = defaultFFmpeg
	}
	c.Binaries.FFprobe = strings.TrimSpace(c.Binaries.FFprobe)
	if c.Binaries.FFprobe == "" {
		c.Binaries.FFprobe = defaultFFprobe
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
