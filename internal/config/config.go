package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"batchenc/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Encoding holds the per-run encoding profile. Per-cut overrides are applied
// to a copy (see encode.Settings.Clone).
type Encoding struct {
	AllowedExtensions    []string `toml:"allowed_extensions"`
	Modes                []string `toml:"modes"`
	CRFs                 []int    `toml:"crfs"`
	Threads              int      `toml:"threads"`
	LimitSize            bool     `toml:"limit_size"`
	AlternateSourceFiles bool     `toml:"alternate_source_files"`
	CreatePreview        bool     `toml:"create_preview"`
	IncludeUnfiltered    bool     `toml:"include_unfiltered"`
	DefaultVideoStream   string   `toml:"default_video_stream"`
	DefaultAudioStream   string   `toml:"default_audio_stream"`
	// PreferredAudioLanguages picks the default entry of the audio stream menu.
	PreferredAudioLanguages []string `toml:"preferred_audio_languages"`
}

// VideoFilter is one named filter graph. An entry with an empty name is the
// unfiltered encode. TargetHeight overrides the resolution used for the
// file size limit when the graph scales the picture.
type VideoFilter struct {
	Name         string `toml:"name"`
	Graph        string `toml:"graph"`
	TargetHeight int    `toml:"target_height"`
}

// Paths contains file and directory locations.
type Paths struct {
	CommandFile string `toml:"command_file"`
	StateDir    string `toml:"state_dir"`
	TempDir     string `toml:"temp_dir"`
}

// Binaries names the external tools.
type Binaries struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// Notifications configures ntfy push notifications. An empty topic
// disables them.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	OnGenerate     bool   `toml:"on_generate"`
}

// Journal toggles the sqlite run journal under the state directory.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for batchenc.
type Config struct {
	Encoding      Encoding      `toml:"encoding"`
	VideoFilters  []VideoFilter `toml:"video_filters"`
	Paths         Paths         `toml:"paths"`
	Binaries      Binaries      `toml:"binaries"`
	Logging       Logging       `toml:"logging"`
	Journal       Journal       `toml:"journal"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/batchenc/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// Parse decodes TOML data over the defaults, then normalizes and validates
// the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "parse", "", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decode overlays data onto c. Array tables append to existing slices, so
// the list defaults are cleared first and restored when the file omits them.
func (c *Config) decode(data []byte) error {
	c.VideoFilters = nil
	c.Encoding.AllowedExtensions = nil
	c.Encoding.Modes = nil
	c.Encoding.CRFs = nil
	c.Encoding.PreferredAudioLanguages = nil

	if err := toml.Unmarshal(data, c); err != nil {
		return err
	}

	if c.VideoFilters == nil {
		c.VideoFilters = defaultVideoFilters()
	}
	if c.Encoding.AllowedExtensions == nil {
		c.Encoding.AllowedExtensions = append([]string(nil), defaultAllowedExtensions...)
	}
	if c.Encoding.Modes == nil {
		c.Encoding.Modes = append([]string(nil), defaultModes...)
	}
	if c.Encoding.CRFs == nil {
		c.Encoding.CRFs = append([]int(nil), defaultCRFs...)
	}
	if c.Encoding.PreferredAudioLanguages == nil {
		c.Encoding.PreferredAudioLanguages = append([]string(nil), defaultAudioLanguages...)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("batchenc.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and, when set, the temp directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.TempDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the sqlite journal location inside the state directory.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// TempRoot returns the directory used for demuxed audio probes.
func (c *Config) TempRoot() string {
	if strings.TrimSpace(c.Paths.TempDir) != "" {
		return c.Paths.TempDir
	}
	return os.TempDir()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
