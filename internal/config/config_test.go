package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"batchenc/internal/config"
	"batchenc/internal/services"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "batchenc")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.CommandFile) || filepath.Base(cfg.Paths.CommandFile) != "commands.txt" {
		t.Fatalf("unexpected command file: %q", cfg.Paths.CommandFile)
	}
	if !reflect.DeepEqual(cfg.Encoding.Modes, []string{"VBR", "CBR"}) {
		t.Fatalf("unexpected modes: %v", cfg.Encoding.Modes)
	}
	if !reflect.DeepEqual(cfg.Encoding.CRFs, []int{12, 15, 18, 21, 24}) {
		t.Fatalf("unexpected crfs: %v", cfg.Encoding.CRFs)
	}
	if !reflect.DeepEqual(cfg.Encoding.AllowedExtensions, []string{".avi", ".m2ts", ".mkv", ".mp4", ".wmv"}) {
		t.Fatalf("unexpected extensions: %v", cfg.Encoding.AllowedExtensions)
	}
	if cfg.Encoding.Threads != 4 || !cfg.Encoding.LimitSize || !cfg.Encoding.IncludeUnfiltered {
		t.Fatalf("unexpected encoding defaults: %+v", cfg.Encoding)
	}
	if cfg.Encoding.CreatePreview || cfg.Encoding.AlternateSourceFiles {
		t.Fatalf("expected preview and alternation off by default: %+v", cfg.Encoding)
	}
	if len(cfg.VideoFilters) != 4 || cfg.VideoFilters[0].Name != "filtered" {
		t.Fatalf("unexpected default filters: %+v", cfg.VideoFilters)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadCustomPathReplacesFilters(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "batchenc.toml")
	data := []byte(`
[encoding]
modes = ["cq", "vbr"]
crfs = [20]
allowed_extensions = ["MKV"]
create_preview = true

[[video_filters]]
name = "720p"
graph = "scale=-1:720"
target_height = 720

[[video_filters]]
name = ""
graph = "No Filters"

[logging]
format = "JSON"
`)
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if !reflect.DeepEqual(cfg.Encoding.Modes, []string{"CQ", "VBR"}) {
		t.Fatalf("expected upper-cased modes, got %v", cfg.Encoding.Modes)
	}
	if !reflect.DeepEqual(cfg.Encoding.AllowedExtensions, []string{".mkv"}) {
		t.Fatalf("expected normalized extension, got %v", cfg.Encoding.AllowedExtensions)
	}
	if len(cfg.VideoFilters) != 2 {
		t.Fatalf("expected file filters to replace defaults, got %+v", cfg.VideoFilters)
	}
	if cfg.VideoFilters[0].TargetHeight != 720 {
		t.Fatalf("expected target height, got %+v", cfg.VideoFilters[0])
	}
	if cfg.VideoFilters[1].Graph != "" {
		t.Fatalf("expected No Filters label to normalize to empty graph, got %q", cfg.VideoFilters[1].Graph)
	}
	if !cfg.Encoding.LimitSize {
		t.Fatal("expected omitted limit_size to keep its default")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lower-cased format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown mode", "[encoding]\nmodes = [\"ABR\"]\n"},
		{"duplicate mode", "[encoding]\nmodes = [\"VBR\", \"vbr\"]\n"},
		{"duplicate crf", "[encoding]\ncrfs = [18, 18]\n"},
		{"crf range", "[encoding]\ncrfs = [64]\n"},
		{"threads", "[encoding]\nthreads = 0\n"},
		{"numeric filter", "[[video_filters]]\nname = \"12\"\ngraph = \"unsharp\"\n"},
		{"tier filter", "[[video_filters]]\nname = \"5600k-x\"\ngraph = \"unsharp\"\n"},
		{"duplicate filter", "[[video_filters]]\nname = \"a\"\ngraph = \"unsharp\"\n[[video_filters]]\nname = \"a\"\ngraph = \"gradfun\"\n"},
		{"two unnamed", "[[video_filters]]\nname = \"\"\n[[video_filters]]\nname = \"\"\n"},
		{"unnamed graph", "[[video_filters]]\ngraph = \"unsharp\"\n"},
		{"empty graph", "[[video_filters]]\nname = \"x\"\n"},
		{"command file ext", "[paths]\ncommand_file = \"cmds.sh\"\n"},
		{"log format", "[logging]\nformat = \"xml\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.toml))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
		})
	}
}

func TestValidFilterName(t *testing.T) {
	cases := map[string]bool{
		"filtered":      true,
		"720p":          true,
		"filtered-720p": true,
		"custom1":       true,
		"12":            false,
		"5600k":         false,
		"-x":            false,
		"x-":            false,
		"a_b":           false,
		"":              false,
	}
	for name, want := range cases {
		if got := config.ValidFilterName(name); got != want {
			t.Fatalf("ValidFilterName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseMalformedTOML(t *testing.T) {
	_, err := config.Parse([]byte("[encoding\n"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.VideoFilters) != 4 {
		t.Fatalf("expected four sample filters, got %d", len(cfg.VideoFilters))
	}
}

func TestPreferredAudioLanguagesNormalized(t *testing.T) {
	cfg, err := config.Parse([]byte("[encoding]\npreferred_audio_languages = [\"jpn\", \"English\", \"ja\"]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(cfg.Encoding.PreferredAudioLanguages, []string{"ja", "en"}) {
		t.Fatalf("unexpected languages: %v", cfg.Encoding.PreferredAudioLanguages)
	}
	def := config.Default()
	if !reflect.DeepEqual(def.Encoding.PreferredAudioLanguages, []string{"en"}) {
		t.Fatalf("unexpected default languages: %v", def.Encoding.PreferredAudioLanguages)
	}
}

func TestNotificationsValidation(t *testing.T) {
	if _, err := config.Parse([]byte("[notifications]\nntfy_topic = \"ntfy.sh/topic\"\n")); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for a topic without scheme, got %v", err)
	}
	cfg, err := config.Parse([]byte("[notifications]\nntfy_topic = \" https://ntfy.sh/encodes \"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/encodes" || cfg.Notifications.RequestTimeout != 10 {
		t.Fatalf("unexpected notifications: %+v", cfg.Notifications)
	}
}
