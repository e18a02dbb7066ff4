package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"batchenc/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.CommandFile = filepath.Join(base, "commands.txt")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithEncoding mutates the encoding section.
func WithEncoding(fn func(*config.Encoding)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Encoding)
	}
}

// WithVideoFilters replaces the configured video filters.
func WithVideoFilters(filters ...config.VideoFilter) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.VideoFilters = append([]config.VideoFilter(nil), filters...)
	}
}

// WithStubbedBinaries writes no-op stub executables for the provided names
// and prepends them to PATH. If names is empty, ffmpeg and ffprobe are
// stubbed. Stubs named ffmpeg or ffprobe are also wired into the config.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			b.writeScript(name, "exit 0\n")
		}
	}
}

// WithFFprobe installs an ffprobe stub printing sourceJSON for source files
// and demuxedJSON for the demuxed audio probe (paths ending in .mka).
func WithFFprobe(sourceJSON, demuxedJSON string) ConfigOption {
	return func(b *configBuilder) {
		if demuxedJSON == "" {
			demuxedJSON = `{"streams":[],"format":{}}`
		}
		body := "for last; do :; done\n" +
			"case \"$last\" in\n" +
			"  *.mka)\n    cat <<'JSON'\n" + demuxedJSON + "\nJSON\n    ;;\n" +
			"  *)\n    cat <<'JSON'\n" + sourceJSON + "\nJSON\n    ;;\n" +
			"esac\n"
		b.writeScript("ffprobe", body)
	}
}

// WithFFmpeg installs an ffmpeg stub that records every invocation in
// CallLog, prints LoudnormOutput on stderr for loudness measurements, and
// creates the output file for demux calls.
func WithFFmpeg() ConfigOption {
	return WithFFmpegLoudnorm(LoudnormOutput)
}

// WithFFmpegLoudnorm is WithFFmpeg with a custom measurement printout.
func WithFFmpegLoudnorm(measurement string) ConfigOption {
	return func(b *configBuilder) {
		calls := CallLog(b.cfg)
		body := "echo \"$*\" >> '" + calls + "'\n" +
			"for last; do :; done\n" +
			"case \"$*\" in\n" +
			"  *print_format=json*)\n    cat >&2 <<'OUT'\n" + measurement + "\nOUT\n    exit 0\n    ;;\n" +
			"  *\"-acodec copy\"*)\n    : > \"$last\"\n    exit 0\n    ;;\n" +
			"esac\n" +
			"exit 0\n"
		b.writeScript("ffmpeg", body)
	}
}

// WithScript installs an arbitrary /bin/sh stub.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		b.writeScript(name, body)
	}
}

func (b *configBuilder) writeScript(name, body string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	switch name {
	case "ffmpeg":
		b.cfg.Binaries.FFmpeg = target
	case "ffprobe":
		b.cfg.Binaries.FFprobe = target
	}
	path := os.Getenv("PATH")
	if !strings.HasPrefix(path, binDir+string(os.PathListSeparator)) {
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+path)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// CallLog is the file the ffmpeg stub appends its arguments to.
func CallLog(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "ffmpeg.calls")
}

// Calls returns the recorded ffmpeg invocations, one per line.
func Calls(t testing.TB, cfg *config.Config) []string {
	t.Helper()
	data, err := os.ReadFile(CallLog(cfg))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read call log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
