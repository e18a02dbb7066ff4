package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"batchenc/internal/config"
	"batchenc/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	workDir    string
}

// setupCLITestEnv writes a config pointing at stubbed ffmpeg and ffprobe
// binaries and moves into an empty working directory. The default profile
// is VBR at CRF 12 and 24 with only the unfiltered variant.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := []testsupport.ConfigOption{
		testsupport.WithFFprobe(testsupport.ProbeJSON(45, 1080, "448000"), ""),
		testsupport.WithFFmpeg(),
		testsupport.WithEncoding(func(e *config.Encoding) {
			e.Modes = []string{"VBR"}
			e.CRFs = []int{12, 24}
		}),
		testsupport.WithVideoFilters(config.VideoFilter{Name: "", Graph: ""}),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)

	workDir := filepath.Join(testsupport.BaseDir(cfg), "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work dir: %v", err)
	}
	t.Chdir(workDir)
	t.Setenv("HOME", testsupport.BaseDir(cfg))

	env := &cliTestEnv{cfg: cfg, configPath: filepath.Join(testsupport.BaseDir(cfg), "config.toml"), workDir: workDir}
	rewriteConfig(t, env)
	return env
}

// rewriteConfig persists env.cfg to the file the CLI loads.
func rewriteConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	data, err := toml.Marshal(env.cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(env.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	var flags []string
	if env != nil && env.configPath != "" {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// interactive makes the CLI believe stdin is a terminal for the test.
func interactive(t *testing.T) {
	t.Helper()
	previous := stdinIsTerminal
	stdinIsTerminal = func() bool { return true }
	t.Cleanup(func() { stdinIsTerminal = previous })
}

func writeSheet(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sheet.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write cut sheet: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
