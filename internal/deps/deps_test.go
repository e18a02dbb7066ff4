package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present", "exit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: " ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	dir := t.TempDir()
	writeStub(t, dir, "ffprobe", "exit 0\n")
	t.Setenv("PATH", dir)

	results := CheckBinaries([]Requirement{{Name: "FFprobe", Command: "ffprobe"}})
	if !results[0].Available || results[0].Command != filepath.Join(dir, "ffprobe") {
		t.Fatalf("expected resolved path, got %#v", results[0])
	}
}

func TestVersion(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeStub(t, dir, "ffmpeg", "echo 'ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers'\necho 'built with gcc 13'\n")
	broken := writeStub(t, dir, "broken", "echo nonsense\n")
	failing := writeStub(t, dir, "failing", "exit 3\n")

	version, err := Version(context.Background(), ffmpeg)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "6.1.1-3ubuntu5" {
		t.Fatalf("unexpected version %q", version)
	}
	if _, err := Version(context.Background(), broken); err == nil {
		t.Fatal("expected unrecognized output error")
	}
	if _, err := Version(context.Background(), failing); err == nil {
		t.Fatal("expected exit status error")
	}

	statuses := WithVersions(context.Background(), CheckBinaries([]Requirement{
		{Name: "FFmpeg", Command: ffmpeg},
		{Name: "Broken", Command: broken},
	}))
	if statuses[0].Version != "6.1.1-3ubuntu5" || !statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("unexpected statuses %#v", statuses)
	}
}
