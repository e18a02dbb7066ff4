package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// TouchFiles creates empty files named names under dir and returns their
// paths in the same order.
func TouchFiles(t testing.TB, dir string, names ...string) []string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	paths := make([]string, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("create %s: %v", path, err)
		}
		paths[i] = path
	}
	return paths
}
