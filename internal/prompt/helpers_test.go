package prompt_test

import (
	"io"
	"testing"
)

// ioPipe returns a reader that blocks until the test ends.
func ioPipe(t *testing.T) (*io.PipeReader, *io.PipeWriter) {
	t.Helper()
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	return r, w
}
