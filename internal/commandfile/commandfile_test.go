package commandfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"batchenc/internal/commandfile"
	"batchenc/internal/services"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.txt")
	lines := []string{
		`ffmpeg -i "/media/show.mkv" -pass 1 -passlogfile Show-OP1 -an -f webm -y /dev/null`,
		`ffmpeg -i "/media/show.mkv" -pass 2 -af "volume=enable='between(t,1,2)':volume=0" -y Show-OP1-12.webm`,
	}
	if err := commandfile.Write(path, lines); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") || strings.Count(string(data), "\n") != 2 {
		t.Fatalf("expected newline-terminated lines, got %q", data)
	}
	got, err := commandfile.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, lines)
	}
}

func TestDecodeSkipsBlankLinesAndCR(t *testing.T) {
	got, err := commandfile.Decode(strings.NewReader("a\r\n\n  \nb\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected lines %q", got)
	}
}

func TestPathMustBeText(t *testing.T) {
	err := commandfile.Write(filepath.Join(t.TempDir(), "commands.sh"), []string{"true"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := commandfile.Read("commands.bat"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := commandfile.Read(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestWriteRejectsMultilineCommands(t *testing.T) {
	err := commandfile.Write(filepath.Join(t.TempDir(), "commands.txt"), []string{"echo a\necho b"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.txt")
	lock, err := commandfile.Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := commandfile.Write(path, []string{"true"}); !errors.Is(err, commandfile.ErrLocked) {
		t.Fatalf("expected ErrLocked while held, got %v", err)
	}
}
