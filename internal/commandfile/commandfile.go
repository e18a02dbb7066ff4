// Package commandfile reads and writes the plain-text command file: one
// shell command per line, each newline-terminated, in execution order.
package commandfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"batchenc/internal/fileutil"
	"batchenc/internal/services"
)

// Extension is the only accepted command file extension.
const Extension = ".txt"

// ErrLocked reports that another batchenc process holds the command file.
var ErrLocked = errors.New("command file is in use")

// ValidatePath rejects paths without the .txt extension.
func ValidatePath(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return services.Wrap(services.ErrConfiguration, "commandfile", "path", fmt.Sprintf("%q must end in %s", path, Extension), nil)
	}
	return nil
}

// Lock takes the advisory lock guarding path. The caller must Unlock it.
func Lock(path string) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock for %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}

// Encode renders lines as file content.
func Encode(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write replaces path with lines under the advisory lock.
func Write(path string, lines []string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	for i, line := range lines {
		if strings.ContainsAny(line, "\r\n") {
			return services.Wrap(services.ErrValidation, "commandfile", "write", fmt.Sprintf("command %d spans more than one line", i+1), nil)
		}
	}
	lock, err := Lock(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fileutil.WriteFileAtomic(path, Encode(lines), 0o644)
}

// Read returns the commands in path, skipping blank lines. A missing file
// is a configuration error.
func Read(path string) ([]string, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "commandfile", "read", fmt.Sprintf("%s does not exist", path), nil)
		}
		return nil, fmt.Errorf("open command file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads commands from r, skipping blank lines and trimming a
// trailing carriage return.
func Decode(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read command file: %w", err)
	}
	return lines, nil
}
