package cutlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// HH:MM:SS, MM:SS or plain seconds, each with an optional fraction.
	timePattern = regexp.MustCompile(`^(?:(?:[0-5]?\d:){1,2}[0-5]?\d|\d+)(?:\.\d+)?$`)
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// ValidTime reports whether value is an ffmpeg position this tool accepts.
func ValidTime(value string) bool {
	return timePattern.MatchString(value)
}

// ValidName reports whether value is usable as an output base name.
func ValidName(value string) bool {
	return namePattern.MatchString(value)
}

// Seconds converts a position to seconds. Blank input is an error; callers
// substitute the default before converting.
func Seconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if !ValidTime(value) {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	parts := strings.Split(value, ":")
	multiplier := 1.0
	total := 0.0
	for i := len(parts) - 1; i >= 0; i-- {
		n, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", value, err)
		}
		total += n * multiplier
		multiplier *= 60
	}
	return total, nil
}
