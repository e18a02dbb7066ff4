package execute

import (
	"regexp"
	"strconv"
)

var sizeLimitFlag = regexp.MustCompile(`(?:^|\s)-fs\s+(\d+)(?:\s|$)`)

// RequiredBytes sums the -fs limits of commands. Commands without a limit
// add nothing, so the total is a lower bound on what the run writes.
func RequiredBytes(commands []string) int64 {
	var total int64
	for _, command := range commands {
		if m := sizeLimitFlag.FindStringSubmatch(command); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				total += n
			}
		}
	}
	return total
}
