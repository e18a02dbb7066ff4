package plan

import (
	"fmt"

	"batchenc/internal/services"
)

// Interleave merges equally sized groups column by column: the first item
// of every group, then the second of every group, and so on. Groups of
// different lengths are rejected with services.ErrValidation so the caller
// can fall back to sequential order.
func Interleave[T any](groups [][]T) ([]T, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	width := len(groups[0])
	total := 0
	for i, g := range groups {
		if len(g) != width {
			return nil, services.Wrap(services.ErrValidation, "plan", "interleave",
				fmt.Sprintf("group %d has %d commands, group 1 has %d", i+1, len(g), width), nil)
		}
		total += len(g)
	}
	out := make([]T, 0, total)
	for col := 0; col < width; col++ {
		for _, g := range groups {
			out = append(out, g[col])
		}
	}
	return out, nil
}

// Sequential concatenates groups in order.
func Sequential[T any](groups [][]T) []T {
	var out []T
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
