package logging

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// Keys whose float values are positions or lengths in seconds. Info lines
// show them as clock times like the cut prompts accept.
var secondsKeys = map[string]struct{}{
	"duration": {},
	"start":    {},
	"end":      {},
}

// infoValue renders a field for an info line.
func infoValue(key string, v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		if _, ok := secondsKeys[key]; ok {
			return clockTime(v.Float64())
		}
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	}
	return attrString(v)
}

// clockTime renders seconds as M:SS or H:MM:SS with up to millisecond
// precision.
func clockTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return strconv.FormatFloat(seconds, 'f', -1, 64)
	}
	ms := int64(math.Round(seconds * 1000))
	whole, frac := ms/1000, ms%1000
	h, m, s := whole/3600, whole%3600/60, whole%60
	var out string
	if h > 0 {
		out = fmt.Sprintf("%d:%02d:%02d", h, m, s)
	} else {
		out = fmt.Sprintf("%d:%02d", m, s)
	}
	if frac > 0 {
		out += strings.TrimRight(fmt.Sprintf(".%03d", frac), "0")
	}
	return out
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// formatValue renders a field for a debug line, quoting anything that
// would not read back as a single token.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool, slog.KindInt64, slog.KindUint64, slog.KindDuration:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	}
	s := attrString(v)
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}
