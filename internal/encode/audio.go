package encode

import (
	"fmt"
	"strings"

	"batchenc/internal/loudnorm"
)

// FadeIn fades the cut's audio in over seconds from its first sample.
func FadeIn(seconds string) string {
	return fmt.Sprintf("afade=d=%s:curve=exp", seconds)
}

// FadeOut fades the audio out over seconds starting at start, relative to
// the cut.
func FadeOut(start, seconds string) string {
	return fmt.Sprintf("afade=t=out:st=%s:d=%s", start, seconds)
}

// Mute silences the audio between start and end, relative to the cut.
func Mute(start, end string) string {
	return fmt.Sprintf("volume=enable='between(t,%s,%s)':volume=0", start, end)
}

// JoinAudioFilters comma-joins the non-blank fragments.
func JoinAudioFilters(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, ",")
}

// AudioChain builds the encode-pass audio graph: stereo fold when needed,
// the measured loudnorm filter, then the cut's own fragment.
func AudioChain(needsResample bool, stats loudnorm.Stats, custom string) string {
	resample := ""
	if needsResample {
		resample = loudnorm.ResampleFilter
	}
	return JoinAudioFilters(resample, stats.Filter(), custom)
}
