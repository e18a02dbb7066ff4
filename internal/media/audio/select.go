package audio

import (
	"strconv"
	"strings"

	"batchenc/internal/language"
	"batchenc/internal/media/ffprobe"
)

type candidate struct {
	position int
	rank     int
	channels int
	lossless bool
}

// Suggest returns the position in streams of the recommended audio track.
// preferred holds normalized language codes, most wanted first. It returns
// 0 for an empty slice.
func Suggest(streams []ffprobe.Stream, preferred []string) int {
	if len(streams) == 0 {
		return 0
	}
	candidates := make([]candidate, len(streams))
	bestRank := -1
	for i, s := range streams {
		c := candidate{
			position: i,
			rank:     language.Rank(s.Tags.Language, preferred),
			channels: ChannelCount(s),
			lossless: Lossless(s),
		}
		candidates[i] = c
		if c.rank >= 0 && (bestRank < 0 || c.rank < bestRank) {
			bestRank = c.rank
		}
	}

	best := -1
	for _, c := range candidates {
		if bestRank >= 0 && c.rank != bestRank {
			continue
		}
		if best < 0 || better(c, candidates[best]) {
			best = c.position
		}
	}
	return best
}

func better(a, b candidate) bool {
	if a.channels != b.channels {
		return a.channels > b.channels
	}
	if a.lossless != b.lossless {
		return a.lossless
	}
	return a.position < b.position
}

// ChannelCount returns the reported channel count, falling back to the
// channel layout ("5.1(side)" -> 6).
func ChannelCount(s ffprobe.Stream) int {
	if s.Channels > 0 {
		return s.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(s.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	case !strings.Contains(layout, "."):
		return 0
	}
	total := 0
	for _, part := range strings.Split(layout, ".") {
		part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
		if n, err := strconv.Atoi(part); err == nil {
			total += n
		}
	}
	return total
}

// Lossless reports whether the codec is lossless.
func Lossless(s ffprobe.Stream) bool {
	name := strings.ToLower(s.CodecName)
	switch name {
	case "truehd", "flac", "mlp", "alac":
		return true
	}
	return strings.HasPrefix(name, "pcm_")
}
