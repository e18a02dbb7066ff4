// Package ratetable maps cut duration, source bitrate and picture height to
// the keyframe interval, audio bitrate, CBR bitrate tiers and file size cap
// used by the encode commands.
package ratetable

import (
	"math"
	"strconv"
)

// KeyframeInterval returns the -g value for a cut of the given length in
// seconds. Short cuts get a tighter interval so they still carry enough
// keyframes to seek.
func KeyframeInterval(duration float64) int {
	switch {
	case duration < 60:
		return 96
	case duration < 120:
		return 120
	default:
		return 240
	}
}

// AudioBitrate returns the Opus bitrate for a source audio bitrate in bits
// per second.
func AudioBitrate(bps int64) string {
	if bps > 320000 {
		return "320k"
	}
	return "192k"
}

// CBRBitrate returns the target bitrate tier for a picture height.
func CBRBitrate(height int) string {
	switch {
	case height >= 1080:
		return "5600k"
	case height >= 720:
		return "3700k"
	case height >= 576:
		return "3200k"
	default:
		return "2400k"
	}
}

// CBRMaxBitrate returns the maximum bitrate tier for a picture height.
func CBRMaxBitrate(height int) string {
	switch {
	case height >= 1080:
		return "6400k"
	case height >= 720:
		return "4200k"
	case height >= 576:
		return "3700k"
	default:
		return "3200k"
	}
}

// FileSizeLimit returns the -fs cap in bytes for the output resolution
// (height) and cut duration in seconds, rounded to the nearest byte.
func FileSizeLimit(resolution int, duration float64) int64 {
	maxBitrate := float64(resolution)*6100 + 475000
	return int64(math.Round(maxBitrate * duration / 8))
}

// FormatBytes renders a size limit the way it appears on the command line.
func FormatBytes(limit int64) string {
	return strconv.FormatInt(limit, 10)
}
