// Package colorspace picks the color tags written into every encode.
//
// Sources that already carry a known tag keep the matching profile; untagged
// sources are classified by picture height.
package colorspace

import "fmt"

// Profile is one of the three supported color tag sets.
type Profile struct {
	Name           string
	ColorSpace     string
	ColorPrimaries string
	ColorTransfer  string
}

var (
	HD   = Profile{Name: "HD", ColorSpace: "bt709", ColorPrimaries: "bt709", ColorTransfer: "bt709"}
	NTSC = Profile{Name: "NTSC", ColorSpace: "smpte170m", ColorPrimaries: "smpte170m", ColorTransfer: "smpte170m"}
	PAL  = Profile{Name: "PAL", ColorSpace: "bt470bg", ColorPrimaries: "bt470bg", ColorTransfer: "gamma28"}
)

// carryOverOrder is the order in which source tags are matched.
var carryOverOrder = []Profile{HD, NTSC, PAL}

// Metadata is the subset of video stream properties the decision needs.
type Metadata struct {
	ColorSpace     string
	ColorPrimaries string
	ColorTransfer  string
	Height         int
}

// Resolve returns the first profile sharing any tag with the source, or
// infers one from the height: 720 and up is HD, 576 and up is PAL, anything
// lower is NTSC.
func Resolve(meta Metadata) Profile {
	for _, candidate := range carryOverOrder {
		if matches(meta.ColorSpace, candidate.ColorSpace) ||
			matches(meta.ColorPrimaries, candidate.ColorPrimaries) ||
			matches(meta.ColorTransfer, candidate.ColorTransfer) {
			return candidate
		}
	}
	switch {
	case meta.Height >= 720:
		return HD
	case meta.Height >= 576:
		return PAL
	default:
		return NTSC
	}
}

func matches(source, candidate string) bool {
	return source != "" && source == candidate
}

// Args returns the ffmpeg flags for the profile.
func (p Profile) Args() []string {
	return []string{
		"-colorspace", p.ColorSpace,
		"-color_primaries", p.ColorPrimaries,
		"-color_trc", p.ColorTransfer,
	}
}

// String renders the flags as they appear in a command line.
func (p Profile) String() string {
	return fmt.Sprintf("-colorspace %s -color_primaries %s -color_trc %s", p.ColorSpace, p.ColorPrimaries, p.ColorTransfer)
}
