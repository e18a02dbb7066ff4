package encode

import (
	"fmt"
	"strconv"
	"strings"

	"batchenc/internal/services"
)

// Mode is a VP9 rate-control mode.
type Mode string

const (
	CBR Mode = "CBR"
	VBR Mode = "VBR"
	CQ  Mode = "CQ"
)

// Modes lists the supported modes in display order.
var Modes = []Mode{CBR, VBR, CQ}

// ParseMode accepts a mode name in any case.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(value))) {
	case CBR:
		return CBR, nil
	case VBR:
		return VBR, nil
	case CQ:
		return CQ, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "encode", "mode", fmt.Sprintf("unsupported mode %q", value), nil)
	}
}

// UsesCRF reports whether the mode runs once per CRF and tags filenames
// with it.
func (m Mode) UsesCRF() bool {
	return m == VBR || m == CQ
}

// UsesTier reports whether filenames carry the CBR bitrate tier.
func (m Mode) UsesTier() bool {
	return m == CBR || m == CQ
}

// FirstPassArgs returns the rate-control flags of the analysis pass.
func (m Mode) FirstPassArgs(bitrate, maxBitrate string, crf int) []string {
	switch m {
	case CBR:
		return []string{"-b:v", bitrate, "-maxrate", maxBitrate, "-qcomp", "0.3"}
	case VBR:
		return []string{"-crf", strconv.Itoa(crf), "-b:v", "0", "-qcomp", "0.7"}
	case CQ:
		return []string{"-crf", strconv.Itoa(crf), "-b:v", bitrate, "-qcomp", "0.7"}
	}
	return nil
}

// SecondPassArgs returns the rate-control flags of the encode pass. Only
// CBR differs from the first pass, adding a fixed buffer size.
func (m Mode) SecondPassArgs(bitrate, maxBitrate string, crf int) []string {
	if m == CBR {
		return []string{"-b:v", bitrate, "-maxrate", maxBitrate, "-bufsize", "6000k", "-qcomp", "0.3"}
	}
	return m.FirstPassArgs(bitrate, maxBitrate, crf)
}
