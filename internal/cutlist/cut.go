package cutlist

import (
	"batchenc/internal/source"
	"batchenc/internal/textutil"
)

// Cut is one validated time range of a source file. Blank Start means the
// beginning of the file and blank End means its end.
type Cut struct {
	Source      *source.Descriptor
	Start       string
	End         string
	OutputName  string
	AudioFilter string
}

// StartSeconds returns the effective start position.
func (c Cut) StartSeconds() float64 {
	if c.Start == "" {
		return 0
	}
	s, _ := Seconds(c.Start)
	return s
}

// EndSeconds returns the effective end position.
func (c Cut) EndSeconds() float64 {
	if c.End == "" {
		return c.Source.Duration()
	}
	s, _ := Seconds(c.End)
	return s
}

// Duration returns the effective length of the cut in seconds.
func (c Cut) Duration() float64 {
	return c.EndSeconds() - c.StartSeconds()
}

// SeekArgs returns the input arguments for the cut. Input seeking
// (-ss before -i) is used for the start; an end-only cut places -to after
// the input.
func (c Cut) SeekArgs() []string {
	switch {
	case c.Start != "" && c.End != "":
		return []string{"-ss", c.Start, "-to", c.End, "-i", c.Source.Path}
	case c.Start != "":
		return []string{"-ss", c.Start, "-i", c.Source.Path}
	case c.End != "":
		return []string{"-i", c.Source.Path, "-to", c.End}
	default:
		return []string{"-i", c.Source.Path}
	}
}

// SeekString renders SeekArgs for a shell command line. The source path is
// always double-quoted.
func (c Cut) SeekString() string {
	input := "-i " + textutil.DoubleQuote(c.Source.Path)
	switch {
	case c.Start != "" && c.End != "":
		return "-ss " + c.Start + " -to " + c.End + " " + input
	case c.Start != "":
		return "-ss " + c.Start + " " + input
	case c.End != "":
		return input + " -to " + c.End
	default:
		return input
	}
}
