package encode

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"batchenc/internal/colorspace"
	"batchenc/internal/cutlist"
	"batchenc/internal/loudnorm"
	"batchenc/internal/ratetable"
	"batchenc/internal/textutil"
)

// Pass identifies the role of a command.
type Pass int

const (
	PreviewPass Pass = iota
	FirstPass
	SecondPass
)

func (p Pass) String() string {
	switch p {
	case PreviewPass:
		return "preview"
	case FirstPass:
		return "first pass"
	case SecondPass:
		return "second pass"
	default:
		return "pass(" + strconv.Itoa(int(p)) + ")"
	}
}

// Command is one rendered ffmpeg invocation with the choices that shaped
// it. Output is empty for first passes, which write no media.
type Command struct {
	Pass      Pass
	Mode      Mode
	CRF       int
	Filter    VideoFilter
	Output    string
	SizeLimit int64
	Line      string
}

// Builder renders the commands of one cut. The values derived from the cut
// and its loudness measurement are computed once in NewBuilder.
type Builder struct {
	// FFmpeg is the program name written at the start of each line.
	FFmpeg string

	cut          cutlist.Cut
	keyframes    int
	audioBitrate string
	bitrate      string
	maxBitrate   string
	color        colorspace.Profile
	audioChain   string
}

// NewBuilder derives the per-cut encode parameters.
func NewBuilder(cut cutlist.Cut, stats loudnorm.Stats) *Builder {
	src := cut.Source
	return &Builder{
		FFmpeg:       "ffmpeg",
		cut:          cut,
		keyframes:    ratetable.KeyframeInterval(cut.Duration()),
		audioBitrate: ratetable.AudioBitrate(src.AudioBitrate),
		bitrate:      ratetable.CBRBitrate(src.Height()),
		maxBitrate:   ratetable.CBRMaxBitrate(src.Height()),
		color:        colorspace.Resolve(src.ColorMetadata()),
		audioChain:   AudioChain(src.NeedsResample(), stats, cut.AudioFilter),
	}
}

// KeyframeInterval returns the -g value used for the cut.
func (b *Builder) KeyframeInterval() int { return b.keyframes }

// Colorspace returns the profile tagged on the output.
func (b *Builder) Colorspace() colorspace.Profile { return b.color }

// AudioChain returns the -af value of the encode pass.
func (b *Builder) AudioChain() string { return b.audioChain }

// Filename returns the output base name: the cut name, then the CRF for
// VBR and CQ, the bitrate tier for CBR and CQ, then the filter name.
func (b *Builder) Filename(mode Mode, crf int, filter VideoFilter) string {
	parts := []string{b.cut.OutputName}
	if mode.UsesCRF() {
		parts = append(parts, strconv.Itoa(crf))
	}
	if mode.UsesTier() {
		parts = append(parts, b.bitrate)
	}
	if filter.Name != "" {
		parts = append(parts, filter.Name)
	}
	return strings.Join(parts, "-")
}

// SizeLimit returns the -fs value for a second pass through filter.
func (b *Builder) SizeLimit(filter VideoFilter) int64 {
	return ratetable.FileSizeLimit(filter.OutputHeight(b.cut.Source.Height()), b.cut.Duration())
}

// Preview renders a quick stream-copy MP4 of the cut with the encode audio
// chain applied.
func (b *Builder) Preview() Command {
	output := b.cut.OutputName + ".mp4"
	args := []string{
		"-af", b.audioChain,
		"-vcodec", "copy", "-c:a", "aac", "-b:a", "128k", "-sn", "-f", "mp4",
		output,
	}
	return Command{Pass: PreviewPass, Output: output, Line: b.render(args)}
}

// FirstPass renders the analysis pass. Its output is discarded.
func (b *Builder) FirstPass(mode Mode, crf, threads int) Command {
	args := b.passPrefix(1)
	args = append(args, mode.FirstPassArgs(b.bitrate, b.maxBitrate, crf)...)
	args = append(args,
		"-cpu-used", "4",
		"-g", strconv.Itoa(b.keyframes),
		"-threads", strconv.Itoa(threads),
	)
	args = append(args, b.tuning()...)
	args = append(args, "-an", "-sn", "-f", "webm", "-y", os.DevNull)
	return Command{Pass: FirstPass, Mode: mode, CRF: crf, Line: b.render(args)}
}

// SecondPass renders the encode pass through filter.
func (b *Builder) SecondPass(mode Mode, crf, threads int, filter VideoFilter, limitSize bool) Command {
	args := b.passPrefix(2)
	args = append(args, mode.SecondPassArgs(b.bitrate, b.maxBitrate, crf)...)
	args = append(args,
		"-cpu-used", "0",
		"-g", strconv.Itoa(b.keyframes),
		"-threads", strconv.Itoa(threads),
		"-af", b.audioChain,
	)
	if !filter.Unfiltered() {
		args = append(args, "-vf", filter.Graph)
	}
	args = append(args, b.tuning()...)
	args = append(args, "-c:a", "libopus", "-b:a", b.audioBitrate, "-ar", "48k")

	var limit int64
	if limitSize {
		limit = b.SizeLimit(filter)
		args = append(args, "-fs", ratetable.FormatBytes(limit))
	}
	output := b.Filename(mode, crf, filter) + ".webm"
	args = append(args,
		"-map_metadata:g", "-1", "-map_metadata:s:v", "-1", "-map_metadata:s:a", "-1",
		"-map_chapters", "-1", "-sn", "-f", "webm", "-y", output,
	)
	return Command{
		Pass:      SecondPass,
		Mode:      mode,
		CRF:       crf,
		Filter:    filter,
		Output:    output,
		SizeLimit: limit,
		Line:      b.render(args),
	}
}

// Plan returns every command of the cut in emission order: the preview
// when enabled, then per mode a first pass followed by one second pass per
// filter, repeated per CRF for VBR and CQ.
func (b *Builder) Plan(s Settings) ([]Command, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	filters := s.EffectiveFilters()
	commands := make([]Command, 0, s.CommandCount())
	if s.CreatePreview {
		commands = append(commands, b.Preview())
	}
	for _, mode := range s.Modes {
		crfs := []int{0}
		if mode.UsesCRF() {
			crfs = s.CRFs
		}
		for _, crf := range crfs {
			commands = append(commands, b.FirstPass(mode, crf, s.Threads))
			for _, filter := range filters {
				commands = append(commands, b.SecondPass(mode, crf, s.Threads, filter, s.LimitSize))
			}
		}
	}
	return commands, nil
}

// Commands returns the command lines of Plan.
func (b *Builder) Commands(s Settings) ([]string, error) {
	plan, err := b.Plan(s)
	if err != nil {
		return nil, err
	}
	return Lines(plan), nil
}

// Lines extracts the command lines.
func Lines(commands []Command) []string {
	lines := make([]string, len(commands))
	for i, c := range commands {
		lines[i] = c.Line
	}
	return lines
}

func (b *Builder) passPrefix(pass int) []string {
	return []string{
		"-pass", strconv.Itoa(pass),
		"-passlogfile", b.cut.OutputName,
		"-map", fmt.Sprintf("0:v:%d", b.cut.Source.VideoIndex),
		"-map", fmt.Sprintf("0:a:%d", b.cut.Source.AudioIndex),
		"-c:v", "libvpx-vp9",
	}
}

func (b *Builder) tuning() []string {
	args := []string{
		"-tile-columns", "6", "-frame-parallel", "0", "-auto-alt-ref", "1",
		"-lag-in-frames", "25", "-row-mt", "1", "-pix_fmt", "yuv420p",
	}
	return append(args, b.color.Args()...)
}

func (b *Builder) render(args []string) string {
	binary := b.FFmpeg
	if binary == "" {
		binary = "ffmpeg"
	}
	return textutil.ShellQuote(binary) + " " + b.cut.SeekString() + " " + textutil.JoinCommand(args)
}
