package loudnorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"batchenc/internal/cutlist"
	"batchenc/internal/logging"
	"batchenc/internal/services"
	"batchenc/internal/textutil"
)

const (
	// Target is the shared integrated loudness, range and true-peak target.
	Target = "loudnorm=I=-16:LRA=20:TP=-1:dual_mono=true:linear=true"
	// FirstPassFilter prints the measurement as JSON.
	FirstPassFilter = Target + ":print_format=json"
	// ResampleFilter folds non-stereo audio to two channels.
	ResampleFilter = "aresample=ochl=stereo"
)

var statsBlock = regexp.MustCompile(`(?m)^\{[^}]*\}$`)

// Stats holds the first-pass measurement exactly as ffmpeg printed it.
type Stats struct {
	InputI       string `json:"input_i"`
	InputLRA     string `json:"input_lra"`
	InputTP      string `json:"input_tp"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

// Filter renders the second-pass loudnorm filter for these measurements.
func (s Stats) Filter() string {
	return fmt.Sprintf("%s:measured_I=%s:measured_LRA=%s:measured_TP=%s:measured_thresh=%s:offset=%s",
		Target, s.InputI, s.InputLRA, s.InputTP, s.InputThresh, s.TargetOffset)
}

func (s Stats) complete() bool {
	return s.InputI != "" && s.InputLRA != "" && s.InputTP != "" && s.InputThresh != "" && s.TargetOffset != ""
}

// FirstPassFilters returns the measurement filter chain.
func FirstPassFilters(needsResample bool) string {
	if needsResample {
		return ResampleFilter + "," + FirstPassFilter
	}
	return FirstPassFilter
}

// ParseStats extracts the first line-anchored JSON object from ffmpeg output.
func ParseStats(output []byte) (Stats, error) {
	block := statsBlock.Find(output)
	if block == nil {
		return Stats{}, errors.New("no loudnorm statistics in ffmpeg output")
	}
	var stats Stats
	if err := json.Unmarshal(block, &stats); err != nil {
		return Stats{}, fmt.Errorf("decode loudnorm statistics: %w", err)
	}
	if !stats.complete() {
		return Stats{}, fmt.Errorf("incomplete loudnorm statistics: %s", block)
	}
	return stats, nil
}

// Analyzer runs the measurement pass.
type Analyzer struct {
	FFmpeg string
	Logger *slog.Logger
}

// Args returns the measurement invocation for cut, without the binary.
func Args(cut cutlist.Cut) []string {
	args := append([]string(nil), cut.SeekArgs()...)
	return append(args,
		"-map", fmt.Sprintf("0:a:%d", cut.Source.AudioIndex),
		"-af", FirstPassFilters(cut.Source.NeedsResample()),
		"-vn", "-sn", "-dn",
		"-f", "null", os.DevNull,
	)
}

// Measure runs ffmpeg over the cut's audio and returns its statistics. A
// non-zero exit or unreadable output is tagged services.ErrExternalTool.
func (a *Analyzer) Measure(ctx context.Context, cut cutlist.Cut) (Stats, error) {
	ctx = services.WithStage(services.WithOutputName(ctx, cut.OutputName), "measure")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(a.Logger, "loudnorm"))

	binary := a.FFmpeg
	if binary == "" {
		binary = "ffmpeg"
	}
	args := Args(cut)
	logger.Debug("measuring loudness", logging.String("command", textutil.JoinCommand(append([]string{binary}, args...))))

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Stats{}, services.Wrap(services.ErrCancelled, "measure", cut.OutputName, "loudness measurement interrupted", ctx.Err())
		}
		return Stats{}, services.Wrap(services.ErrExternalTool, "measure", cut.OutputName, tail(output), err)
	}
	stats, err := ParseStats(output)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrExternalTool, "measure", cut.OutputName, "ffmpeg loudnorm", err)
	}
	logger.Info("loudness measured",
		logging.String("input_i", stats.InputI),
		logging.String("input_lra", stats.InputLRA),
		logging.String("input_tp", stats.InputTP),
		logging.String("target_offset", stats.TargetOffset),
	)
	return stats, nil
}

// tail keeps the last lines of tool output for error messages.
func tail(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " | ")
}
