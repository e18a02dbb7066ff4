package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"batchenc/internal/colorspace"
	"batchenc/internal/logging"
	"batchenc/internal/media/ffprobe"
	"batchenc/internal/services"
)

// Stream kinds accepted by StreamChooser.
const (
	KindVideo = "video"
	KindAudio = "audio"
)

// Descriptor is a probed source file with its selected streams.
type Descriptor struct {
	Path         string
	Probe        ffprobe.Result
	VideoIndex   int
	AudioIndex   int
	Video        ffprobe.Stream
	Audio        ffprobe.Stream
	AudioBitrate int64
}

// Duration returns the container duration in seconds.
func (d *Descriptor) Duration() float64 {
	return d.Probe.DurationSeconds()
}

// Height returns the selected video stream height.
func (d *Descriptor) Height() int {
	return d.Video.Height
}

// NeedsResample reports whether the selected audio stream must be folded to
// stereo before loudness normalization. Missing channel data counts as
// stereo.
func (d *Descriptor) NeedsResample() bool {
	channels := d.Audio.Channels
	if channels == 0 {
		channels = 2
	}
	layout := d.Audio.ChannelLayout
	if layout == "" {
		layout = "stereo"
	}
	return channels != 2 || layout != "stereo"
}

// ColorMetadata returns the video properties the colorspace decision uses.
func (d *Descriptor) ColorMetadata() colorspace.Metadata {
	return colorspace.Metadata{
		ColorSpace:     d.Video.ColorSpace,
		ColorPrimaries: d.Video.ColorPrimaries,
		ColorTransfer:  d.Video.ColorTransfer,
		Height:         d.Video.Height,
	}
}

// StreamChooser picks a stream when a file has several of one kind and no
// usable default is configured.
type StreamChooser interface {
	ChooseStream(ctx context.Context, path, kind string, streams []ffprobe.Stream) (int, error)
}

// Opener builds Descriptors.
type Opener struct {
	FFprobe      string
	FFmpeg       string
	TempDir      string
	DefaultVideo string
	DefaultAudio string
	Chooser      StreamChooser
	Logger       *slog.Logger
}

// Open probes path, selects streams and resolves the audio bitrate.
// Probe and demux failures are tagged services.ErrExternalTool; an
// interrupted open returns services.ErrCancelled after removing any
// temporary files.
func (o *Opener) Open(ctx context.Context, path string) (*Descriptor, error) {
	ctx = services.WithStage(services.WithSourceFile(ctx, path), "probe")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(o.Logger, "source"))

	result, err := ffprobe.Inspect(ctx, o.FFprobe, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(path, ctx.Err())
		}
		return nil, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", path, err)
	}

	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "duration", fmt.Sprintf("%s: unusable duration %q", path, result.Format.Duration), nil)
	}
	videos := result.VideoStreams()
	if len(videos) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "streams", path+": no video stream", nil)
	}
	audios := result.AudioStreams()
	if len(audios) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "streams", path+": no audio stream", nil)
	}

	videoIndex, err := o.selectStream(ctx, logger, path, KindVideo, o.DefaultVideo, videos)
	if err != nil {
		return nil, err
	}
	audioIndex, err := o.selectStream(ctx, logger, path, KindAudio, o.DefaultAudio, audios)
	if err != nil {
		return nil, err
	}

	desc := &Descriptor{
		Path:       path,
		Probe:      result,
		VideoIndex: videoIndex,
		AudioIndex: audioIndex,
		Video:      videos[videoIndex],
		Audio:      audios[audioIndex],
	}

	desc.AudioBitrate = desc.Audio.BitsPerSecond()
	if desc.AudioBitrate == 0 {
		bitrate, err := o.demuxedBitrate(ctx, path, audioIndex)
		if err != nil {
			return nil, err
		}
		desc.AudioBitrate = bitrate
	}

	logger.Info("source opened",
		logging.Float64("duration", duration),
		logging.Int("height", desc.Height()),
		logging.Int("video_stream", videoIndex),
		logging.Int("audio_stream", audioIndex),
		logging.Int64("audio_bitrate", desc.AudioBitrate),
	)
	return desc, nil
}

// selectStream honours a configured default when it names an existing
// stream. A malformed or out-of-range default is a configuration problem
// that is logged and then ignored.
func (o *Opener) selectStream(ctx context.Context, logger *slog.Logger, path, kind, configured string, streams []ffprobe.Stream) (int, error) {
	if configured != "" {
		index, err := ParseStreamIndex(configured, len(streams))
		if err == nil {
			return index, nil
		}
		logger.Warn("default stream ignored",
			logging.String("kind", kind),
			logging.Error(err),
		)
	}
	if len(streams) <= 1 || o.Chooser == nil {
		return 0, nil
	}
	index, err := o.Chooser.ChooseStream(ctx, path, kind, streams)
	if err != nil {
		if services.IsCancellation(err) || ctx.Err() != nil {
			return 0, cancelled(path, err)
		}
		return 0, err
	}
	if index < 0 || index >= len(streams) {
		return 0, services.Wrap(services.ErrValidation, "probe", "select "+kind, fmt.Sprintf("stream %d out of range 0-%d", index, len(streams)-1), nil)
	}
	return index, nil
}

// ParseStreamIndex validates a configured default stream ordinal.
func ParseStreamIndex(value string, count int) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "probe", "default stream", fmt.Sprintf("%q must be an integer", value), nil)
	}
	if index < 0 || index >= count {
		return 0, services.Wrap(services.ErrConfiguration, "probe", "default stream", fmt.Sprintf("%d out of range 0-%d", index, count-1), nil)
	}
	return index, nil
}

// demuxedBitrate copies the audio stream into a Matroska audio file and
// reads the container bitrate from it. The temporary directory is removed
// on every return path, including cancellation.
func (o *Opener) demuxedBitrate(ctx context.Context, path string, audioIndex int) (int64, error) {
	tempDir, err := os.MkdirTemp(o.TempDir, "batchenc-audio-")
	if err != nil {
		return 0, fmt.Errorf("create demux directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	target := filepath.Join(tempDir, "audio.mka")
	binary := strings.TrimSpace(o.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, "-i", path, "-v", "quiet", "-y", "-sn", "-dn",
		"-map", fmt.Sprintf("0:a:%d", audioIndex), "-acodec", "copy", target)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return 0, cancelled(path, ctx.Err())
		}
		return 0, services.Wrap(services.ErrExternalTool, "probe", "demux audio", path, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))))
	}

	demuxed, err := ffprobe.Inspect(ctx, o.FFprobe, target)
	if err != nil {
		if ctx.Err() != nil {
			return 0, cancelled(path, ctx.Err())
		}
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe demuxed audio", path, err)
	}
	return demuxed.BitRate(), nil
}

func cancelled(path string, err error) error {
	if errors.Is(err, services.ErrCancelled) {
		return err
	}
	return services.Wrap(services.ErrCancelled, "probe", "open", path, err)
}
