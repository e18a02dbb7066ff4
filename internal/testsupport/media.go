package testsupport

import (
	"fmt"
	"testing"

	"batchenc/internal/media/ffprobe"
	"batchenc/internal/source"
)

// LoudnormOutput mimics the tail of an ffmpeg loudnorm first pass.
const LoudnormOutput = `[Parsed_loudnorm_0 @ 0x55d5c8f0a2c0]
{
	"input_i" : "-27.61",
	"input_tp" : "-4.47",
	"input_lra" : "18.06",
	"input_thresh" : "-39.20",
	"output_i" : "-16.58",
	"output_tp" : "-1.00",
	"output_lra" : "14.78",
	"output_thresh" : "-27.71",
	"normalization_type" : "dynamic",
	"target_offset" : "0.58"
}`

// MeasuredFilter is the second-pass filter built from LoudnormOutput.
const MeasuredFilter = "loudnorm=I=-16:LRA=20:TP=-1:dual_mono=true:linear=true:measured_I=-27.61:measured_LRA=18.06:measured_TP=-4.47:measured_thresh=-39.20:offset=0.58"

// ProbeJSON renders an ffprobe payload with one video stream of the given
// height and one stereo audio stream. An empty audioBitRate omits the
// stream bit_rate field, as Matroska sources do.
func ProbeJSON(duration float64, height int, audioBitRate string) string {
	bitRate := ""
	if audioBitRate != "" {
		bitRate = fmt.Sprintf(`, "bit_rate": %q`, audioBitRate)
	}
	return fmt.Sprintf(`{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "width": %d, "height": %d},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2, "channel_layout": "stereo"%s}
  ],
  "format": {"duration": "%.3f", "format_name": "matroska,webm"}
}`, height*16/9, height, bitRate, duration)
}

// DemuxedAudioJSON renders the probe of a demuxed audio file.
func DemuxedAudioJSON(bitRate string) string {
	return fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"audio"}],"format":{"bit_rate":%q}}`, bitRate)
}

// Descriptor builds an opened source without running ffprobe. The audio
// stream reports 448 kb/s.
func Descriptor(t testing.TB, path string, duration float64, height int) *source.Descriptor {
	t.Helper()
	result, err := ffprobe.Parse([]byte(ProbeJSON(duration, height, "448000")))
	if err != nil {
		t.Fatalf("parse probe fixture: %v", err)
	}
	video := result.VideoStreams()[0]
	audio := result.AudioStreams()[0]
	return &source.Descriptor{
		Path:         path,
		Probe:        result,
		Video:        video,
		Audio:        audio,
		AudioBitrate: audio.BitsPerSecond(),
	}
}
