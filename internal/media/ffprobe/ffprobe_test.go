package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{Index: 0, CodecType: "video", Height: 1080},
			{Index: 1, CodecType: "audio", BitRate: "256000"},
			{Index: 2, CodecType: "subtitle"},
			{Index: 3, CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	audio := result.AudioStreams()
	if audio[1].Index != 3 {
		t.Fatalf("expected second audio ordinal to map to container index 3, got %d", audio[1].Index)
	}
	if audio[0].BitsPerSecond() != 256000 || audio[1].BitsPerSecond() != 0 {
		t.Fatalf("unexpected stream bitrates: %d %d", audio[0].BitsPerSecond(), audio[1].BitsPerSecond())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestParseColorAndChannelFields(t *testing.T) {
	payload := []byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
			 "color_space": "bt709", "color_primaries": "bt709", "color_transfer": "bt709"},
			{"index": 1, "codec_type": "audio", "codec_name": "flac", "channels": 6, "channel_layout": "5.1(side)",
			 "tags": {"language": "jpn"}}
		],
		"format": {"duration": "90.0"}
	}`)
	result, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	video := result.VideoStreams()[0]
	if video.ColorSpace != "bt709" || video.ColorTransfer != "bt709" {
		t.Fatalf("unexpected color fields: %+v", video)
	}
	audio := result.AudioStreams()[0]
	if audio.Channels != 6 || audio.ChannelLayout != "5.1(side)" {
		t.Fatalf("unexpected channel fields: %+v", audio)
	}
	if got := audio.Label(); got != "flac 5.1(side) jpn" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := video.Label(); got != "h264 1920x1080" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
