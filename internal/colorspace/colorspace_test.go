package colorspace

import (
	"strings"
	"testing"
)

func TestResolveCarriesOverSourceTags(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want Profile
	}{
		{"bt709 at 480 stays HD", Metadata{ColorSpace: "bt709", Height: 480}, HD},
		{"primaries only", Metadata{ColorPrimaries: "smpte170m", Height: 1080}, NTSC},
		{"gamma28 transfer", Metadata{ColorTransfer: "gamma28", Height: 1080}, PAL},
		{"bt470bg space", Metadata{ColorSpace: "bt470bg", Height: 720}, PAL},
		{"first match wins", Metadata{ColorSpace: "bt470bg", ColorTransfer: "bt709"}, HD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.meta); got != tt.want {
				t.Fatalf("Resolve(%+v) = %s, want %s", tt.meta, got.Name, tt.want.Name)
			}
		})
	}
}

func TestResolveInfersFromHeight(t *testing.T) {
	tests := []struct {
		height int
		want   Profile
	}{
		{2160, HD},
		{720, HD},
		{719, PAL},
		{576, PAL},
		{575, NTSC},
		{480, NTSC},
		{0, NTSC},
	}
	for _, tt := range tests {
		meta := Metadata{ColorSpace: "unknown", ColorPrimaries: "unknown", Height: tt.height}
		if got := Resolve(meta); got != tt.want {
			t.Fatalf("height %d: got %s want %s", tt.height, got.Name, tt.want.Name)
		}
	}
}

func TestProfileArgs(t *testing.T) {
	if got := strings.Join(PAL.Args(), " "); got != "-colorspace bt470bg -color_primaries bt470bg -color_trc gamma28" {
		t.Fatalf("unexpected args %q", got)
	}
	if HD.String() != "-colorspace bt709 -color_primaries bt709 -color_trc bt709" {
		t.Fatalf("unexpected string %q", HD.String())
	}
}
