package ratetable

import "testing"

func TestKeyframeIntervalSteps(t *testing.T) {
	tests := []struct {
		duration float64
		want     int
	}{
		{0.5, 96},
		{59, 96},
		{59.999, 96},
		{60, 120},
		{119, 120},
		{120, 240},
		{1800, 240},
	}
	for _, tt := range tests {
		if got := KeyframeInterval(tt.duration); got != tt.want {
			t.Fatalf("KeyframeInterval(%v) = %d, want %d", tt.duration, got, tt.want)
		}
	}
}

func TestAudioBitrate(t *testing.T) {
	if got := AudioBitrate(320000); got != "192k" {
		t.Fatalf("320000 should stay at 192k, got %s", got)
	}
	if got := AudioBitrate(320001); got != "320k" {
		t.Fatalf("320001 should step up to 320k, got %s", got)
	}
	if got := AudioBitrate(0); got != "192k" {
		t.Fatalf("unknown bitrate should use 192k, got %s", got)
	}
}

func TestCBRTiers(t *testing.T) {
	tests := []struct {
		height  int
		bitrate string
		max     string
	}{
		{2160, "5600k", "6400k"},
		{1080, "5600k", "6400k"},
		{1079, "3700k", "4200k"},
		{720, "3700k", "4200k"},
		{576, "3200k", "3700k"},
		{480, "2400k", "3200k"},
		{0, "2400k", "3200k"},
	}
	for _, tt := range tests {
		if got := CBRBitrate(tt.height); got != tt.bitrate {
			t.Fatalf("CBRBitrate(%d) = %s, want %s", tt.height, got, tt.bitrate)
		}
		if got := CBRMaxBitrate(tt.height); got != tt.max {
			t.Fatalf("CBRMaxBitrate(%d) = %s, want %s", tt.height, got, tt.max)
		}
	}
}

func TestCBRTiersMonotonic(t *testing.T) {
	kbps := func(s string) int {
		n := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				break
			}
			n = n*10 + int(r-'0')
		}
		return n
	}
	prevRate, prevMax := 0, 0
	for h := 0; h <= 2200; h += 8 {
		rate, max := kbps(CBRBitrate(h)), kbps(CBRMaxBitrate(h))
		if rate < prevRate || max < prevMax {
			t.Fatalf("tier decreased at height %d", h)
		}
		if max < rate {
			t.Fatalf("max below target at height %d", h)
		}
		prevRate, prevMax = rate, max
	}
}

func TestFileSizeLimit(t *testing.T) {
	// (1080*6100 + 475000) * 90 / 8
	if got := FileSizeLimit(1080, 90); got != 79458750 {
		t.Fatalf("unexpected limit %d", got)
	}
	// (480*6100 + 475000) * 45 / 8 = 19141875
	if got := FileSizeLimit(480, 45); got != 19141875 {
		t.Fatalf("unexpected limit %d", got)
	}
	// (720*6100 + 475000) * 12.5 / 8 = 7604687.5, rounded up
	if got := FileSizeLimit(720, 12.5); got != 7604688 {
		t.Fatalf("unexpected limit %d", got)
	}
	if FormatBytes(60800) != "60800" {
		t.Fatal("unexpected formatting")
	}
}
