package encode_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"batchenc/internal/config"
	"batchenc/internal/cutlist"
	"batchenc/internal/encode"
	"batchenc/internal/loudnorm"
	"batchenc/internal/services"
	"batchenc/internal/testsupport"
)

const hdTags = "-colorspace bt709 -color_primaries bt709 -color_trc bt709"

func measuredStats(t *testing.T) loudnorm.Stats {
	t.Helper()
	stats, err := loudnorm.ParseStats([]byte(testsupport.LoudnormOutput))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return stats
}

func newBuilder(t *testing.T, duration float64, height int) *encode.Builder {
	t.Helper()
	cut := cutlist.Cut{Source: testsupport.Descriptor(t, "/media/show.mkv", duration, height), OutputName: "Show-OP1"}
	return encode.NewBuilder(cut, measuredStats(t))
}

func vbrSettings(crfs ...int) encode.Settings {
	return encode.Settings{
		Modes:     []encode.Mode{encode.VBR},
		CRFs:      crfs,
		Threads:   4,
		LimitSize: true,
	}
}

func TestCommandsVBRNoFilters(t *testing.T) {
	commands, err := newBuilder(t, 45, 1080).Commands(vbrSettings(12, 24))
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(commands) != 4 {
		t.Fatalf("expected 4 commands, got %d", len(commands))
	}

	wantFirst := `ffmpeg -i "/media/show.mkv" -pass 1 -passlogfile Show-OP1 -map 0:v:0 -map 0:a:0 -c:v libvpx-vp9 ` +
		`-crf 12 -b:v 0 -qcomp 0.7 -cpu-used 4 -g 96 -threads 4 -tile-columns 6 -frame-parallel 0 -auto-alt-ref 1 ` +
		`-lag-in-frames 25 -row-mt 1 -pix_fmt yuv420p ` + hdTags + ` -an -sn -f webm -y /dev/null`
	if commands[0] != wantFirst {
		t.Fatalf("unexpected first pass:\n got %s\nwant %s", commands[0], wantFirst)
	}

	wantSecond := `ffmpeg -i "/media/show.mkv" -pass 2 -passlogfile Show-OP1 -map 0:v:0 -map 0:a:0 -c:v libvpx-vp9 ` +
		`-crf 12 -b:v 0 -qcomp 0.7 -cpu-used 0 -g 96 -threads 4 -af ` + testsupport.MeasuredFilter +
		` -tile-columns 6 -frame-parallel 0 -auto-alt-ref 1 -lag-in-frames 25 -row-mt 1 -pix_fmt yuv420p ` + hdTags +
		` -c:a libopus -b:a 320k -ar 48k -fs 39729375 -map_metadata:g -1 -map_metadata:s:v -1 -map_metadata:s:a -1` +
		` -map_chapters -1 -sn -f webm -y Show-OP1-12.webm`
	if commands[1] != wantSecond {
		t.Fatalf("unexpected second pass:\n got %s\nwant %s", commands[1], wantSecond)
	}
	if !strings.Contains(commands[2], "-crf 24 ") || !strings.HasSuffix(commands[3], " Show-OP1-24.webm") {
		t.Fatalf("unexpected CRF 24 commands:\n%s\n%s", commands[2], commands[3])
	}
	for _, c := range commands {
		if strings.Contains(c, " -vf ") {
			t.Fatalf("unfiltered encode must not carry -vf: %s", c)
		}
	}
}

func TestPlanEmissionOrderAndNames(t *testing.T) {
	settings := encode.Settings{
		Modes:             []encode.Mode{encode.CBR, encode.CQ},
		CRFs:              []int{12, 18},
		Filters:           []encode.VideoFilter{{Name: "filtered", Graph: "hqdn3d=0:0:3:3,gradfun,unsharp"}, {Name: "720p", Graph: "scale=-1:720", TargetHeight: 720}},
		Threads:           2,
		IncludeUnfiltered: true,
		CreatePreview:     true,
	}
	plan, err := newBuilder(t, 90, 1080).Plan(settings)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != settings.CommandCount() {
		t.Fatalf("CommandCount %d disagrees with plan length %d", settings.CommandCount(), len(plan))
	}

	var got []string
	for _, c := range plan {
		switch c.Pass {
		case encode.PreviewPass:
			got = append(got, "preview "+c.Output)
		case encode.FirstPass:
			got = append(got, "first "+string(c.Mode))
		case encode.SecondPass:
			got = append(got, c.Output)
		}
	}
	want := []string{
		"preview Show-OP1.mp4",
		"first CBR",
		"Show-OP1-5600k.webm",
		"Show-OP1-5600k-filtered.webm",
		"Show-OP1-5600k-720p.webm",
		"first CQ",
		"Show-OP1-12-5600k.webm",
		"Show-OP1-12-5600k-filtered.webm",
		"Show-OP1-12-5600k-720p.webm",
		"first CQ",
		"Show-OP1-18-5600k.webm",
		"Show-OP1-18-5600k-filtered.webm",
		"Show-OP1-18-5600k-720p.webm",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order:\n got %v\nwant %v", got, want)
	}

	cbrSecond := plan[2].Line
	if !strings.Contains(cbrSecond, "-b:v 5600k -maxrate 6400k -bufsize 6000k -qcomp 0.3") {
		t.Fatalf("unexpected CBR second pass rate control: %s", cbrSecond)
	}
	if !strings.Contains(plan[1].Line, "-b:v 5600k -maxrate 6400k -qcomp 0.3 ") {
		t.Fatalf("unexpected CBR first pass rate control: %s", plan[1].Line)
	}
	if !strings.Contains(plan[6].Line, "-crf 12 -b:v 5600k -qcomp 0.7") {
		t.Fatalf("unexpected CQ rate control: %s", plan[6].Line)
	}
	if !strings.Contains(plan[3].Line, "-vf hqdn3d=0:0:3:3,gradfun,unsharp -tile-columns") {
		t.Fatalf("expected -vf after -af: %s", plan[3].Line)
	}
	if !strings.HasPrefix(plan[0].Line, `ffmpeg -i "/media/show.mkv" -af loudnorm=`) ||
		!strings.HasSuffix(plan[0].Line, "-vcodec copy -c:a aac -b:a 128k -sn -f mp4 Show-OP1.mp4") {
		t.Fatalf("unexpected preview: %s", plan[0].Line)
	}
	for _, c := range plan {
		if strings.Contains(c.Line, "-fs ") {
			t.Fatalf("limit size is off, found -fs in %s", c.Line)
		}
		if c.Pass != encode.PreviewPass && !strings.Contains(c.Line, "-g 120 ") {
			t.Fatalf("expected keyframe interval 120 for a 90s cut: %s", c.Line)
		}
	}

	seen := map[string]bool{}
	for _, c := range plan {
		if c.Output == "" {
			continue
		}
		if seen[c.Output] {
			t.Fatalf("duplicate output %s", c.Output)
		}
		seen[c.Output] = true
	}
}

func TestDefaultSettingsCommandCount(t *testing.T) {
	cfg := config.Default()
	settings, err := encode.FromConfig(&cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	plan, err := newBuilder(t, 30, 720).Plan(settings)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// VBR: 5 CRFs x (first + unfiltered + 4 filters); CBR: first + 5.
	if len(plan) != 36 {
		t.Fatalf("expected 36 commands, got %d", len(plan))
	}
	if plan[0].Mode != encode.VBR || plan[len(plan)-1].Mode != encode.CBR {
		t.Fatalf("modes must follow configured order")
	}
}

func TestSizeLimitFollowsOutputHeight(t *testing.T) {
	b := newBuilder(t, 45, 1080)
	tests := []struct {
		filter encode.VideoFilter
		want   int64
	}{
		{encode.VideoFilter{}, 39729375},
		{encode.VideoFilter{Name: "720p", Graph: "scale=-1:720", TargetHeight: 720}, 27376875},
		{encode.VideoFilter{Name: "small", Graph: "scale=-1:480,unsharp"}, 19141875},
		{encode.VideoFilter{Name: "sharp", Graph: "unsharp"}, 39729375},
	}
	for _, tt := range tests {
		if got := b.SizeLimit(tt.filter); got != tt.want {
			t.Fatalf("SizeLimit(%+v) = %d, want %d", tt.filter, got, tt.want)
		}
	}
}

func TestAudioChainQuotingAndResample(t *testing.T) {
	src := testsupport.Descriptor(t, "/media/my $how.mkv", 45, 480)
	src.Audio.Channels = 6
	src.Audio.ChannelLayout = "5.1(side)"
	src.AudioBitrate = 192000
	cut := cutlist.Cut{
		Source:      src,
		Start:       "0:05",
		OutputName:  "Clip",
		AudioFilter: encode.JoinAudioFilters(encode.FadeIn("1.5"), encode.Mute("3", "4")),
	}
	b := encode.NewBuilder(cut, measuredStats(t))

	want := "aresample=ochl=stereo," + testsupport.MeasuredFilter + ",afade=d=1.5:curve=exp,volume=enable='between(t,3,4)':volume=0"
	if b.AudioChain() != want {
		t.Fatalf("unexpected chain %q", b.AudioChain())
	}
	second := b.SecondPass(encode.VBR, 20, 4, encode.VideoFilter{}, false)
	if !strings.Contains(second.Line, `-af "`+want+`"`) {
		t.Fatalf("expected double-quoted -af value: %s", second.Line)
	}
	if !strings.HasPrefix(second.Line, `ffmpeg -ss 0:05 -i "/media/my \$how.mkv" -pass 2`) {
		t.Fatalf("unexpected seek rendering: %s", second.Line)
	}
	if !strings.Contains(second.Line, "-b:a 192k") {
		t.Fatalf("expected 192k opus bitrate: %s", second.Line)
	}
	if !strings.Contains(second.Line, "-colorspace smpte170m") {
		t.Fatalf("expected NTSC tags for 480p: %s", second.Line)
	}
	if second.Output != "Clip-20.webm" || second.SizeLimit != 0 {
		t.Fatalf("unexpected output %q limit %d", second.Output, second.SizeLimit)
	}
}

func TestAudioFilterBuilders(t *testing.T) {
	if got := encode.FadeOut("10", "2"); got != "afade=t=out:st=10:d=2" {
		t.Fatalf("unexpected fade out %q", got)
	}
	if got := encode.JoinAudioFilters("", " a ", "  ", "b"); got != "a,b" {
		t.Fatalf("unexpected join %q", got)
	}
}

func TestEffectiveFilters(t *testing.T) {
	named := encode.VideoFilter{Name: "unsharp", Graph: "unsharp"}
	tests := []struct {
		name     string
		settings encode.Settings
		want     []encode.VideoFilter
	}{
		{"empty list", encode.Settings{IncludeUnfiltered: false}, []encode.VideoFilter{{}}},
		{"include unfiltered", encode.Settings{Filters: []encode.VideoFilter{named}, IncludeUnfiltered: true}, []encode.VideoFilter{{}, named}},
		{"already unfiltered", encode.Settings{Filters: []encode.VideoFilter{named, {}}, IncludeUnfiltered: true}, []encode.VideoFilter{named, {}}},
		{"named only", encode.Settings{Filters: []encode.VideoFilter{named}}, []encode.VideoFilter{named}},
	}
	for _, tt := range tests {
		if got := tt.settings.EffectiveFilters(); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: got %+v want %+v", tt.name, got, tt.want)
		}
	}
}

func TestSettingsValidation(t *testing.T) {
	base := vbrSettings(12)
	tests := []struct {
		name   string
		mutate func(*encode.Settings)
	}{
		{"no modes", func(s *encode.Settings) { s.Modes = nil }},
		{"duplicate mode", func(s *encode.Settings) { s.Modes = []encode.Mode{encode.VBR, encode.VBR} }},
		{"no crfs", func(s *encode.Settings) { s.CRFs = nil }},
		{"duplicate crf", func(s *encode.Settings) { s.CRFs = []int{12, 12} }},
		{"threads", func(s *encode.Settings) { s.Threads = 0 }},
		{"numeric filter", func(s *encode.Settings) { s.Filters = []encode.VideoFilter{{Name: "24", Graph: "unsharp"}} }},
		{"duplicate filter", func(s *encode.Settings) {
			s.Filters = []encode.VideoFilter{{Name: "a", Graph: "unsharp"}, {Name: "a", Graph: "gradfun"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base.Clone()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}

	cbrOnly := base.Clone()
	cbrOnly.Modes = []encode.Mode{encode.CBR}
	cbrOnly.CRFs = nil
	if err := cbrOnly.Validate(); err != nil {
		t.Fatalf("CBR without CRFs should validate: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := vbrSettings(12, 15)
	clone := s.Clone()
	clone.CRFs[0] = 30
	clone.Modes[0] = encode.CQ
	if s.CRFs[0] != 12 || s.Modes[0] != encode.VBR {
		t.Fatalf("clone mutated original: %+v", s)
	}
}

func TestCatalogAndCustomFilters(t *testing.T) {
	f, ok := encode.CatalogFilter("filtered-720p")
	if !ok || f.TargetHeight != 720 {
		t.Fatalf("unexpected catalog entry %+v", f)
	}
	if _, ok := encode.CatalogFilter(encode.CustomLabel); ok {
		t.Fatal("custom label is not a filter")
	}
	noFilters, ok := encode.CatalogFilter(config.NoFiltersLabel)
	if !ok || !noFilters.Unfiltered() || noFilters.Name != "" {
		t.Fatalf("unexpected No Filters entry %+v", noFilters)
	}
	custom := encode.CustomFilters("eq=gamma=1.2,,  ,,scale=-1:480,unsharp")
	want := []encode.VideoFilter{{Name: "custom1", Graph: "eq=gamma=1.2"}, {Name: "custom2", Graph: "scale=-1:480,unsharp"}}
	if !reflect.DeepEqual(custom, want) {
		t.Fatalf("unexpected custom filters %+v", custom)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := encode.ParseMode(" cq "); err != nil || m != encode.CQ {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if _, err := encode.ParseMode("abr"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
