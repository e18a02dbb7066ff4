package prompt

import (
	"context"
	"fmt"
	"strings"

	"batchenc/internal/language"
	"batchenc/internal/media/audio"
	"batchenc/internal/media/ffprobe"
	"batchenc/internal/source"
)

// ChooseStream lists the streams of one kind and asks which to encode. The
// audio menu suggests the best track in a preferred language.
func (p *Prompter) ChooseStream(ctx context.Context, path, kind string, streams []ffprobe.Stream) (int, error) {
	p.header.Fprintf(p.Out, "\nSource File: %s\n", path)
	options := make([]string, len(streams))
	for i, s := range streams {
		options[i] = describeStream(s)
	}
	suggested := 0
	if kind == source.KindAudio {
		suggested = audio.Suggest(streams, p.PreferredLanguages)
	}
	picked, err := p.choose(ctx, strings.ToUpper(kind[:1])+kind[1:]+" Stream", options, []int{suggested}, false)
	if err != nil {
		return 0, err
	}
	return picked[0], nil
}

func describeStream(s ffprobe.Stream) string {
	parts := []string{s.CodecName}
	switch {
	case s.Height > 0:
		parts = append(parts, fmt.Sprintf("%dx%d", s.Width, s.Height))
	case s.ChannelLayout != "":
		parts = append(parts, s.ChannelLayout)
	case s.Channels > 0:
		parts = append(parts, fmt.Sprintf("%d channels", s.Channels))
	}
	if s.Tags.Language != "" {
		parts = append(parts, language.DisplayName(s.Tags.Language))
	}
	if s.Tags.Title != "" {
		parts = append(parts, fmt.Sprintf("%q", s.Tags.Title))
	}
	return strings.Join(parts, " ")
}
