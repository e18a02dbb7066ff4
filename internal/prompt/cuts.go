package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"batchenc/internal/cutlist"
	"batchenc/internal/encode"
	"batchenc/internal/source"
	"batchenc/internal/textutil"
)

// Collect asks for the start times, end times and output names of a source
// file. After a rejection the violations are listed before asking again.
func (p *Prompter) Collect(ctx context.Context, src *source.Descriptor, previous *cutlist.Result) (cutlist.Batch, error) {
	if previous == nil {
		p.header.Fprintf(p.Out, "\nSource File: %s\n", src.Path)
		fmt.Fprintf(p.Out, "Duration: %s\n", time.Duration(src.Duration()*float64(time.Second)).Round(time.Millisecond))
	} else {
		p.notice.Fprintln(p.Out, "Cut list rejected:")
		for _, v := range previous.Violations {
			fmt.Fprintf(p.Out, "  - %s\n", v)
		}
	}

	starts, err := p.askValid(ctx, "Start Times", "", validTimes)
	if err != nil {
		return cutlist.Batch{}, err
	}
	ends, err := p.askValid(ctx, "End Times", "", validTimes)
	if err != nil {
		return cutlist.Batch{}, err
	}
	names, err := p.ask(ctx, "Output Names", "")
	if err != nil {
		return cutlist.Batch{}, err
	}
	batch := cutlist.ParseBatch(starts, ends, names)

	if p.AudioFilters {
		batch.AudioFilters = make([]string, len(batch.Names))
		for i, name := range batch.Names {
			fragment, err := p.audioFilters(ctx, name)
			if err != nil {
				return cutlist.Batch{}, err
			}
			batch.AudioFilters[i] = fragment
		}
	}
	return batch, nil
}

func validTimes(answer string) error {
	for _, value := range textutil.SplitList(answer, ",") {
		if value != "" && !cutlist.ValidTime(value) {
			return fmt.Errorf("%q is not HH:MM:SS, MM:SS or seconds", value)
		}
	}
	return nil
}

func validPosition(answer string) error {
	if answer != "" && !cutlist.ValidTime(answer) {
		return fmt.Errorf("%q is not HH:MM:SS, MM:SS or seconds", answer)
	}
	return nil
}

var audioMenu = []string{"Fade In", "Fade Out", "Mute", "Custom", "Done"}

// audioFilters runs the audio filter menu for one cut. Each entry keeps
// the last answer given for it.
func (p *Prompter) audioFilters(ctx context.Context, name string) (string, error) {
	var fadeIn, fadeOut, mute, custom string
	for {
		p.header.Fprintf(p.Out, "\nOutput Name: %s\n", name)
		picked, err := p.choose(ctx, "Audio Filters", audioMenu, []int{len(audioMenu) - 1}, false)
		if err != nil {
			return "", err
		}
		switch audioMenu[picked[0]] {
		case "Fade In":
			length, err := p.askValid(ctx, "Fade In Length", "0", validPosition)
			if err != nil {
				return "", err
			}
			fadeIn = ""
			if positive(length) {
				fadeIn = encode.FadeIn(length)
			}
		case "Fade Out":
			start, err := p.askValid(ctx, "Fade Out Start", "0", validPosition)
			if err != nil {
				return "", err
			}
			length, err := p.askValid(ctx, "Fade Out Length", "0", validPosition)
			if err != nil {
				return "", err
			}
			fadeOut = ""
			if positive(length) {
				fadeOut = encode.FadeOut(start, length)
			}
		case "Mute":
			start, err := p.askValid(ctx, "Mute Start", "0", validPosition)
			if err != nil {
				return "", err
			}
			end, err := p.askValid(ctx, "Mute End", "0", validPosition)
			if err != nil {
				return "", err
			}
			mute = ""
			if positive(start) || positive(end) {
				mute = encode.Mute(start, end)
			}
		case "Custom":
			answer, err := p.ask(ctx, "Custom Audio Filters", custom)
			if err != nil {
				return "", err
			}
			custom = strings.TrimSpace(answer)
		default:
			return encode.JoinAudioFilters(fadeIn, fadeOut, mute, custom), nil
		}
	}
}

func positive(value string) bool {
	s, err := cutlist.Seconds(value)
	return err == nil && s > 0
}
