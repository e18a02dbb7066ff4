package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"batchenc/internal/logging"
	"batchenc/internal/services"
)

type line struct {
	text string
	err  error
}

// Prompter asks questions on Out and reads answers from the input given to
// New. The zero value is not usable.
type Prompter struct {
	Out    io.Writer
	Logger *slog.Logger

	// VideoFilters offers the filter catalog for every cut.
	VideoFilters bool
	// AudioFilters offers fades, mute and custom audio filters for every cut.
	AudioFilters bool
	// Custom asks for preview, size limit, modes and CRFs for every cut.
	Custom bool
	// PreferredLanguages orders the suggestion in the audio stream menu.
	PreferredLanguages []string

	lines  chan line
	header *color.Color
	notice *color.Color
}

// New starts reading lines from in.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		Out:    out,
		lines:  make(chan line),
		header: color.New(color.FgGreen),
		notice: color.New(color.FgYellow),
	}
	go p.scan(in)
	return p
}

func (p *Prompter) scan(in io.Reader) {
	defer close(p.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- line{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	p.lines <- line{err: err}
}

// ask prints label and waits for one answer. A blank answer yields def.
// Closed input and context cancellation both end the session with
// services.ErrCancelled.
func (p *Prompter) ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.Out, "%s: ", label)
	}
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return "", services.Wrap(services.ErrCancelled, "prompt", label, "interrupted", ctx.Err())
	case l, ok := <-p.lines:
		if !ok || l.err != nil {
			err := l.err
			if !ok {
				err = io.EOF
			}
			fmt.Fprintln(p.Out)
			return "", services.Wrap(services.ErrCancelled, "prompt", label, "input closed", err)
		}
		answer := strings.TrimSpace(l.text)
		if answer == "" {
			answer = def
		}
		logging.NewComponentLogger(p.Logger, "prompt").Debug("answer",
			logging.String("question", label),
			logging.String("answer", answer),
		)
		return answer, nil
	}
}

// askValid repeats the question until check accepts the answer.
func (p *Prompter) askValid(ctx context.Context, label, def string, check func(string) error) (string, error) {
	for {
		answer, err := p.ask(ctx, label, def)
		if err != nil {
			return "", err
		}
		if err := check(answer); err != nil {
			p.notice.Fprintf(p.Out, "  %v\n", err)
			continue
		}
		return answer, nil
	}
}

func (p *Prompter) confirm(ctx context.Context, label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := p.askValid(ctx, label+" ("+hint+")", "", func(s string) error {
		switch strings.ToLower(s) {
		case "", "y", "yes", "n", "no":
			return nil
		}
		return fmt.Errorf("answer y or n")
	})
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}

// choose shows a numbered menu and returns the zero-based choices.
func (p *Prompter) choose(ctx context.Context, label string, options []string, defaults []int, multiple bool) ([]int, error) {
	for i, option := range options {
		fmt.Fprintf(p.Out, "  %d) %s\n", i+1, option)
	}
	def := make([]string, len(defaults))
	for i, d := range defaults {
		def[i] = strconv.Itoa(d + 1)
	}
	var picked []int
	_, err := p.askValid(ctx, label, strings.Join(def, ","), func(answer string) error {
		picked = picked[:0]
		parts := strings.Split(answer, ",")
		if !multiple && len(parts) > 1 {
			return fmt.Errorf("pick one entry")
		}
		seen := map[int]struct{}{}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 || n > len(options) {
				return fmt.Errorf("%q is not a number between 1 and %d", part, len(options))
			}
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				picked = append(picked, n-1)
			}
		}
		if len(picked) == 0 {
			return fmt.Errorf("pick at least one entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return append([]int(nil), picked...), nil
}
