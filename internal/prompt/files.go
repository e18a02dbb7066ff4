package prompt

import (
	"context"
	"path/filepath"
)

// ChooseFiles asks which of the discovered source files to include. Every
// file is selected by default.
func (p *Prompter) ChooseFiles(ctx context.Context, files []string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	p.header.Fprintln(p.Out, "\nSource Files")
	labels := make([]string, len(files))
	defaults := make([]int, len(files))
	for i, f := range files {
		labels[i] = filepath.Base(f)
		defaults[i] = i
	}
	picked, err := p.choose(ctx, "Include", labels, defaults, true)
	if err != nil {
		return nil, err
	}
	chosen := make([]string, len(picked))
	for i, index := range picked {
		chosen[i] = files[index]
	}
	return chosen, nil
}
