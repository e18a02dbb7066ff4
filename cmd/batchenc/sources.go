package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"batchenc/internal/config"
	"batchenc/internal/fileutil"
	"batchenc/internal/prompt"
	"batchenc/internal/services"
	"batchenc/internal/textutil"
)

// resolveSources returns the files to plan: the --input values made
// absolute when given, else the names of the files in the working
// directory with an allowed extension. With a prompter the discovered
// files can be narrowed down.
func resolveSources(ctx context.Context, cfg *config.Config, inputs []string, p *prompt.Prompter) ([]string, error) {
	if values := textutil.SplitInputs(inputs); len(values) > 0 {
		paths := make([]string, 0, len(values))
		for _, value := range values {
			path, err := config.ExpandPath(value)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "cli", "input", value, err)
			}
			paths = append(paths, path)
		}
		return paths, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	found, err := fileutil.FindByExtension(dir, cfg.Encoding.AllowedExtensions)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "sources",
			fmt.Sprintf("no %s files in %s", strings.Join(cfg.Encoding.AllowedExtensions, ", "), dir), nil)
	}
	if p == nil {
		return found, nil
	}
	return p.ChooseFiles(ctx, found)
}
