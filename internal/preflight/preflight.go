package preflight

import (
	"context"
	"fmt"
	"strings"

	"batchenc/internal/config"
	"batchenc/internal/deps"
	"batchenc/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the external tools and the directories batchenc writes to.
// outputDir is where the encoded files land.
func RunAll(ctx context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range deps.WithVersions(ctx, CheckSystemDeps(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional}
		switch {
		case !status.Available:
			result.Detail = status.Detail
		case status.Version != "":
			result.Detail = fmt.Sprintf("%s (%s)", status.Command, status.Version)
		default:
			result.Detail = status.Command
		}
		results = append(results, result)
	}

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if strings.TrimSpace(cfg.Paths.TempDir) != "" {
		results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir))
	}
	if outputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	}
	return results
}

// Err folds failed results into one error tagged services.ErrConfiguration.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(failed, "; "), nil)
}
