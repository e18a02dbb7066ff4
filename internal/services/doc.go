// Package services defines shared utilities consumed by the planning,
// analysis, and execution packages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source files, output names, and
//     stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     validation, external tool, configuration, or cancellation problems.
//
// Use these helpers when wiring new stage logic so error reporting stays
// uniform across the run.
package services
