// Package preflight provides readiness checks for the tools and
// directories batchenc depends on.
//
// These checks run in two contexts:
//   - generate and run call RunAll before probing any source so a missing
//     ffmpeg or an unwritable state directory fails fast.
//   - execute and run call CheckFreeSpace with the summed size limits of
//     the pending commands before starting the first encode.
//
// The deps command renders every result as a table.
package preflight
