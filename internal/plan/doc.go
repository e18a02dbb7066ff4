// Package plan turns source files into an ordered list of encode commands.
//
// Files are handled one at a time: open and probe the source, collect a
// cut list until it validates, then measure and build each cut. A file
// that cannot be probed, or a cut whose loudness cannot be measured, is
// reported and skipped without stopping the run. Cancellation keeps the
// files already planned, releases the output names of the file in
// progress, and returns services.ErrCancelled.
package plan
