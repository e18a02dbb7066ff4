// Package logging assembles the slog loggers used by batchenc.
//
// It owns the console and JSON handlers, level parsing and output routing,
// and context helpers that tag records with the run ID, source file, output
// name and stage carried on a context. Console records render as a single
// header line followed by indented fields; debug records list every
// attribute verbatim.
package logging
