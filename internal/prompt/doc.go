// Package prompt implements the interactive terminal flow: cut lists per
// source file, per-cut video filter and encoding choices, audio filter
// fragments and stream selection. Answers are read line by line so the
// same flow can be driven from a pipe.
package prompt
