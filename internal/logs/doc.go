// Package logs reads the log files batchenc keeps in its state directory:
// the structured log and the ffmpeg output captured by quiet executions.
package logs
