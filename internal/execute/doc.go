// Package execute runs command lines through the system shell, strictly in
// order. A failing command is recorded and the next one still runs; only
// cancellation stops the sequence early.
package execute
