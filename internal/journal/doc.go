// Package journal records generation and execution runs in a SQLite
// database under the state directory: one row per run, one per generated
// command, and one per executed command with its exit status.
//
// The journal is history only. Command files stay the interchange format
// between generate and execute; nothing reads the journal to decide what
// to run.
package journal
