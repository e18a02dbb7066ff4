package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names what a run did.
type Kind string

const (
	KindGenerate Kind = "generate"
	KindExecute  Kind = "execute"
	KindRun      Kind = "run"
)

// Status is the outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one journal row.
type Run struct {
	ID           string
	Kind         Kind
	Status       Status
	CommandFile  string
	CommandCount int
	FailureCount int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CommandRecord is one generated command.
type CommandRecord struct {
	Position   int
	SourcePath string
	OutputName string
	Pass       string
	OutputFile string
	SizeLimit  int64
	Line       string
}

// Execution is the result of running one command.
type Execution struct {
	Position     int
	Line         string
	ExitCode     int
	Duration     time.Duration
	ErrorMessage string
	FinishedAt   time.Time
}

// BeginRun inserts a running row with a fresh identifier.
func (s *Store) BeginRun(ctx context.Context, kind Kind, commandFile string) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		Kind:        kind,
		Status:      StatusRunning,
		CommandFile: commandFile,
		StartedAt:   time.Now().UTC(),
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, kind, status, command_file, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), string(run.Status), nullableString(commandFile), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, commandCount, failureCount int, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, command_count = ?, failure_count = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(status), commandCount, failureCount, nullableString(message), time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

// RecordCommands stores the generated commands of a run in one transaction.
func (s *Store) RecordCommands(ctx context.Context, runID string, records []CommandRecord) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin commands tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO commands (run_id, position, source_path, output_name, pass, output_file, size_limit, line)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare commands insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			var limit any
			if r.SizeLimit > 0 {
				limit = r.SizeLimit
			}
			if _, err := stmt.ExecContext(ctx, runID, r.Position, nullableString(r.SourcePath), nullableString(r.OutputName),
				nullableString(r.Pass), nullableString(r.OutputFile), limit, r.Line); err != nil {
				return fmt.Errorf("insert command %d: %w", r.Position, err)
			}
		}
		return tx.Commit()
	})
}

// RecordExecution stores the outcome of one executed command.
func (s *Store) RecordExecution(ctx context.Context, runID string, e Execution) error {
	finished := e.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	err := s.exec(ctx,
		`INSERT OR REPLACE INTO executions (run_id, position, line, exit_code, duration_ms, error_message, finished_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, e.Position, e.Line, e.ExitCode, e.Duration.Milliseconds(), nullableString(e.ErrorMessage), finished.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert execution %d: %w", e.Position, err)
	}
	return nil
}

const runColumns = `id, kind, status, command_file, command_count, failure_count, error_message, started_at, finished_at`

// GetRun returns the run with id, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Commands returns the generated commands of a run in order.
func (s *Store) Commands(ctx context.Context, runID string) ([]CommandRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT position, source_path, output_name, pass, output_file, size_limit, line
         FROM commands WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var (
			source, output, pass, outputFile sql.NullString
			limit                            sql.NullInt64
			record                           CommandRecord
		)
		if err := rows.Scan(&record.Position, &source, &output, &pass, &outputFile, &limit, &record.Line); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		record.SourcePath = source.String
		record.OutputName = output.String
		record.Pass = pass.String
		record.OutputFile = outputFile.String
		record.SizeLimit = limit.Int64
		records = append(records, record)
	}
	return records, rows.Err()
}

// Executions returns the execution results of a run in order.
func (s *Store) Executions(ctx context.Context, runID string) ([]Execution, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT position, line, exit_code, duration_ms, error_message, finished_at
         FROM executions WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var results []Execution
	for rows.Next() {
		var (
			e          Execution
			durationMS int64
			message    sql.NullString
			finished   sql.NullString
		)
		if err := rows.Scan(&e.Position, &e.Line, &e.ExitCode, &durationMS, &message, &finished); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.ErrorMessage = message.String
		e.FinishedAt = parseTime(finished)
		results = append(results, e)
	}
	return results, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		kind        string
		status      string
		commandFile sql.NullString
		message     sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&run.ID, &kind, &status, &commandFile, &run.CommandCount, &run.FailureCount,
		&message, &startedRaw, &finishedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Kind = Kind(kind)
	run.Status = Status(status)
	run.CommandFile = commandFile.String
	run.ErrorMessage = message.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	return &run, nil
}
