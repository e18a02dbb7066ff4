package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"batchenc/internal/journal"
	"batchenc/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, journal.KindGenerate, cfg.Paths.CommandFile)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" || run.Status != journal.StatusRunning {
		t.Fatalf("unexpected run: %+v", run)
	}

	records := []journal.CommandRecord{
		{Position: 0, SourcePath: "/media/show.mkv", OutputName: "Show-OP1", Pass: "first pass", Line: "ffmpeg -pass 1"},
		{Position: 1, SourcePath: "/media/show.mkv", OutputName: "Show-OP1", Pass: "second pass", OutputFile: "Show-OP1-12.webm", SizeLimit: 39729375, Line: "ffmpeg -pass 2"},
	}
	if err := store.RecordCommands(ctx, run.ID, records); err != nil {
		t.Fatalf("RecordCommands: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID, journal.StatusCompleted, len(records), 0, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched == nil || fetched.Status != journal.StatusCompleted || fetched.CommandCount != 2 {
		t.Fatalf("unexpected fetched run: %+v", fetched)
	}
	if fetched.FinishedAt.IsZero() || fetched.Duration() < 0 {
		t.Fatalf("expected finish time, got %+v", fetched)
	}

	stored, err := store.Commands(ctx, run.ID)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if len(stored) != 2 || stored[1].OutputFile != "Show-OP1-12.webm" || stored[1].SizeLimit != 39729375 {
		t.Fatalf("unexpected commands: %+v", stored)
	}
	if stored[0].OutputFile != "" || stored[0].SizeLimit != 0 {
		t.Fatalf("expected empty optional fields for first pass: %+v", stored[0])
	}
}

func TestExecutionsAndListing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	first, err := store.BeginRun(ctx, journal.KindGenerate, "")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := store.BeginRun(ctx, journal.KindExecute, cfg.Paths.CommandFile)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	executions := []journal.Execution{
		{Position: 0, Line: "true", ExitCode: 0, Duration: 1500 * time.Millisecond},
		{Position: 1, Line: "false", ExitCode: 1, Duration: 20 * time.Millisecond, ErrorMessage: "exit status 1"},
	}
	for _, e := range executions {
		if err := store.RecordExecution(ctx, second.ID, e); err != nil {
			t.Fatalf("RecordExecution: %v", err)
		}
	}
	if err := store.FinishRun(ctx, second.ID, journal.StatusFailed, 2, 1, errors.New("1 of 2 commands failed")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.Executions(ctx, second.ID)
	if err != nil {
		t.Fatalf("Executions: %v", err)
	}
	if len(got) != 2 || got[0].Duration != 1500*time.Millisecond || got[1].ExitCode != 1 || got[1].ErrorMessage != "exit status 1" {
		t.Fatalf("unexpected executions: %+v", got)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest run first, got %+v", runs)
	}
	if runs[0].FailureCount != 1 || runs[0].ErrorMessage == "" {
		t.Fatalf("unexpected failure bookkeeping: %+v", runs[0])
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected one run, got %d", len(limited))
	}
}

func TestGetRunMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	run, err := store.GetRun(context.Background(), "missing")
	if err != nil || run != nil {
		t.Fatalf("expected nil run without error, got %+v %v", run, err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.BeginRun(context.Background(), journal.KindRun, ""); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenJournal(t, cfg)
	runs, err := reopened.ListRuns(context.Background(), 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected persisted run, got %v %v", runs, err)
	}
}
