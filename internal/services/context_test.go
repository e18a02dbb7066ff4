package services_test

import (
	"context"
	"testing"

	"batchenc/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "loudnorm")
	ctx = services.WithSourceFile(ctx, "show.mkv")
	ctx = services.WithOutputName(ctx, "Show-OP1")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "loudnorm" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if file, ok := services.SourceFileFromContext(ctx); !ok || file != "show.mkv" {
		t.Fatalf("unexpected source file: %v %v", file, ok)
	}
	if name, ok := services.OutputNameFromContext(ctx); !ok || name != "Show-OP1" {
		t.Fatalf("unexpected output name: %v %v", name, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
