package services_test

import (
	"context"
	"testing"

	"cdlconvert/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "parse")
	ctx = services.WithFile(ctx, "/shots/a.nk")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "parse" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if file, ok := services.FileFromContext(ctx); !ok || file != "/shots/a.nk" {
		t.Fatalf("unexpected file: %v %v", file, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithFile(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.FileFromContext(ctx); ok {
		t.Fatal("expected no file value")
	}
}
