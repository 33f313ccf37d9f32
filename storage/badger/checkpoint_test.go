package badger

import (
	"context"
	"testing"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

func TestCheckpointRoundtrip(t *testing.T) {
	itemRepo, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cpRepo.Close(); itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	cp := &core.Checkpoint{
		Stage: core.StageQuestions,
		Phase: core.PhaseRunning,
		Items: []core.ItemState{
			{Id: "a", Status: core.StatusCompleted, Attempts: 1},
			{Id: "b", Status: core.StatusSubmitted, Attempts: 0},
		},
		Batches: []core.Batch{
			{BatchId: "batch-1", MemberIds: []core.ID{"b"}, Status: core.BatchInProgress},
		},
	}
	if err := cpRepo.SaveCheckpoint(ctx, cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	loaded, err := cpRepo.LoadCheckpoint(ctx, core.StageQuestions)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a checkpoint, got nil")
	}
	if loaded.Phase != core.PhaseRunning {
		t.Fatalf("Expected running phase, got %q", loaded.Phase)
	}
	if len(loaded.Items) != 2 || len(loaded.Batches) != 1 {
		t.Fatalf("Checkpoint shape lost: %d items, %d batches", len(loaded.Items), len(loaded.Batches))
	}
	if loaded.Batches[0].BatchId != "batch-1" {
		t.Fatalf("Expected batch-1, got %q", loaded.Batches[0].BatchId)
	}
	if loaded.Batches[0].Status != core.BatchInProgress {
		t.Fatalf("Expected in_progress batch, got %v", loaded.Batches[0].Status)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Fatal("Expected UpdatedAt to be set on save")
	}
}

func TestCheckpointOverwrite(t *testing.T) {
	itemRepo, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cpRepo.Close(); itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first := &core.Checkpoint{Stage: core.StageAnswers, Phase: core.PhaseRunning}
	if err := cpRepo.SaveCheckpoint(ctx, first); err != nil {
		t.Fatalf("Failed to save first checkpoint: %v", err)
	}

	second := &core.Checkpoint{Stage: core.StageAnswers, Phase: core.PhaseComplete}
	if err := cpRepo.SaveCheckpoint(ctx, second); err != nil {
		t.Fatalf("Failed to save second checkpoint: %v", err)
	}

	loaded, err := cpRepo.LoadCheckpoint(ctx, core.StageAnswers)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if loaded.Phase != core.PhaseComplete {
		t.Fatalf("Expected latest checkpoint, got phase %q", loaded.Phase)
	}
}

func TestCheckpointAbsent(t *testing.T) {
	itemRepo, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cpRepo.Close(); itemRepo.Close(); backend.Close() }()

	loaded, err := cpRepo.LoadCheckpoint(context.Background(), core.StageQuestions)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("Expected nil checkpoint for untouched stage, got %+v", loaded)
	}
}
