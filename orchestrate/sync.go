// Copyright 2025 Atom
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package orchestrate

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// SyncRunner implements Runner with direct per-item completion calls,
// bypassing batch state entirely. Intended for small and test runs. Each
// item still goes through the same merge and checkpoint path as the batch
// orchestrator, preserving resumability.
type SyncRunner struct {
	items       storage.WorkItemRepository
	checkpoints storage.CheckpointRepository
	generator   ai.Generator
	merger      Merger
	config      *Config
	progress    io.Writer
	logger      *slog.Logger
}

var _ Runner = (*SyncRunner)(nil)

// NewSyncRunner creates a synchronous fallback runner. merger may be nil, in
// which case results are recorded on the work items only.
// progress: where to write progress output (typically os.Stderr)
func NewSyncRunner(
	items storage.WorkItemRepository,
	checkpoints storage.CheckpointRepository,
	generator ai.Generator,
	merger Merger,
	config *Config,
	progress io.Writer,
) *SyncRunner {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &SyncRunner{
		items:       items,
		checkpoints: checkpoints,
		generator:   generator,
		merger:      merger,
		config:      config,
		progress:    progress,
		logger:      slog.Default().With("component", "sync-runner"),
	}
}

// Run processes every eligible work item of the stage one at a time.
// Eligibility comes from the item statuses in the repository, so there is no
// batch state to reconcile on resume; the checkpoint is still maintained for
// parity with the batch path.
func (r *SyncRunner) Run(ctx context.Context, stage core.Stage, spec ai.RequestSpec, resume bool) (*Summary, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	cp := &core.Checkpoint{Stage: stage, Phase: core.PhaseRunning}
	if resume {
		loaded, err := r.checkpoints.LoadCheckpoint(ctx, stage)
		if err != nil {
			return nil, err
		}
		if loaded != nil {
			loaded.Phase = core.PhaseRunning
			loaded.Batches = nil
			cp = loaded
		}
	}

	// The sync path cannot poll batches, so submitted leftovers from an
	// interrupted batch run are taken over here as pending work.
	if err := recoverOrphanedItems(ctx, r.items, stage, nil, r.logger); err != nil {
		return nil, err
	}

	pending, err := r.items.GetPendingWorkItems(ctx, stage, r.config.MaxAttempts)
	if err != nil {
		return nil, err
	}
	r.logger.Info("running synchronous fallback", "stage", stage, "pending", len(pending))

	tracker := NewProgressTracker(r.progress, len(pending), r.config.ReportInterval)
	tracker.Start()

	sinceCheckpoint := 0
	for _, item := range pending {
		if err := r.processItem(ctx, stage, item, spec); err != nil {
			return nil, err
		}

		tracker.Increment(1)
		sinceCheckpoint++
		if sinceCheckpoint >= r.config.SyncCheckpointEvery {
			if err := mirrorCheckpointItems(ctx, r.items, r.checkpoints, cp); err != nil {
				return nil, err
			}
			sinceCheckpoint = 0
		}
	}

	tracker.Finish()

	cp.Phase = core.PhaseComplete
	cp.Batches = nil
	if err := mirrorCheckpointItems(ctx, r.items, r.checkpoints, cp); err != nil {
		return nil, err
	}

	return summarize(ctx, r.items, stage, start)
}

// processItem generates one completion, spending the item's remaining
// attempt budget on retries. The merge happens before the completed status
// is persisted, mirroring the batch path.
func (r *SyncRunner) processItem(ctx context.Context, stage core.Stage, item *core.WorkItem, spec ai.RequestSpec) error {
	budget := r.config.MaxAttempts - item.Attempts

	var content string
	err := RetryWithBackoff(ctx, func() error {
		var genErr error
		content, genErr = r.generator.Generate(ctx, item.SourceText, spec)
		return genErr
	}, budget, r.config.RetryBaseDelay, 0)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.logger.Error("generation failed, item exceeded attempt ceiling",
			"id", item.Id,
			"attempts", r.config.MaxAttempts,
			"err", err)
		item.Attempts = r.config.MaxAttempts
		item.Status = core.StatusFailed
		return r.items.UpsertWorkItems(ctx, stage, item)
	}

	item.Status = core.StatusCompleted
	item.Result = content
	if r.merger != nil {
		if err := r.merger.Merge(ctx, stage, []*core.WorkItem{item}); err != nil {
			return err
		}
	}
	return r.items.UpsertWorkItems(ctx, stage, item)
}
