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
	"log/slog"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// Runner drives a stage's pending work items to completion. The two
// implementations, Orchestrator (batch submission) and SyncRunner (direct
// per-item calls), are interchangeable; stage drivers pick one by
// configuration.
type Runner interface {
	// Run processes every eligible work item of the stage and returns a
	// summary of the outcome. With resume set, an existing checkpoint is
	// loaded and any in-flight state reconciled first; otherwise the run
	// starts from the repository's item statuses alone.
	Run(ctx context.Context, stage core.Stage, spec ai.RequestSpec, resume bool) (*Summary, error)
}

// Merger folds completed work item results into the record repository.
// Merge is called with the full set of completed members of one batch (or a
// single item on the synchronous path) before their completed status is
// persisted; implementations must be idempotent, since a crash between merge
// and checkpoint write replays the merge on resume.
type Merger interface {
	Merge(ctx context.Context, stage core.Stage, items []*core.WorkItem) error
}

// MergeFunc adapts a function to the Merger interface.
type MergeFunc func(ctx context.Context, stage core.Stage, items []*core.WorkItem) error

// Merge implements Merger.
func (f MergeFunc) Merge(ctx context.Context, stage core.Stage, items []*core.WorkItem) error {
	return f(ctx, stage, items)
}

// Summary is the outcome of a stage run.
type Summary struct {
	Stage core.Stage

	// Total is the number of work items in the stage.
	Total int

	// Completed is the number of items with a merged result.
	Completed int

	// Pending is the number of items still eligible for another run.
	Pending int

	// Failed lists items that exceeded the attempt ceiling, in insertion
	// order.
	Failed []core.ID

	Elapsed time.Duration
}

// CeilingError returns a CeilingExceededError when any item permanently
// failed, nil otherwise.
func (s *Summary) CeilingError() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return &CeilingExceededError{Stage: s.Stage, Ids: s.Failed}
}

// recoverOrphanedItems reverts submitted items whose batch is unknown to the
// checkpoint. Such items exist when a run was interrupted between the
// submission write and the checkpoint write; the batch's outcome was never
// provider-confirmed, so the interrupted attempt is not counted.
func recoverOrphanedItems(ctx context.Context, items storage.WorkItemRepository, stage core.Stage, inFlight map[string]bool, logger *slog.Logger) error {
	all, err := items.GetAllWorkItems(ctx, stage)
	if err != nil {
		return err
	}

	var orphans []*core.WorkItem
	for _, item := range all {
		if item.Status == core.StatusSubmitted && !inFlight[item.BatchId] {
			logger.Warn("recovering orphaned work item",
				"stage", stage,
				"id", item.Id,
				"batch_id", item.BatchId)
			item.Status = core.StatusPending
			item.BatchId = ""
			orphans = append(orphans, item)
		}
	}
	if len(orphans) == 0 {
		return nil
	}
	return items.UpsertWorkItems(ctx, stage, orphans...)
}

// mirrorCheckpointItems rebuilds the checkpoint's item state mirror from the
// repository and saves the checkpoint.
func mirrorCheckpointItems(ctx context.Context, items storage.WorkItemRepository, checkpoints storage.CheckpointRepository, cp *core.Checkpoint) error {
	all, err := items.GetAllWorkItems(ctx, cp.Stage)
	if err != nil {
		return err
	}

	states := make([]core.ItemState, len(all))
	for i, item := range all {
		states[i] = core.ItemState{
			Id:       item.Id,
			Status:   item.Status,
			Attempts: item.Attempts,
		}
	}
	cp.Items = states

	return checkpoints.SaveCheckpoint(ctx, cp)
}

// summarize builds the run summary from the repository's final item states.
func summarize(ctx context.Context, items storage.WorkItemRepository, stage core.Stage, start time.Time) (*Summary, error) {
	all, err := items.GetAllWorkItems(ctx, stage)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Stage:   stage,
		Total:   len(all),
		Elapsed: time.Since(start),
	}
	for _, item := range all {
		switch item.Status {
		case core.StatusCompleted:
			summary.Completed++
		case core.StatusFailed:
			summary.Failed = append(summary.Failed, item.Id)
		default:
			summary.Pending++
		}
	}
	return summary, nil
}
