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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// resultFetchAttempts bounds retries of the result download for a batch the
// provider already reported completed.
const resultFetchAttempts = 5

// Orchestrator implements Runner on top of an asynchronous batch API.
//
// Pending work items are partitioned into batches in insertion order,
// submitted, and polled to resolution with exponential backoff. A resumed
// run reconciles in-flight batches found in the checkpoint before submitting
// anything new, so at most one generation of batches is outstanding at a
// time. Batch results are merged all-or-nothing relative to the checkpoint
// write.
//
// An Orchestrator runs one stage at a time; Run is not safe for concurrent
// use.
type Orchestrator struct {
	items       storage.WorkItemRepository
	checkpoints storage.CheckpointRepository
	client      ai.BatchClient
	merger      Merger
	config      *Config
	progress    io.Writer
	logger      *slog.Logger

	tracker *ProgressTracker
}

var _ Runner = (*Orchestrator)(nil)

// NewOrchestrator creates a batch orchestrator. merger may be nil, in which
// case results are recorded on the work items only.
// progress: where to write progress output (typically os.Stderr)
func NewOrchestrator(
	items storage.WorkItemRepository,
	checkpoints storage.CheckpointRepository,
	client ai.BatchClient,
	merger Merger,
	config *Config,
	progress io.Writer,
) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Orchestrator{
		items:       items,
		checkpoints: checkpoints,
		client:      client,
		merger:      merger,
		config:      config,
		progress:    progress,
		logger:      slog.Default().With("component", "orchestrator"),
	}
}

// Run processes every eligible work item of the stage through the batch
// lifecycle and returns a summary of the outcome.
func (o *Orchestrator) Run(ctx context.Context, stage core.Stage, spec ai.RequestSpec, resume bool) (*Summary, error) {
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	cp, err := o.loadOrCreateCheckpoint(ctx, stage, resume)
	if err != nil {
		return nil, err
	}

	// Items submitted to a batch the checkpoint never recorded are stranded:
	// reconciliation skips them and GetPendingWorkItems filters them out.
	// Revert them to pending before anything else.
	inFlight := make(map[string]bool, len(cp.Batches))
	for i := range cp.Batches {
		if !cp.Batches[i].Status.Terminal() {
			inFlight[cp.Batches[i].BatchId] = true
		}
	}
	if err := recoverOrphanedItems(ctx, o.items, stage, inFlight, o.logger); err != nil {
		return nil, err
	}

	if err := o.startTracker(ctx, stage); err != nil {
		return nil, err
	}

	// Reconcile in-flight batches from the checkpoint before submitting
	// anything new.
	for i := range cp.Batches {
		if cp.Batches[i].Status.Terminal() {
			continue
		}
		o.logger.Info("reconciling in-flight batch",
			"stage", stage,
			"batch_id", cp.Batches[i].BatchId,
			"members", len(cp.Batches[i].MemberIds))
		if err := o.resolveBatch(ctx, stage, &cp.Batches[i], cp); err != nil {
			return nil, err
		}
	}

	// Each pass either completes items or increments their attempt counts,
	// so the pending set shrinks toward empty or the ceiling.
	for {
		pending, err := o.items.GetPendingWorkItems(ctx, stage, o.config.MaxAttempts)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			break
		}

		partitions := Partition(pending, o.config.MaxBatchSize)
		o.logger.Info("submitting batches",
			"stage", stage,
			"pending", len(pending),
			"batches", len(partitions))

		submitted := make([]int, 0, len(partitions))
		for _, members := range partitions {
			idx, err := o.submitBatch(ctx, stage, members, spec, cp)
			if err != nil {
				return nil, err
			}
			if idx >= 0 {
				submitted = append(submitted, idx)
			}
		}

		for _, idx := range submitted {
			if err := o.resolveBatch(ctx, stage, &cp.Batches[idx], cp); err != nil {
				return nil, err
			}
		}
	}

	o.tracker.Finish()

	cp.Phase = core.PhaseComplete
	cp.Batches = nil
	if err := mirrorCheckpointItems(ctx, o.items, o.checkpoints, cp); err != nil {
		return nil, err
	}

	return summarize(ctx, o.items, stage, start)
}

func (o *Orchestrator) loadOrCreateCheckpoint(ctx context.Context, stage core.Stage, resume bool) (*core.Checkpoint, error) {
	if resume {
		cp, err := o.checkpoints.LoadCheckpoint(ctx, stage)
		if err != nil {
			return nil, err
		}
		if cp != nil {
			o.logger.Info("resuming from checkpoint",
				"stage", stage,
				"phase", cp.Phase,
				"batches", len(cp.Batches),
				"updated_at", cp.UpdatedAt)
			cp.Phase = core.PhaseRunning
			return cp, nil
		}
		o.logger.Info("no checkpoint found, starting fresh", "stage", stage)
	}

	return &core.Checkpoint{Stage: stage, Phase: core.PhaseRunning}, nil
}

func (o *Orchestrator) startTracker(ctx context.Context, stage core.Stage) error {
	all, err := o.items.GetAllWorkItems(ctx, stage)
	if err != nil {
		return err
	}

	remaining := 0
	for _, item := range all {
		if item.Status != core.StatusCompleted && item.Status != core.StatusFailed {
			remaining++
		}
	}

	o.tracker = NewProgressTracker(o.progress, remaining, o.config.ReportInterval)
	o.tracker.Start()
	return nil
}

// submitBatch submits one partition and appends the batch to the checkpoint.
// Returns the index of the new batch within cp.Batches, or -1 when the
// submission was rejected and the members were reverted.
func (o *Orchestrator) submitBatch(ctx context.Context, stage core.Stage, members []*core.WorkItem, spec ai.RequestSpec, cp *core.Checkpoint) (int, error) {
	requests := make([]ai.Request, len(members))
	for i, item := range members {
		requests[i] = ai.Request{CustomID: item.Id, Prompt: item.SourceText}
	}

	batchID, err := o.client.SubmitBatch(ctx, requests, spec)
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}

		// A rejected batch is discarded, never retried as-is. Members
		// revert to pending and are re-batched on the next pass, up to
		// the attempt ceiling.
		o.logger.Error("batch submission rejected",
			"stage", stage,
			"members", len(members),
			"err", err)
		for _, item := range members {
			o.revertItem(item)
		}
		if err := o.items.UpsertWorkItems(ctx, stage, members...); err != nil {
			return -1, err
		}
		if err := mirrorCheckpointItems(ctx, o.items, o.checkpoints, cp); err != nil {
			return -1, err
		}
		return -1, nil
	}

	memberIds := make([]core.ID, len(members))
	for i, item := range members {
		memberIds[i] = item.Id
		item.Status = core.StatusSubmitted
		item.BatchId = batchID
	}
	if err := o.items.UpsertWorkItems(ctx, stage, members...); err != nil {
		return -1, err
	}

	cp.Batches = append(cp.Batches, core.Batch{
		BatchId:     batchID,
		MemberIds:   memberIds,
		Status:      core.BatchSubmitted,
		SubmittedAt: time.Now().UTC(),
	})
	if err := mirrorCheckpointItems(ctx, o.items, o.checkpoints, cp); err != nil {
		return -1, err
	}

	o.logger.Info("batch submitted", "stage", stage, "batch_id", batchID, "members", len(members))
	return len(cp.Batches) - 1, nil
}

// resolveBatch polls one batch to a terminal status. Poll failures never
// advance state; the poll is retried with exponential backoff until the
// wall-clock budget runs out, after which the batch is treated as expired.
func (o *Orchestrator) resolveBatch(ctx context.Context, stage core.Stage, b *core.Batch, cp *core.Checkpoint) error {
	deadline := time.Now().Add(o.config.PollTimeout)
	delay := o.config.PollBaseDelay

	for {
		status, err := o.client.BatchStatus(ctx, b.BatchId)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Warn("status poll failed", "batch_id", b.BatchId, "err", err)
			if time.Now().After(deadline) {
				return o.expireBatch(ctx, stage, b, cp)
			}
			if err := sleepContext(ctx, delay); err != nil {
				return err
			}
			delay = nextDelay(delay, o.config.PollMaxDelay)
			continue
		}

		switch status {
		case core.BatchCompleted:
			return o.completeBatch(ctx, stage, b, cp)

		case core.BatchFailed:
			o.logger.Error("batch failed", "batch_id", b.BatchId)
			return o.revertBatch(ctx, stage, b, cp, core.BatchFailed)

		case core.BatchExpired:
			o.logger.Warn("batch expired at provider", "batch_id", b.BatchId)
			return o.revertBatch(ctx, stage, b, cp, core.BatchExpired)

		default:
			b.Status = core.BatchInProgress
			if time.Now().After(deadline) {
				return o.expireBatch(ctx, stage, b, cp)
			}
			o.logger.Debug("batch in progress", "batch_id", b.BatchId, "next_poll", delay)
			if err := sleepContext(ctx, delay); err != nil {
				return err
			}
			delay = nextDelay(delay, o.config.PollMaxDelay)
		}
	}
}

// expireBatch gives up on a batch that outlived the wall-clock budget. The
// remote job is cancelled best-effort and the members revert to pending.
func (o *Orchestrator) expireBatch(ctx context.Context, stage core.Stage, b *core.Batch, cp *core.Checkpoint) error {
	o.logger.Warn("batch timed out", "batch_id", b.BatchId, "timeout", o.config.PollTimeout)

	if err := o.client.CancelBatch(ctx, b.BatchId); err != nil {
		o.logger.Warn("failed to cancel batch", "batch_id", b.BatchId, "err", err)
	}

	return o.revertBatch(ctx, stage, b, cp, core.BatchExpired)
}

// revertBatch marks a batch terminal without results. Members still
// submitted to this batch revert to pending with an incremented attempt
// count; members already resolved by an earlier run are untouched, so a
// replayed resolution never double-counts an attempt.
func (o *Orchestrator) revertBatch(ctx context.Context, stage core.Stage, b *core.Batch, cp *core.Checkpoint, status core.BatchStatus) error {
	members, err := o.loadMembers(ctx, stage, b)
	if err != nil {
		return err
	}

	reverted := make([]*core.WorkItem, 0, len(members))
	for _, item := range members {
		if item.Status == core.StatusSubmitted && item.BatchId == b.BatchId {
			o.revertItem(item)
			reverted = append(reverted, item)
		}
	}
	if len(reverted) > 0 {
		if err := o.items.UpsertWorkItems(ctx, stage, reverted...); err != nil {
			return err
		}
	}

	b.Status = status
	return mirrorCheckpointItems(ctx, o.items, o.checkpoints, cp)
}

// completeBatch fetches the results of a provider-completed batch, merges
// them, and marks the batch terminal. The merge happens before any completed
// status is persisted: all members or none, relative to the checkpoint
// write.
func (o *Orchestrator) completeBatch(ctx context.Context, stage core.Stage, b *core.Batch, cp *core.Checkpoint) error {
	var results map[core.ID]ai.Result
	err := RetryWithBackoff(ctx, func() error {
		var fetchErr error
		results, fetchErr = o.client.BatchResults(ctx, b.BatchId)
		return fetchErr
	}, resultFetchAttempts, o.config.PollBaseDelay, o.config.PollMaxDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Error("failed to fetch batch results", "batch_id", b.BatchId, "err", err)
		return o.revertBatch(ctx, stage, b, cp, core.BatchExpired)
	}

	members, err := o.loadMembers(ctx, stage, b)
	if err != nil {
		return err
	}

	completed := make([]*core.WorkItem, 0, len(members))
	resolved := make([]*core.WorkItem, 0, len(members))
	for _, item := range members {
		if item.Status != core.StatusSubmitted || item.BatchId != b.BatchId {
			// Already resolved by an earlier run of this batch.
			continue
		}
		resolved = append(resolved, item)

		res, ok := results[item.Id]
		switch {
		case !ok:
			o.logger.Warn("no result for work item", "id", item.Id, "batch_id", b.BatchId)
			o.revertItem(item)
		case res.Err != nil:
			o.logger.Warn("work item generation failed", "id", item.Id, "err", res.Err)
			o.revertItem(item)
		default:
			item.Status = core.StatusCompleted
			item.Result = res.Content
			completed = append(completed, item)
		}
	}

	if len(completed) > 0 && o.merger != nil {
		if err := o.merger.Merge(ctx, stage, completed); err != nil {
			return fmt.Errorf("failed to merge batch %s: %w", b.BatchId, err)
		}
	}

	if len(resolved) > 0 {
		if err := o.items.UpsertWorkItems(ctx, stage, resolved...); err != nil {
			return err
		}
	}

	b.Status = core.BatchCompleted
	if err := mirrorCheckpointItems(ctx, o.items, o.checkpoints, cp); err != nil {
		return err
	}

	o.logger.Info("batch completed",
		"stage", stage,
		"batch_id", b.BatchId,
		"completed", len(completed),
		"reverted", len(resolved)-len(completed))
	o.tracker.Increment(len(completed))
	return nil
}

// loadMembers fetches a batch's member items from the repository. Missing
// members are skipped; they were deleted out from under the run.
func (o *Orchestrator) loadMembers(ctx context.Context, stage core.Stage, b *core.Batch) ([]*core.WorkItem, error) {
	members := make([]*core.WorkItem, 0, len(b.MemberIds))
	for _, id := range b.MemberIds {
		item, err := o.items.GetWorkItem(ctx, stage, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				o.logger.Warn("batch member not found", "id", id, "batch_id", b.BatchId)
				continue
			}
			return nil, err
		}
		members = append(members, item)
	}
	return members, nil
}

// revertItem returns a failed item to the pending pool, or marks it
// permanently failed once it reaches the attempt ceiling.
func (o *Orchestrator) revertItem(item *core.WorkItem) {
	item.Attempts++
	item.BatchId = ""
	if item.Attempts >= o.config.MaxAttempts {
		item.Status = core.StatusFailed
		o.logger.Warn("work item exceeded attempt ceiling",
			"id", item.Id,
			"attempts", item.Attempts)
	} else {
		item.Status = core.StatusPending
	}
}
