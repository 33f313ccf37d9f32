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


package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/config"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/orchestrate"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// Pipeline wires the stage drivers to their repositories and the AI
// provider. One Pipeline serves all five stage commands.
type Pipeline struct {
	articles    storage.ArticleRepository
	pairs       storage.QAPairRepository
	items       storage.WorkItemRepository
	checkpoints storage.CheckpointRepository
	provider    ai.AIProvider
	config      *config.Config
	progress    io.Writer
	logger      *slog.Logger
}

// New creates a pipeline.
// progress: where to write progress output (typically os.Stderr)
func New(
	articles storage.ArticleRepository,
	pairs storage.QAPairRepository,
	items storage.WorkItemRepository,
	checkpoints storage.CheckpointRepository,
	provider ai.AIProvider,
	cfg *config.Config,
	progress io.Writer,
) *Pipeline {
	if progress == nil {
		progress = io.Discard
	}

	return &Pipeline{
		articles:    articles,
		pairs:       pairs,
		items:       items,
		checkpoints: checkpoints,
		provider:    provider,
		config:      cfg,
		progress:    progress,
		logger:      slog.Default().With("component", "pipeline"),
	}
}

// RunOptions are the per-run CLI knobs shared by the generation stages.
type RunOptions struct {
	// Limit caps the number of work items processed. 0 means no limit.
	Limit int

	// Resume loads the existing checkpoint and keeps item statuses
	// instead of starting the stage fresh.
	Resume bool

	// Sync uses the direct per-item path instead of batch submission.
	Sync bool
}

// runner picks the batch or synchronous strategy for a stage run.
func (p *Pipeline) runner(merger orchestrate.Merger, sync bool) orchestrate.Runner {
	cfg := p.config.Orchestrate()
	if sync {
		return orchestrate.NewSyncRunner(p.items, p.checkpoints, p.provider.Generator(), merger, cfg, p.progress)
	}
	return orchestrate.NewOrchestrator(p.items, p.checkpoints, p.provider.BatchClient(), merger, cfg, p.progress)
}

// seedWorkItems prepares a stage's work item set. A fresh run clears the
// stage and seeds everything pending; a resumed run keeps existing items and
// their statuses, adding only seeds not seen before.
func (p *Pipeline) seedWorkItems(ctx context.Context, stage core.Stage, seeds []*core.WorkItem, resume bool) error {
	if !resume {
		existing, err := p.items.GetAllWorkItems(ctx, stage)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			ids := make([]core.ID, len(existing))
			for i, item := range existing {
				ids[i] = item.Id
			}
			if err := p.items.DeleteWorkItems(ctx, stage, ids...); err != nil {
				return err
			}
		}
		return p.items.UpsertWorkItems(ctx, stage, seeds...)
	}

	missing := make([]*core.WorkItem, 0, len(seeds))
	for _, seed := range seeds {
		_, err := p.items.GetWorkItem(ctx, stage, seed.Id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				missing = append(missing, seed)
				continue
			}
			return err
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return p.items.UpsertWorkItems(ctx, stage, missing...)
}
