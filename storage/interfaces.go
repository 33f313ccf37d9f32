package storage

import (
	"context"

	"github.com/nitin-atom/finetuning-customer-support/core"
)

// ArticleRepository provides operations for managing scraped articles.
type ArticleRepository interface {
	// PutArticles upserts one or more articles. A new id is appended to the
	// insertion order; an existing id is replaced in place and keeps its
	// original position. Sets InsertedAt if not already set.
	PutArticles(ctx context.Context, articles ...*core.Article) error

	// GetArticle retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id core.ID) (*core.Article, error)

	// GetAllArticles retrieves every article in insertion order.
	GetAllArticles(ctx context.Context) ([]*core.Article, error)

	// Close releases resources held by the repository.
	Close() error
}

// QAPairRepository provides operations for managing Q&A pairs.
type QAPairRepository interface {
	// PutQAPairs upserts one or more pairs. A new id is appended to the
	// insertion order; an existing id is replaced in place. Sets InsertedAt
	// if not already set and updates UpdatedAt.
	PutQAPairs(ctx context.Context, pairs ...*core.QAPair) error

	// GetQAPair retrieves a single pair by ID.
	// Returns ErrNotFound if the pair doesn't exist.
	GetQAPair(ctx context.Context, id core.ID) (*core.QAPair, error)

	// GetAllQAPairs retrieves every pair in insertion order.
	GetAllQAPairs(ctx context.Context) ([]*core.QAPair, error)

	// Close releases resources held by the repository.
	Close() error
}

// WorkItemRepository provides operations for a stage's generation work
// items. Ids are unique within a stage: upserting an existing id replaces
// the record in place, never duplicates it.
type WorkItemRepository interface {
	// UpsertWorkItems writes one or more work items for a stage. New ids
	// are appended to the insertion order; existing ids keep their
	// position. All writes of a single call commit in one transaction.
	UpsertWorkItems(ctx context.Context, stage core.Stage, items ...*core.WorkItem) error

	// GetWorkItem retrieves a single work item by stage and ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetWorkItem(ctx context.Context, stage core.Stage, id core.ID) (*core.WorkItem, error)

	// GetAllWorkItems retrieves a stage's work items in insertion order.
	GetAllWorkItems(ctx context.Context, stage core.Stage) ([]*core.WorkItem, error)

	// GetPendingWorkItems retrieves, in insertion order, the items still
	// eligible for submission: status pending and attempts below the
	// ceiling.
	GetPendingWorkItems(ctx context.Context, stage core.Stage, maxAttempts int) ([]*core.WorkItem, error)

	// DeleteWorkItems removes a stage's work items by ID. Missing ids are
	// ignored.
	DeleteWorkItems(ctx context.Context, stage core.Stage, ids ...core.ID) error

	// Close releases resources held by the repository.
	Close() error
}

// CheckpointRepository persists per-stage progress snapshots. Saves must be
// atomic: a crash mid-save must not corrupt the previous valid checkpoint.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for its stage, overwriting any
	// previous one.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a stage.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, stage core.Stage) (*core.Checkpoint, error)

	// Close releases resources held by the repository.
	Close() error
}
