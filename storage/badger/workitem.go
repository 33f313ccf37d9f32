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


package badger

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// WorkItemRepository implements storage.WorkItemRepository for BadgerDB.
// Each stage gets its own insertion-order sequence, created lazily.
type WorkItemRepository struct {
	backend *Backend

	mu   sync.Mutex
	seqs map[core.Stage]*badger.Sequence
}

var _ storage.WorkItemRepository = (*WorkItemRepository)(nil)

// NewWorkItemRepository creates a new WorkItemRepository.
func NewWorkItemRepository(backend *Backend) (*WorkItemRepository, error) {
	return &WorkItemRepository{
		backend: backend,
		seqs:    make(map[core.Stage]*badger.Sequence),
	}, nil
}

// Close releases all stage sequences.
func (r *WorkItemRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, seq := range r.seqs {
		if err := seq.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.seqs = make(map[core.Stage]*badger.Sequence)
	return firstErr
}

// stageSeq returns the insertion-order sequence for a stage, creating it on
// first use.
func (r *WorkItemRepository) stageSeq(stage core.Stage) (*badger.Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq, ok := r.seqs[stage]; ok {
		return seq, nil
	}
	seq, err := r.backend.GetSequence(workItemSeqName(stage))
	if err != nil {
		return nil, err
	}
	r.seqs[stage] = seq
	return seq, nil
}

// UpsertWorkItems writes one or more work items for a stage in a single
// transaction. New ids are appended to the insertion-order index; existing
// ids keep their position and are replaced in place.
func (r *WorkItemRepository) UpsertWorkItems(ctx context.Context, stage core.Stage, items ...*core.WorkItem) error {
	seq, err := r.stageSeq(stage)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if item.Id == "" {
				return core.ErrEmptyID
			}
			item.Stage = stage

			key := makeWorkItemKey(stage, item.Id)
			_, err := tx.Get(key)
			isNew := err == badger.ErrKeyNotFound
			if err != nil && !isNew {
				return err
			}

			now := time.Now().UTC()
			if item.InsertedAt.IsZero() {
				item.InsertedAt = now
			}
			item.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalWorkItem(item)); err != nil {
				return err
			}

			if isNew {
				n, err := seq.Next()
				if err != nil {
					return err
				}
				if err := tx.Set(workItemOrderKey(stage, n), storage.MarshalID(item.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// GetWorkItem retrieves a single work item by stage and ID.
func (r *WorkItemRepository) GetWorkItem(ctx context.Context, stage core.Stage, id core.ID) (*core.WorkItem, error) {
	var result *core.WorkItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeWorkItemKey(stage, id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalWorkItem(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// GetAllWorkItems retrieves a stage's work items in insertion order.
func (r *WorkItemRepository) GetAllWorkItems(ctx context.Context, stage core.Stage) ([]*core.WorkItem, error) {
	var results []*core.WorkItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := workItemOrderScanPrefix(stage)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			rec, err := tx.Get(makeWorkItemKey(stage, itemID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			if err := rec.Value(func(val []byte) error {
				item, err := storage.UnmarshalWorkItem(val)
				if err != nil {
					return err
				}
				results = append(results, item)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)

	return results, err
}

// GetPendingWorkItems retrieves items eligible for submission: status
// pending with attempts below the ceiling. Retryable failures revert to
// pending when the orchestrator processes them, so pending is the single
// eligible status.
func (r *WorkItemRepository) GetPendingWorkItems(ctx context.Context, stage core.Stage, maxAttempts int) ([]*core.WorkItem, error) {
	all, err := r.GetAllWorkItems(ctx, stage)
	if err != nil {
		return nil, err
	}

	pending := make([]*core.WorkItem, 0, len(all))
	for _, item := range all {
		if item.Status == core.StatusPending && item.Attempts < maxAttempts {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

// DeleteWorkItems removes a stage's work items by ID, along with their
// insertion-order index entries, so a later upsert of the same id is
// appended cleanly.
func (r *WorkItemRepository) DeleteWorkItems(ctx context.Context, stage core.Stage, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[core.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeWorkItemKey(stage, id)); err != nil {
				return err
			}
		}

		prefix := workItemOrderScanPrefix(stage)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			if _, ok := drop[itemID]; ok {
				if err := tx.Delete(iter.Item().KeyCopy(nil)); err != nil {
					return err
				}
			}
		}
		// Badger panics on Commit while an iterator is open; Close is
		// idempotent, so the deferred Close still covers error paths.
		iter.Close()
		return tx.Commit()
	}, true)
}
