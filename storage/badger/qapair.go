package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// QAPairRepository implements storage.QAPairRepository for BadgerDB.
type QAPairRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.QAPairRepository = (*QAPairRepository)(nil)

// NewQAPairRepository creates a new QAPairRepository.
func NewQAPairRepository(backend *Backend) (*QAPairRepository, error) {
	idSeq, err := backend.GetSequence(qaPairSeq)
	if err != nil {
		return nil, err
	}

	return &QAPairRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the order sequence.
func (r *QAPairRepository) Close() error {
	return r.idSeq.Release()
}

// PutQAPairs upserts one or more Q&A pairs. New pairs are appended to the
// insertion-order index; existing ones are replaced in place.
func (r *QAPairRepository) PutQAPairs(ctx context.Context, pairs ...*core.QAPair) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, pair := range pairs {
			if pair.Id == "" {
				return core.ErrEmptyID
			}

			key := makeQAPairKey(pair.Id)
			_, err := tx.Get(key)
			isNew := err == badger.ErrKeyNotFound
			if err != nil && !isNew {
				return err
			}

			now := time.Now().UTC()
			if pair.InsertedAt.IsZero() {
				pair.InsertedAt = now
			}
			pair.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalQAPair(pair)); err != nil {
				return err
			}

			if isNew {
				seq, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				if err := tx.Set(qaPairOrderKey(seq), storage.MarshalID(pair.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// GetQAPair retrieves a single Q&A pair by ID.
func (r *QAPairRepository) GetQAPair(ctx context.Context, id core.ID) (*core.QAPair, error) {
	var result *core.QAPair
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeQAPairKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalQAPair(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// GetAllQAPairs retrieves every Q&A pair in insertion order.
func (r *QAPairRepository) GetAllQAPairs(ctx context.Context) ([]*core.QAPair, error) {
	var results []*core.QAPair
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(qaPairOrderPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var pairID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				pairID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeQAPairKey(pairID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			if err := item.Value(func(val []byte) error {
				pair, err := storage.UnmarshalQAPair(val)
				if err != nil {
					return err
				}
				results = append(results, pair)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)

	return results, err
}
