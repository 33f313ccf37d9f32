package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/nitin-atom/finetuning-customer-support/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	idSeq, err := backend.GetSequence(articleSeq)
	if err != nil {
		return nil, err
	}

	return &ArticleRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the order sequence.
func (r *ArticleRepository) Close() error {
	return r.idSeq.Release()
}

// PutArticles upserts one or more articles. New articles are appended to
// the insertion-order index; existing ones are replaced in place.
func (r *ArticleRepository) PutArticles(ctx context.Context, articles ...*core.Article) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			if article.Id == "" {
				return core.ErrEmptyID
			}

			key := makeArticleKey(article.Id)
			_, err := tx.Get(key)
			isNew := err == badger.ErrKeyNotFound
			if err != nil && !isNew {
				return err
			}

			if article.InsertedAt.IsZero() {
				article.InsertedAt = time.Now().UTC()
			}

			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}

			if isNew {
				seq, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				if err := tx.Set(articleOrderKey(seq), storage.MarshalID(article.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by ID.
func (r *ArticleRepository) GetArticle(ctx context.Context, id core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalArticle(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// GetAllArticles retrieves every article in insertion order.
func (r *ArticleRepository) GetAllArticles(ctx context.Context) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(articleOrderPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeArticleKey(articleID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			if err := item.Value(func(val []byte) error {
				article, err := storage.UnmarshalArticle(val)
				if err != nil {
					return err
				}
				results = append(results, article)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)

	return results, err
}
