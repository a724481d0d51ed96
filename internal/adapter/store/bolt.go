package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

var (
	bucketArticles = []byte("articles")
	bucketStats    = []byte("stats")
	keyStats       = []byte("corpus_stats")
)

// BoltStore persists normalized articles between the ingest and build
// phases, plus the corpus stats of the last build.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketArticles, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// PutArticles stores articles keyed by ID in one transaction.
func (s *BoltStore) PutArticles(articles []domain.Article) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketArticles)
		for _, art := range articles {
			if art.ID == "" {
				return fmt.Errorf("article with empty id (title %q)", art.Title)
			}
			data, err := json.Marshal(art)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(art.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListArticles returns all stored articles in key order, which keeps
// the chunk emission order of a rebuild deterministic.
func (s *BoltStore) ListArticles() ([]domain.Article, error) {
	var articles []domain.Article
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketArticles).ForEach(func(k, v []byte) error {
			var art domain.Article
			if err := json.Unmarshal(v, &art); err != nil {
				return fmt.Errorf("corrupt article record %s: %w", k, err)
			}
			articles = append(articles, art)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *BoltStore) CountArticles() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketArticles).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *BoltStore) GetStats() (domain.CorpusStats, error) {
	var stats domain.CorpusStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.CorpusStats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
