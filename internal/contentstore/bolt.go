package contentstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var contentBucket = []byte("content")

// BoltStore is a local file-backed content store. Suitable for single-node
// deployments and tests; the R2 store covers shared deployments.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the store file and ensures the content bucket
// exists.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(contentBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init content bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Put stores the object under its content hash. Re-storing identical content
// overwrites the same key with the same bytes, so Put is idempotent.
func (s *BoltStore) Put(ctx context.Context, v interface{}) (string, error) {
	hash, data, err := Encode(v)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(contentBucket).Put([]byte(hash), data)
	})
	if err != nil {
		return "", fmt.Errorf("store content: %w", err)
	}
	return hash, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
