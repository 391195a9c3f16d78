// Package contentstore provides content-addressed storage for comment and
// article metadata: the retrieval key is derived from the content itself, so
// storing the same content twice is a no-op and the returned hash is stable.
package contentstore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"
)

// Store persists an object and returns its content hash. The hash is what
// callers submit with the ledger transaction; this core never reads content
// back out.
type Store interface {
	Put(ctx context.Context, v interface{}) (hash string, err error)
	Close() error
}

// Encode marshals v to its canonical stored form and computes its hash.
// Marshaling is deterministic for struct types (fixed field order), which
// makes the hash deterministic per content.
func Encode(v interface{}) (hash string, data []byte, err error) {
	data, err = json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("marshal content: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), data, nil
}
