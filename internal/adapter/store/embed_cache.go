package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.etcd.io/bbolt"
)

const defaultMemEntries = 4096

// EmbedCache caches embeddings in memory and on disk, keyed by model and
// text so switching embedding models never serves stale vectors.
type EmbedCache struct {
	store *Store
	mem   *lru.Cache[string, []float32]
}

func NewEmbedCache(store *Store, memEntries int) (*EmbedCache, error) {
	if memEntries <= 0 {
		memEntries = defaultMemEntries
	}
	mem, err := lru.New[string, []float32](memEntries)
	if err != nil {
		return nil, err
	}
	return &EmbedCache{store: store, mem: mem}, nil
}

func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached vector for (model, text), consulting memory
// before disk.
func (c *EmbedCache) Get(model, text string) ([]float32, bool) {
	key := cacheKey(model, text)
	if vec, ok := c.mem.Get(key); ok {
		return vec, true
	}

	var vec []float32
	err := c.store.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get([]byte(key))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &vec)
	})
	if err != nil || vec == nil {
		return nil, false
	}

	c.mem.Add(key, vec)
	return vec, true
}

// Put stores the vector on disk and in the memory tier.
func (c *EmbedCache) Put(model, text string, vector []float32) error {
	key := cacheKey(model, text)
	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}

	err = c.store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	c.mem.Add(key, vector)
	return nil
}
