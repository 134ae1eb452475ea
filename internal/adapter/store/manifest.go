package store

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"
)

// FileRecord remembers what an ingest run stored for one corpus file.
type FileRecord struct {
	Hash       string    `json:"hash"`
	Passages   int       `json:"passages"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Manifest tracks which corpus files have been ingested so re-runs skip
// unchanged files.
type Manifest struct {
	store *Store
}

func NewManifest(store *Store) *Manifest {
	return &Manifest{store: store}
}

// Get returns the record for path, or nil if the file was never ingested.
func (m *Manifest) Get(path string) (*FileRecord, error) {
	var rec *FileRecord
	err := m.store.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketManifest).Get([]byte(path))
		if data == nil {
			return nil
		}
		rec = &FileRecord{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *Manifest) Put(path string, rec FileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return m.store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketManifest).Put([]byte(path), data)
	})
}

// Clear drops every record, forcing the next ingest to process all files.
func (m *Manifest) Clear() error {
	return m.store.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketManifest); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketManifest)
		return err
	})
}
