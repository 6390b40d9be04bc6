package runstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/arloliu/lockstep"
	"github.com/arloliu/lockstep/types"
)

// BucketRuns is the bucket holding run records.
const BucketRuns = "runs"

// openTimeout bounds the wait for the database file lock.
const openTimeout = time.Second

// ListOptions filters and limits List.
type ListOptions struct {
	// Scenario keeps only runs of the named scenario when not empty.
	Scenario string

	// Limit caps the number of records returned; 0 means no limit.
	Limit int
}

// Store is a bbolt-backed run store. It is safe for concurrent use.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the store at path, creating parent directories.
//
// Parameters:
//   - path: Database file path
//
// Returns:
//   - *Store: An open store
//   - error: If the file cannot be opened or initialized
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize run store: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores rec, replacing any record with the same id.
func (s *Store) Save(rec Record) error {
	if rec.ID == "" {
		return errors.New("runstore: record id cannot be empty")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", rec.ID, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BucketRuns)).Put([]byte(rec.ID), data)
	})
}

// SaveRun stores a run and returns the saved record.
func (s *Store) SaveRun(run *lockstep.Run) (Record, error) {
	rec := FromRun(run)
	if err := s.Save(rec); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// Get returns the record with the given id.
//
// Returns:
//   - Record: The stored record
//   - error: wraps types.ErrRunNotFound if there is no such record
func (s *Store) Get(id string) (Record, error) {
	var rec Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(BucketRuns)).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s", types.ErrRunNotFound, id)
		}

		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// List returns records newest first.
func (s *Store) List(opts ListOptions) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketRuns)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to decode run %s: %w", k, err)
			}

			if opts.Scenario != "" && rec.ScenarioName != opts.Scenario {
				continue
			}

			records = append(records, rec)
			if opts.Limit > 0 && len(records) >= opts.Limit {
				return nil
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BucketRuns)).Delete([]byte(id))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
