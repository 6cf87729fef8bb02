package cache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// bucketRuns is the BoltDB bucket holding the run journal
const bucketRuns = "runs"

// Run is one recorded invocation.
type Run struct {
	Source    string        `json:"source"`
	Language  string        `json:"language"`
	Status    string        `json:"status"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	CacheHit  bool          `json:"cache_hit"`
	Timestamp time.Time     `json:"timestamp"`
}

// History is a journal of past runs, kept in a BoltDB file inside the
// cache directory. Like the artifact store it is advisory: callers record
// best-effort and ignore failures beyond a debug note.
type History struct {
	db *bbolt.DB
}

// OpenHistory opens (or creates) the journal inside dir.
func OpenHistory(dir string) (*History, error) {
	path := filepath.Join(dir, historyFile)

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the journal database.
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}

	return nil
}

// Record appends one run, keyed by its timestamp so iteration is
// chronological.
func (h *History) Record(run Run) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(run.Timestamp.UnixNano()))

	return h.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put(key, data)
	})
}

// Recent returns up to n runs, newest first.
func (h *History) Recent(n int) ([]Run, error) {
	var runs []Run

	err := h.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()

		for k, v := c.Last(); k != nil && len(runs) < n; k, v = c.Prev() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				continue // skip corrupt records
			}

			runs = append(runs, run)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Clear drops the whole journal.
func (h *History) Clear() error {
	return h.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketRuns)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketRuns))
		return err
	})
}
