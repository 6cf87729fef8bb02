// Package cache provides the content-addressed artifact store.
//
// The store is a flat directory of files named by hex-encoded cache key:
// native executables are stored as plain files, bytecode artifact sets as
// tar.gz archives. There is no index file; existence and modification time
// on disk are the only metadata. Keys hash source content + resolved
// compiler path + flags, so a toolchain upgrade or a flag change naturally
// misses.
//
// Every operation here is advisory. A broken cache must never break a run:
// lookup errors degrade to a miss, store errors skip persisting, and both
// are reported at debug level only.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultMaxAge is the retention period for cache entries.
	DefaultMaxAge = 7 * 24 * time.Hour

	// archiveSuffix marks archive-kind entries in the flat namespace.
	archiveSuffix = ".tgz"

	// historyFile is the run journal database, excluded from sweeps.
	historyFile = "history.db"
)

// Kind distinguishes the two artifact layouts an entry can hold.
type Kind int

const (
	// KindExecutable is a single native binary.
	KindExecutable Kind = iota

	// KindArchive is a tar.gz bundle of intermediate files restored as a set.
	KindArchive
)

// Entry is a handle to an existing cache entry.
type Entry struct {
	Key     string
	Kind    Kind
	Path    string
	ModTime time.Time
}

// Store manages the on-disk artifact cache.
type Store struct {
	dir    string
	maxAge time.Duration

	sweepOnce sync.Once
}

// DefaultDir returns the platform cache location for runx.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}

	return filepath.Join(base, "runx"), nil
}

// Open creates a store rooted at dir, creating the directory if needed.
// An empty dir selects DefaultDir. Concurrent opens of the same directory
// are safe: MkdirAll tolerates the directory already existing.
func Open(dir string, maxAge time.Duration) (*Store, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	return &Store{dir: dir, maxAge: maxAge}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// entryPath maps a key and kind to the entry's on-disk name.
func (s *Store) entryPath(key string, kind Kind) string {
	if kind == KindArchive {
		return filepath.Join(s.dir, key+archiveSuffix)
	}

	return filepath.Join(s.dir, key)
}

// Lookup returns a handle for the entry if it exists, is usable for its
// kind, and is not older than the configured max age. Stale entries are
// deleted on the spot and reported as a miss (lazy eviction). Any I/O
// error is also a miss.
func (s *Store) Lookup(key string, kind Kind) (*Entry, bool) {
	path := s.entryPath(key, kind)

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("cache lookup failed", "key", key, "err", err)
		}

		return nil, false
	}

	// An entry exactly at the threshold is still valid
	if time.Since(info.ModTime()) > s.maxAge {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Debug("failed to evict stale cache entry", "key", key, "err", err)
		}

		return nil, false
	}

	if kind == KindExecutable && info.Mode().Perm()&0o111 == 0 {
		log.Debug("cache entry not executable, ignoring", "key", key)
		return nil, false
	}

	return &Entry{
		Key:     key,
		Kind:    kind,
		Path:    path,
		ModTime: info.ModTime(),
	}, true
}

// StoreExecutable persists a single binary under key. The write is atomic:
// content goes to a temp file in the cache directory first, then renames
// into place, so a concurrent Lookup never sees a partial entry.
func (s *Store) StoreExecutable(key, binaryPath string) (*Entry, error) {
	data, err := os.ReadFile(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	path := s.entryPath(key, KindExecutable)
	if err := s.writeAtomic(path, data, 0o755); err != nil {
		return nil, err
	}

	return &Entry{Key: key, Kind: KindExecutable, Path: path, ModTime: time.Now()}, nil
}

// StoreArchive bundles the named files (relative to dir) into one tar.gz
// entry under key, atomically like StoreExecutable.
func (s *Store) StoreArchive(key, dir string, files []string) (*Entry, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to archive")
	}

	data, err := buildArchive(dir, files)
	if err != nil {
		return nil, err
	}

	path := s.entryPath(key, KindArchive)
	if err := s.writeAtomic(path, data, 0o644); err != nil {
		return nil, err
	}

	return &Entry{Key: key, Kind: KindArchive, Path: path, ModTime: time.Now()}, nil
}

// Restore unpacks an archive entry into destDir. Executable entries do not
// need restoring; they run from their cache path directly.
func (s *Store) Restore(entry *Entry, destDir string) error {
	if entry.Kind != KindArchive {
		return fmt.Errorf("cannot restore non-archive entry %s", entry.Key)
	}

	return extractArchive(entry.Path, destDir)
}

// writeAtomic writes data next to path and renames it into place.
func (s *Store) writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set cache entry mode: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache entry: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}

	return nil
}

// Sweep runs the batch age eviction once per process. Later calls in the
// same process are no-ops, and the sweep never runs concurrently with a
// lookup in this process because the orchestrator calls it up front.
func (s *Store) Sweep() {
	s.sweepOnce.Do(func() {
		if err := s.EvictOlderThan(s.maxAge); err != nil {
			log.Debug("cache sweep failed", "err", err)
		}
	})
}

// EvictOlderThan removes every entry whose age exceeds maxAge. Another
// process may be sweeping the same directory, so files vanishing mid-walk
// are tolerated.
func (s *Store) EvictOlderThan(maxAge time.Duration) error {
	return s.evict(func(info os.FileInfo) bool {
		return time.Since(info.ModTime()) > maxAge
	})
}

// EvictAll removes every entry.
func (s *Store) EvictAll() error {
	return s.evict(func(os.FileInfo) bool { return true })
}

func (s *Store) evict(stale func(os.FileInfo) bool) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == historyFile || strings.HasPrefix(name, ".tmp-") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // vanished under a concurrent sweep
		}

		if !stale(info) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			log.Debug("failed to evict cache entry", "name", name, "err", err)
		}
	}

	return nil
}
