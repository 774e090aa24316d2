package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"

	"stravagpx/internal/config"
	"stravagpx/internal/fileutil"
	"stravagpx/internal/logging"
)

// ErrLocked is returned by Open when another process holds the document lock.
var ErrLocked = errors.New("configuration document is in use by another stravagpx run")

// Store is the single writer of a configuration document.
type Store struct {
	path   string
	format config.Format
	logger *slog.Logger

	lock *flock.Flock

	mu  sync.Mutex
	doc config.Document
}

// Open locks and loads the document at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	format, err := config.FormatForPath(resolved)
	if err != nil {
		return nil, err
	}

	lockPath := resolved + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, lockPath)
	}

	doc, err := config.Load(resolved)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	logger = logging.NewComponentLogger(logger, "store")
	logger.Debug("loaded configuration document",
		logging.String("path", resolved),
		logging.Int("exported_count", len(doc.Activities)))

	return &Store{
		path:   resolved,
		format: format,
		logger: logger,
		lock:   lock,
		doc:    *doc,
	}, nil
}

// SetLogger replaces the store logger, for callers that can only build their
// logger from the loaded document.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logging.NewComponentLogger(logger, "store")
}

// Document returns a copy of the current document.
func (s *Store) Document() config.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Commit applies mutate to a copy of the document and flushes the result to
// disk. If mutate fails, or the flush fails, neither memory nor disk change.
func (s *Store) Commit(mutate func(*config.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := mutate(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	data, err := config.Encode(next, s.format)
	if err != nil {
		return err
	}
	if err := s.flush(data); err != nil {
		return fmt.Errorf("persist configuration: %w", err)
	}

	s.doc = next
	s.logger.Debug("committed configuration document",
		logging.String("path", s.path),
		logging.Int("exported_count", len(next.Activities)))
	return nil
}

// Close releases the document lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func (s *Store) flush(data []byte) error {
	return fileutil.WriteFileAtomic(s.path, data, 0o600)
}
