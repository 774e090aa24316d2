package store

import (
	"errors"
	"fmt"
	"sort"

	"stravagpx/internal/config"
)

// ErrAlreadyExported is returned when recording an id the ledger already holds.
var ErrAlreadyExported = errors.New("activity already recorded in ledger")

// Export is one ledger entry together with its id.
type Export struct {
	ID int64
	config.ExportedActivity
}

// Exported reports whether the activity id is in the ledger.
func (s *Store) Exported(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Activities.Has(id)
}

// RecordExport adds a ledger entry and commits the document. Entries are
// never replaced.
func (s *Store) RecordExport(id int64, entry config.ExportedActivity) error {
	return s.Commit(func(doc *config.Document) error {
		if doc.Activities.Has(id) {
			return fmt.Errorf("record activity %d: %w", id, ErrAlreadyExported)
		}
		doc.Activities[config.ActivityID(id)] = entry
		return nil
	})
}

// Exports lists ledger entries, most recent start date first.
func (s *Store) Exports() []Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	exports := make([]Export, 0, len(s.doc.Activities))
	for id, entry := range s.doc.Activities {
		exports = append(exports, Export{ID: int64(id), ExportedActivity: entry})
	}
	sort.Slice(exports, func(i, j int) bool {
		if exports[i].StartDate.Equal(exports[j].StartDate) {
			return exports[i].ID > exports[j].ID
		}
		return exports[i].StartDate.After(exports[j].StartDate)
	})
	return exports
}

// SetAuthToken replaces the stored OAuth token and commits the document.
func (s *Store) SetAuthToken(token config.AuthToken) error {
	return s.Commit(func(doc *config.Document) error {
		doc.API.AuthToken = &token
		return nil
	})
}
