package journal

import (
	"context"
	"sync"
)

type memoryJournal struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory creates a concurrency-safe in-memory journal, used when no
// database is configured and in unit tests.
func NewMemory() Journal {
	return &memoryJournal{}
}

func (j *memoryJournal) Record(_ context.Context, entries ...Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entries...)
	return nil
}

func (j *memoryJournal) ByAccount(_ context.Context, accountID string) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var result []Entry
	for _, e := range j.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}
	return result, nil
}
