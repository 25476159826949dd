package domain

import (
	"sync"

	"papertrade/internal/domain/model"
)

// Journal is the append-only transaction log. Insertion order is
// chronological order; entries are never mutated or pruned.
type Journal struct {
	mu      sync.RWMutex
	entries []model.Transaction
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{entries: make([]model.Transaction, 0)}
}

// Append records one executed trade.
func (j *Journal) Append(tx model.Transaction) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, tx)
}

// All returns a copy of the log, oldest first.
func (j *Journal) All() []model.Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]model.Transaction, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of recorded trades.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Restore replaces the log with entries loaded from storage.
func (j *Journal) Restore(entries []model.Transaction) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = make([]model.Transaction, len(entries))
	copy(j.entries, entries)
}

// Reset clears the log.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = j.entries[:0]
}
