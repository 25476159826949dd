package domain

import (
	"testing"

	"papertrade/internal/domain/model"
)

func TestJournalAppendKeepsOrder(t *testing.T) {
	j := NewJournal()
	j.Append(model.Transaction{ID: "a", Timestamp: 1})
	j.Append(model.Transaction{ID: "b", Timestamp: 2})

	all := j.All()
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("expected [a b] in order, got %v", all)
	}

	// All returns a copy
	all[0].ID = "mutated"
	if j.All()[0].ID != "a" {
		t.Error("mutating the returned slice leaked into the journal")
	}
}

func TestJournalRestoreAndReset(t *testing.T) {
	j := NewJournal()
	j.Restore([]model.Transaction{{ID: "x"}, {ID: "y"}})
	if j.Len() != 2 {
		t.Fatalf("expected 2 entries after restore, got %d", j.Len())
	}

	j.Reset()
	if j.Len() != 0 {
		t.Errorf("expected empty journal after reset, got %d", j.Len())
	}
}
