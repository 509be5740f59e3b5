package store

import (
	"errors"
	"testing"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

func buildChain(entries []models.HistoryEntry) []models.HistoryEntry {
	prev := ""
	for i := range entries {
		entries[i].Seq = i + 1
		entries[i].PrevHash = prev
		entries[i].Hash = ComputeHistoryHash(prev, entries[i])
		prev = entries[i].Hash
	}
	return entries
}

func TestVerifyHistory(t *testing.T) {
	at := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	entries := buildChain([]models.HistoryEntry{
		{ComplaintID: "c1", UserID: "u1", Action: ActionCreated, NewValue: "open", CreatedAt: at},
		{ComplaintID: "c1", UserID: "u2", Action: ActionAssigned, NewValue: "Ops Agent", CreatedAt: at.Add(time.Hour)},
		{ComplaintID: "c1", UserID: "u2", Action: ActionStatusChanged, OldValue: "inprocess", NewValue: "closed", CreatedAt: at.Add(2 * time.Hour)},
	})

	if err := VerifyHistory(entries); err != nil {
		t.Fatalf("expected valid chain, got %v", err)
	}
	if got := ReplayStatus(entries); got != "closed" {
		t.Fatalf("expected replayed status closed, got %q", got)
	}

	tampered := append([]models.HistoryEntry(nil), entries...)
	tampered[1].NewValue = "Someone Else"
	if err := VerifyHistory(tampered); !errors.Is(err, ErrHistoryTampered) {
		t.Fatalf("expected tamper detection, got %v", err)
	}

	if err := VerifyHistory(entries[1:]); !errors.Is(err, ErrHistoryTampered) {
		t.Fatalf("expected gap detection, got %v", err)
	}
}

func TestReplayStatusAssignment(t *testing.T) {
	entries := []models.HistoryEntry{
		{Action: ActionCreated, NewValue: "open"},
		{Action: ActionAssigned, NewValue: "Ops Agent"},
		{Action: ActionNoteAdded},
	}
	if got := ReplayStatus(entries); got != "inprocess" {
		t.Fatalf("expected inprocess, got %q", got)
	}
}
