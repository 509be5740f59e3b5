package store

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

const (
	ActionCreated       = "Created"
	ActionStatusChanged = "Status Changed"
	ActionAssigned      = "Assigned"
	ActionUpdated       = "Updated"
	ActionNoteAdded     = "Note Added"
	ActionSLABreached   = "SLA Breached"
)

func ComputeHistoryHash(prevHash string, entry models.HistoryEntry) string {
	raw := fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s|%s|%s",
		prevHash,
		entry.ComplaintID,
		entry.Seq,
		entry.UserID,
		entry.Action,
		entry.OldValue,
		entry.NewValue,
		entry.Notes,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum)
}

// VerifyHistory checks that entries form an unbroken chain ordered by Seq.
func VerifyHistory(entries []models.HistoryEntry) error {
	prev := ""
	for i, entry := range entries {
		if entry.Seq != i+1 {
			return fmt.Errorf("%w: seq %d at position %d", ErrHistoryTampered, entry.Seq, i)
		}
		if entry.PrevHash != prev {
			return fmt.Errorf("%w: prev hash mismatch at seq %d", ErrHistoryTampered, entry.Seq)
		}
		if ComputeHistoryHash(prev, entry) != entry.Hash {
			return fmt.Errorf("%w: hash mismatch at seq %d", ErrHistoryTampered, entry.Seq)
		}
		prev = entry.Hash
	}
	return nil
}

// ReplayStatus returns the status implied by the history, or "" when the
// history carries no status information.
func ReplayStatus(entries []models.HistoryEntry) string {
	status := ""
	for _, entry := range entries {
		switch entry.Action {
		case ActionCreated, ActionStatusChanged:
			if entry.NewValue != "" {
				status = entry.NewValue
			}
		case ActionAssigned:
			status = models.StatusInProcess
		}
	}
	return status
}
