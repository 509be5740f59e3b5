package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListHistory(ctx context.Context, complaintID string) ([]models.HistoryEntry, error) {
	if _, err := s.GetComplaint(ctx, complaintID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT complaint_id, seq, user_id, action, old_value, new_value, notes, created_at, prev_hash, hash
		FROM complaint_history
		WHERE complaint_id = $1
		ORDER BY seq ASC
	`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.ComplaintID, &entry.Seq, &entry.UserID, &entry.Action, &entry.OldValue,
			&entry.NewValue, &entry.Notes, &entry.CreatedAt, &entry.PrevHash, &entry.Hash); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// appendHistory chains entry onto the complaint's history. The advisory lock
// serialises writers of the same complaint.
func appendHistory(ctx context.Context, tx pgx.Tx, entry models.HistoryEntry) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, entry.ComplaintID); err != nil {
		return err
	}

	var lastSeq int
	var prevHash sql.NullString
	row := tx.QueryRow(ctx, `
		SELECT seq, hash
		FROM complaint_history
		WHERE complaint_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, entry.ComplaintID)
	if err := row.Scan(&lastSeq, &prevHash); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	entry.Seq = lastSeq + 1
	entry.PrevHash = ""
	if prevHash.Valid {
		entry.PrevHash = prevHash.String
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.Hash = store.ComputeHistoryHash(entry.PrevHash, entry)

	_, err := tx.Exec(ctx, `
		INSERT INTO complaint_history (complaint_id, seq, user_id, action, old_value, new_value, notes, created_at, prev_hash, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ComplaintID, entry.Seq, entry.UserID, entry.Action, entry.OldValue, entry.NewValue,
		entry.Notes, entry.CreatedAt, entry.PrevHash, entry.Hash)
	return err
}
