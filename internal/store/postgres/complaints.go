package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
	"github.com/beashaj2001/complaintsManagement/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateComplaint(ctx context.Context, input store.CreateComplaintInput) (models.Complaint, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Complaint{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}
	number := input.ComplaintNumber
	if number == "" {
		number = store.NewComplaintNumber(createdAt)
	}
	hours := input.SLAHours
	if hours <= 0 {
		var rules []models.SLARule
		rules, err = matchingRules(ctx, tx, input.Product, input.Issue, input.Severity)
		if err != nil {
			return models.Complaint{}, err
		}
		hours = sla.ResolveHours(rules, input.Product, input.Issue, input.Severity)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO complaints (
			complaint_id, complaint_number, product, subproduct, issue, subissue, description,
			severity, status, customer_id, sla_hours, sla_breach, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,FALSE,$12,$12)
		RETURNING `+complaintColumns,
		uuid.NewString(), number, input.Product, input.Subproduct, input.Issue, input.Subissue, input.Description,
		input.Severity, models.StatusOpen, input.CustomerID, hours, createdAt)
	var complaint models.Complaint
	complaint, err = scanComplaint(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = store.ErrUserNotFound
		}
		return models.Complaint{}, err
	}

	if err = appendHistory(ctx, tx, models.HistoryEntry{
		ComplaintID: complaint.ComplaintID,
		UserID:      input.CustomerID,
		Action:      store.ActionCreated,
		NewValue:    models.StatusOpen,
		Notes:       "Complaint created",
		CreatedAt:   createdAt,
	}); err != nil {
		return models.Complaint{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Complaint{}, err
	}
	return complaint, nil
}

func (s *Store) GetComplaint(ctx context.Context, complaintID string) (models.Complaint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE complaint_id = $1`, complaintID)
	complaint, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Complaint{}, store.ErrComplaintNotFound
		}
		return models.Complaint{}, err
	}
	return complaint, nil
}

func (s *Store) GetComplaintByNumber(ctx context.Context, number string) (models.Complaint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE complaint_number = $1`, strings.ToUpper(number))
	complaint, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Complaint{}, store.ErrComplaintNotFound
		}
		return models.Complaint{}, err
	}
	return complaint, nil
}

func (s *Store) ListComplaints(ctx context.Context, filter store.ComplaintFilter) ([]models.Complaint, error) {
	conditions, args := scopeConditions(filter.Scope, nil)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)))
	}
	if filter.TeamID != "" {
		args = append(args, filter.TeamID)
		conditions = append(conditions, fmt.Sprintf("assigned_team_id = $%d", len(args)))
	}
	skip, limit := normalizePage(filter.Skip, filter.Limit)
	args = append(args, skip, limit)
	query := `SELECT ` + complaintColumns + ` FROM complaints` + whereClause(conditions) +
		fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *Store) UpdateComplaint(ctx context.Context, input store.UpdateComplaintInput) (models.Complaint, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Complaint{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var current models.Complaint
	current, err = lockComplaint(ctx, tx, input.ComplaintID)
	if err != nil {
		return models.Complaint{}, err
	}

	at := input.OccurredAt
	if at.IsZero() {
		at = s.clock()
	}

	updated := current
	var changed []string
	statusChanged := false
	if input.Status != nil && *input.Status != current.Status {
		if !store.ValidTransition(current.Status, *input.Status) {
			err = fmt.Errorf("%w: %s to %s", store.ErrInvalidState, current.Status, *input.Status)
			return models.Complaint{}, err
		}
		updated.Status = *input.Status
		statusChanged = true
		switch {
		case updated.Status == models.StatusClosed:
			updated.ResolutionTime = &at
		case current.Status == models.StatusClosed:
			updated.ResolutionTime = nil
		}
	}
	if input.AssignedTeamID != nil {
		teamID := strings.TrimSpace(*input.AssignedTeamID)
		if teamID != "" {
			if err = ensureTeam(ctx, tx, teamID); err != nil {
				return models.Complaint{}, err
			}
			updated.AssignedTeamID = &teamID
		} else {
			updated.AssignedTeamID = nil
		}
		changed = append(changed, "assigned_team_id")
	}
	if input.AssignedToID != nil {
		userID := strings.TrimSpace(*input.AssignedToID)
		if userID != "" {
			if _, err = getUser(ctx, tx, userID); err != nil {
				return models.Complaint{}, err
			}
			updated.AssignedToID = &userID
		} else {
			updated.AssignedToID = nil
		}
		changed = append(changed, "assigned_to_id")
	}
	if input.Description != nil {
		updated.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Severity != nil {
		updated.Severity = *input.Severity
		changed = append(changed, "severity")
	}
	updated.UpdatedAt = at

	row := tx.QueryRow(ctx, `
		UPDATE complaints
		SET status = $2,
			assigned_team_id = $3,
			assigned_to_id = $4,
			description = $5,
			severity = $6,
			resolution_time = $7,
			updated_at = $8
		WHERE complaint_id = $1
		RETURNING `+complaintColumns,
		updated.ComplaintID, updated.Status, updated.AssignedTeamID, updated.AssignedToID,
		updated.Description, updated.Severity, updated.ResolutionTime, at)
	updated, err = scanComplaint(row)
	if err != nil {
		return models.Complaint{}, err
	}

	if statusChanged {
		if err = appendHistory(ctx, tx, models.HistoryEntry{
			ComplaintID: updated.ComplaintID,
			UserID:      input.ActorID,
			Action:      store.ActionStatusChanged,
			OldValue:    current.Status,
			NewValue:    updated.Status,
			Notes:       "Status changed to " + updated.Status,
			CreatedAt:   at,
		}); err != nil {
			return models.Complaint{}, err
		}
	}
	if len(changed) > 0 {
		if err = appendHistory(ctx, tx, models.HistoryEntry{
			ComplaintID: updated.ComplaintID,
			UserID:      input.ActorID,
			Action:      store.ActionUpdated,
			Notes:       "Updated " + strings.Join(changed, ", "),
			CreatedAt:   at,
		}); err != nil {
			return models.Complaint{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Complaint{}, err
	}
	return updated, nil
}

func (s *Store) AssignComplaint(ctx context.Context, input store.AssignInput) (models.Complaint, models.User, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Complaint{}, models.User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var current models.Complaint
	current, err = lockComplaint(ctx, tx, input.ComplaintID)
	if err != nil {
		return models.Complaint{}, models.User{}, err
	}
	if !store.CanAssign(current.Status) {
		err = fmt.Errorf("%w: cannot assign %s complaint", store.ErrInvalidState, current.Status)
		return models.Complaint{}, models.User{}, err
	}

	var assignee models.User
	assignee, err = getUser(ctx, tx, input.AssigneeID)
	if err != nil {
		return models.Complaint{}, models.User{}, err
	}

	at := input.OccurredAt
	if at.IsZero() {
		at = s.clock()
	}
	row := tx.QueryRow(ctx, `
		UPDATE complaints
		SET assigned_to_id = $2,
			assigned_team_id = $3,
			status = $4,
			updated_at = $5
		WHERE complaint_id = $1
		RETURNING `+complaintColumns,
		current.ComplaintID, assignee.UserID, assignee.TeamID, models.StatusInProcess, at)
	var complaint models.Complaint
	complaint, err = scanComplaint(row)
	if err != nil {
		return models.Complaint{}, models.User{}, err
	}

	if err = appendHistory(ctx, tx, models.HistoryEntry{
		ComplaintID: complaint.ComplaintID,
		UserID:      input.ActorID,
		Action:      store.ActionAssigned,
		OldValue:    current.Status,
		NewValue:    assignee.FullName,
		Notes:       "Assigned to " + assignee.FullName,
		CreatedAt:   at,
	}); err != nil {
		return models.Complaint{}, models.User{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Complaint{}, models.User{}, err
	}
	return complaint, assignee, nil
}

func (s *Store) AddNote(ctx context.Context, input store.NoteInput) (models.Note, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Note{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = lockComplaint(ctx, tx, input.ComplaintID); err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		NoteID:      uuid.NewString(),
		ComplaintID: input.ComplaintID,
		UserID:      input.UserID,
		Note:        input.Note,
		IsInternal:  input.IsInternal,
		CreatedAt:   s.clock(),
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO complaint_notes (note_id, complaint_id, user_id, note, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, note.NoteID, note.ComplaintID, note.UserID, note.Note, note.IsInternal, note.CreatedAt); err != nil {
		return models.Note{}, err
	}

	if err = appendHistory(ctx, tx, models.HistoryEntry{
		ComplaintID: note.ComplaintID,
		UserID:      note.UserID,
		Action:      store.ActionNoteAdded,
		CreatedAt:   note.CreatedAt,
	}); err != nil {
		return models.Note{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *Store) ListNotes(ctx context.Context, complaintID string, includeInternal bool) ([]models.Note, error) {
	query := `
		SELECT note_id, complaint_id, user_id, note, is_internal, created_at
		FROM complaint_notes
		WHERE complaint_id = $1
	`
	if !includeInternal {
		query += " AND NOT is_internal"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.NoteID, &note.ComplaintID, &note.UserID, &note.Note, &note.IsInternal, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Store) DashboardStats(ctx context.Context, scope access.Scope) (models.DashboardStats, error) {
	conditions, args := scopeConditions(scope, nil)
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'inprocess'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'closed'),
			COUNT(*) FILTER (WHERE sla_breach),
			AVG(EXTRACT(EPOCH FROM (resolution_time - created_at)) / 3600.0) FILTER (WHERE status = 'closed' AND resolution_time IS NOT NULL)
		FROM complaints`+whereClause(conditions), args...)

	var stats models.DashboardStats
	var avg sql.NullFloat64
	if err := row.Scan(&stats.TotalComplaints, &stats.OpenComplaints, &stats.InProcessComplaints,
		&stats.PendingComplaints, &stats.ClosedComplaints, &stats.SLABreached, &avg); err != nil {
		return models.DashboardStats{}, err
	}
	if avg.Valid {
		value := avg.Float64
		stats.AvgResolutionHours = &value
	}
	return stats, nil
}

// MarkBreaches flags open complaints whose allowance has run out. The SQL
// filter only preselects; breached decides per row.
func (s *Store) MarkBreaches(ctx context.Context, now time.Time, batchSize int, breached func(models.Complaint) bool) ([]models.Complaint, error) {
	if batchSize <= 0 {
		batchSize = defaultSweepSize
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints
		WHERE status <> 'closed' AND NOT sla_breach
			AND created_at + make_interval(hours => sla_hours) < $1
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $2
	`, now, batchSize)
	if err != nil {
		return nil, err
	}
	var candidates []models.Complaint
	for rows.Next() {
		var complaint models.Complaint
		complaint, err = scanComplaint(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, complaint)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	var marked []models.Complaint
	for _, complaint := range candidates {
		if breached != nil && !breached(complaint) {
			continue
		}
		if _, err = tx.Exec(ctx, `
			UPDATE complaints SET sla_breach = TRUE, updated_at = $2 WHERE complaint_id = $1
		`, complaint.ComplaintID, now); err != nil {
			return nil, err
		}
		if err = appendHistory(ctx, tx, models.HistoryEntry{
			ComplaintID: complaint.ComplaintID,
			Action:      store.ActionSLABreached,
			OldValue:    "false",
			NewValue:    "true",
			Notes:       fmt.Sprintf("SLA of %d hours exceeded", complaint.SLAHours),
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}
		complaint.SLABreach = true
		complaint.UpdatedAt = now
		marked = append(marked, complaint)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return marked, nil
}

func lockComplaint(ctx context.Context, tx pgx.Tx, complaintID string) (models.Complaint, error) {
	row := tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE complaint_id = $1 FOR UPDATE`, complaintID)
	complaint, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Complaint{}, store.ErrComplaintNotFound
		}
		return models.Complaint{}, err
	}
	return complaint, nil
}

func matchingRules(ctx context.Context, tx pgx.Tx, product, issue, severity string) ([]models.SLARule, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+slaRuleColumns+`
		FROM sla_matrix
		WHERE product = $1 AND issue = $2 AND severity = $3 AND is_active
		ORDER BY created_at ASC
	`, product, issue, severity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.SLARule
	for rows.Next() {
		rule, err := scanSLARule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func scanComplaint(row rowScanner) (models.Complaint, error) {
	var complaint models.Complaint
	var teamIDNull sql.NullString
	var assigneeNull sql.NullString
	var resolutionNull sql.NullTime
	if err := row.Scan(&complaint.ComplaintID, &complaint.ComplaintNumber, &complaint.Product, &complaint.Subproduct,
		&complaint.Issue, &complaint.Subissue, &complaint.Description, &complaint.Severity, &complaint.Status,
		&complaint.CustomerID, &teamIDNull, &assigneeNull, &complaint.SLAHours, &complaint.SLABreach,
		&resolutionNull, &complaint.CreatedAt, &complaint.UpdatedAt); err != nil {
		return models.Complaint{}, err
	}
	complaint.AssignedTeamID = nullStringPtr(teamIDNull)
	complaint.AssignedToID = nullStringPtr(assigneeNull)
	complaint.ResolutionTime = nullTimePtr(resolutionNull)
	return complaint, nil
}
