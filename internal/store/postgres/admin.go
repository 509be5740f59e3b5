package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	teamColumns    = `team_id, name, description, manager_id, team_lead_id, is_active, created_at`
	slaRuleColumns = `rule_id, product, subproduct, issue, subissue, severity, sla_hours, is_active, created_at, updated_at`
)

func (s *Store) CreateTeam(ctx context.Context, input store.CreateTeamInput) (models.Team, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO teams (team_id, name, description, manager_id, team_lead_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+teamColumns,
		uuid.NewString(), strings.TrimSpace(input.Name), input.Description, nullIfEmpty(input.ManagerID),
		nullIfEmpty(input.TeamLeadID), input.IsActive, s.clock())
	team, err := scanTeam(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Team{}, store.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return models.Team{}, store.ErrInvalidState
		}
		return models.Team{}, err
	}
	return team, nil
}

func (s *Store) GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE team_id = $1`, teamID)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Team{}, store.ErrTeamNotFound
		}
		return models.Team{}, err
	}
	return team, nil
}

func (s *Store) ListTeams(ctx context.Context, skip, limit int) ([]models.Team, error) {
	skip, limit = normalizePage(skip, limit)
	rows, err := s.pool.Query(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		ORDER BY name ASC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Store) UpdateTeam(ctx context.Context, input store.UpdateTeamInput) (models.Team, error) {
	current, err := s.GetTeam(ctx, input.TeamID)
	if err != nil {
		return models.Team{}, err
	}
	if input.Name != nil {
		current.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		current.Description = *input.Description
	}
	if input.ManagerID != nil {
		current.ManagerID = optionalID(*input.ManagerID)
	}
	if input.TeamLeadID != nil {
		current.TeamLeadID = optionalID(*input.TeamLeadID)
	}
	if input.IsActive != nil {
		current.IsActive = *input.IsActive
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE teams
		SET name = $2, description = $3, manager_id = $4, team_lead_id = $5, is_active = $6
		WHERE team_id = $1
		RETURNING `+teamColumns,
		current.TeamID, current.Name, current.Description, current.ManagerID, current.TeamLeadID, current.IsActive)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Team{}, store.ErrTeamNotFound
		}
		if isForeignKeyViolation(err) {
			return models.Team{}, store.ErrUserNotFound
		}
		return models.Team{}, err
	}
	return team, nil
}

func (s *Store) ManagedTeamIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT team_id FROM teams WHERE manager_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CreateSLARule(ctx context.Context, rule models.SLARule) (models.SLARule, error) {
	now := s.clock()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO sla_matrix (rule_id, product, subproduct, issue, subissue, severity, sla_hours, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING `+slaRuleColumns,
		uuid.NewString(), rule.Product, rule.Subproduct, rule.Issue, rule.Subissue, rule.Severity, rule.SLAHours, rule.IsActive, now)
	return scanSLARule(row)
}

func (s *Store) ListSLARules(ctx context.Context, activeOnly bool, skip, limit int) ([]models.SLARule, error) {
	skip, limit = normalizePage(skip, limit)
	query := `SELECT ` + slaRuleColumns + ` FROM sla_matrix`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at ASC OFFSET $1 LIMIT $2`

	rows, err := s.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.SLARule{}
	for rows.Next() {
		rule, err := scanSLARule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *Store) UpdateSLARule(ctx context.Context, input store.SLARuleInput) (models.SLARule, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+slaRuleColumns+` FROM sla_matrix WHERE rule_id = $1`, input.RuleID)
	rule, err := scanSLARule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SLARule{}, store.ErrSLARuleNotFound
		}
		return models.SLARule{}, err
	}
	applyString(&rule.Product, input.Product)
	applyString(&rule.Subproduct, input.Subproduct)
	applyString(&rule.Issue, input.Issue)
	applyString(&rule.Subissue, input.Subissue)
	applyString(&rule.Severity, input.Severity)
	if input.SLAHours != nil {
		rule.SLAHours = *input.SLAHours
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	row = s.pool.QueryRow(ctx, `
		UPDATE sla_matrix
		SET product = $2, subproduct = $3, issue = $4, subissue = $5, severity = $6, sla_hours = $7, is_active = $8, updated_at = $9
		WHERE rule_id = $1
		RETURNING `+slaRuleColumns,
		rule.RuleID, rule.Product, rule.Subproduct, rule.Issue, rule.Subissue, rule.Severity, rule.SLAHours, rule.IsActive, s.clock())
	updated, err := scanSLARule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SLARule{}, store.ErrSLARuleNotFound
		}
		return models.SLARule{}, err
	}
	return updated, nil
}

func ensureTeam(ctx context.Context, q queryRower, teamID string) error {
	var id string
	if err := q.QueryRow(ctx, `SELECT team_id FROM teams WHERE team_id = $1`, teamID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrTeamNotFound
		}
		return err
	}
	return nil
}

func scanTeam(row rowScanner) (models.Team, error) {
	var team models.Team
	var managerNull sql.NullString
	var leadNull sql.NullString
	if err := row.Scan(&team.TeamID, &team.Name, &team.Description, &managerNull, &leadNull, &team.IsActive, &team.CreatedAt); err != nil {
		return models.Team{}, err
	}
	team.ManagerID = nullStringPtr(managerNull)
	team.TeamLeadID = nullStringPtr(leadNull)
	return team, nil
}

func scanSLARule(row rowScanner) (models.SLARule, error) {
	var rule models.SLARule
	if err := row.Scan(&rule.RuleID, &rule.Product, &rule.Subproduct, &rule.Issue, &rule.Subissue, &rule.Severity,
		&rule.SLAHours, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return models.SLARule{}, err
	}
	return rule, nil
}

func optionalID(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func applyString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}
