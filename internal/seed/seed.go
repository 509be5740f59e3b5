// Package seed loads reference teams, users and SLA rules from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Teams     []Team    `yaml:"teams"`
	Users     []User    `yaml:"users"`
	SLAMatrix []SLARule `yaml:"sla_matrix"`
}

// Team references its manager and lead by user email.
type Team struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Manager     string `yaml:"manager"`
	TeamLead    string `yaml:"team_lead"`
}

// User references its team by name.
type User struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Team     string `yaml:"team"`
	Inactive bool   `yaml:"inactive"`
}

type SLARule struct {
	Product    string `yaml:"product"`
	Subproduct string `yaml:"subproduct"`
	Issue      string `yaml:"issue"`
	Subissue   string `yaml:"subissue"`
	Severity   string `yaml:"severity"`
	SLAHours   int    `yaml:"sla_hours"`
}

type Store interface {
	CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	CreateTeam(ctx context.Context, input store.CreateTeamInput) (models.Team, error)
	ListTeams(ctx context.Context, skip, limit int) ([]models.Team, error)
	UpdateTeam(ctx context.Context, input store.UpdateTeamInput) (models.Team, error)
	CreateSLARule(ctx context.Context, rule models.SLARule) (models.SLARule, error)
	ListSLARules(ctx context.Context, activeOnly bool, skip, limit int) ([]models.SLARule, error)
}

type Summary struct {
	TeamsCreated int
	UsersCreated int
	UsersSkipped int
	RulesCreated int
}

func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("seed: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (d Document) Validate() error {
	teams := map[string]bool{}
	for i, team := range d.Teams {
		if strings.TrimSpace(team.Name) == "" {
			return fmt.Errorf("seed: teams[%d]: name is required", i)
		}
		teams[team.Name] = true
	}
	emails := map[string]bool{}
	for i, user := range d.Users {
		email := strings.ToLower(strings.TrimSpace(user.Email))
		if email == "" || user.FullName == "" {
			return fmt.Errorf("seed: users[%d]: email and full_name are required", i)
		}
		if len(user.Password) < 6 {
			return fmt.Errorf("seed: users[%d]: password must be at least 6 characters", i)
		}
		if user.Role != "" && !models.ValidRole(user.Role) {
			return fmt.Errorf("seed: users[%d]: unknown role %q", i, user.Role)
		}
		if user.Team != "" && !teams[user.Team] {
			return fmt.Errorf("seed: users[%d]: unknown team %q", i, user.Team)
		}
		emails[email] = true
	}
	for i, team := range d.Teams {
		for _, ref := range []string{team.Manager, team.TeamLead} {
			if ref != "" && !emails[strings.ToLower(ref)] {
				return fmt.Errorf("seed: teams[%d]: unknown user %q", i, ref)
			}
		}
	}
	for i, rule := range d.SLAMatrix {
		if rule.Product == "" || rule.Issue == "" {
			return fmt.Errorf("seed: sla_matrix[%d]: product and issue are required", i)
		}
		if !models.ValidSeverity(rule.Severity) {
			return fmt.Errorf("seed: sla_matrix[%d]: unknown severity %q", i, rule.Severity)
		}
		if rule.SLAHours <= 0 {
			return fmt.Errorf("seed: sla_matrix[%d]: sla_hours must be greater than 0", i)
		}
	}
	return nil
}

// Apply inserts the document. Existing teams (by name), users (by email) and
// rules (by product, issue and severity) are reused, so it can run repeatedly.
func Apply(ctx context.Context, st Store, doc Document) (Summary, error) {
	var summary Summary

	teamIDs := map[string]string{}
	existing, err := st.ListTeams(ctx, 0, 1000)
	if err != nil {
		return summary, err
	}
	for _, team := range existing {
		teamIDs[team.Name] = team.TeamID
	}
	for _, team := range doc.Teams {
		if _, ok := teamIDs[team.Name]; ok {
			continue
		}
		created, err := st.CreateTeam(ctx, store.CreateTeamInput{Name: team.Name, Description: team.Description, IsActive: true})
		if err != nil {
			return summary, fmt.Errorf("create team %s: %w", team.Name, err)
		}
		teamIDs[team.Name] = created.TeamID
		summary.TeamsCreated++
	}

	userIDs := map[string]string{}
	for _, user := range doc.Users {
		email := strings.ToLower(strings.TrimSpace(user.Email))
		role := user.Role
		if role == "" {
			role = models.RoleCustomer
		}
		created, err := st.CreateUser(ctx, store.CreateUserInput{
			Email:    email,
			FullName: user.FullName,
			Password: user.Password,
			Role:     role,
			IsActive: !user.Inactive,
			TeamID:   teamIDs[user.Team],
		})
		if errors.Is(err, store.ErrEmailTaken) {
			summary.UsersSkipped++
			existingUser, authErr := st.Authenticate(ctx, email, user.Password)
			if authErr != nil {
				log.Printf("seed user exists email=%s err=%v", email, authErr)
				continue
			}
			userIDs[email] = existingUser.UserID
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("create user %s: %w", email, err)
		}
		userIDs[email] = created.UserID
		summary.UsersCreated++
	}

	for _, team := range doc.Teams {
		update := store.UpdateTeamInput{TeamID: teamIDs[team.Name]}
		if id, ok := userIDs[strings.ToLower(team.Manager)]; ok {
			update.ManagerID = &id
		}
		if id, ok := userIDs[strings.ToLower(team.TeamLead)]; ok {
			update.TeamLeadID = &id
		}
		if update.ManagerID == nil && update.TeamLeadID == nil {
			continue
		}
		if _, err := st.UpdateTeam(ctx, update); err != nil {
			return summary, fmt.Errorf("update team %s: %w", team.Name, err)
		}
	}

	rules, err := st.ListSLARules(ctx, false, 0, 1000)
	if err != nil {
		return summary, err
	}
	seen := map[string]bool{}
	for _, rule := range rules {
		seen[ruleKey(rule.Product, rule.Issue, rule.Severity)] = true
	}
	for _, rule := range doc.SLAMatrix {
		key := ruleKey(rule.Product, rule.Issue, rule.Severity)
		if seen[key] {
			continue
		}
		_, err := st.CreateSLARule(ctx, models.SLARule{
			Product:    rule.Product,
			Subproduct: rule.Subproduct,
			Issue:      rule.Issue,
			Subissue:   rule.Subissue,
			Severity:   rule.Severity,
			SLAHours:   rule.SLAHours,
			IsActive:   true,
		})
		if err != nil {
			return summary, fmt.Errorf("create sla rule %s: %w", key, err)
		}
		seen[key] = true
		summary.RulesCreated++
	}
	return summary, nil
}

func ruleKey(product, issue, severity string) string {
	return product + "/" + issue + "/" + severity
}
