package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

const sample = `
teams:
  - name: Loans
    description: Loan servicing
    manager: maria@example.com
    team_lead: leo@example.com
users:
  - email: Maria@example.com
    full_name: Maria Manager
    password: secret1
    role: manager
  - email: leo@example.com
    full_name: Leo Lead
    password: secret1
    role: team_lead
    team: Loans
  - email: casey@example.com
    full_name: Casey Customer
    password: secret1
sla_matrix:
  - product: Loan
    issue: Payment Issue
    severity: high
    sla_hours: 8
`

type memoryStore struct {
	users map[string]models.User
	teams []models.Team
	rules []models.SLARule
	next  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]models.User{}}
}

func (m *memoryStore) id() string {
	m.next++
	return fmt.Sprintf("id-%d", m.next)
}

func (m *memoryStore) CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error) {
	if _, ok := m.users[input.Email]; ok {
		return models.User{}, store.ErrEmailTaken
	}
	user := models.User{UserID: m.id(), Email: input.Email, FullName: input.FullName, Role: input.Role, IsActive: input.IsActive}
	if input.TeamID != "" {
		team := input.TeamID
		user.TeamID = &team
	}
	m.users[input.Email] = user
	return user, nil
}

func (m *memoryStore) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, ok := m.users[email]
	if !ok {
		return models.User{}, store.ErrInvalidCredentials
	}
	return user, nil
}

func (m *memoryStore) CreateTeam(ctx context.Context, input store.CreateTeamInput) (models.Team, error) {
	team := models.Team{TeamID: m.id(), Name: input.Name, Description: input.Description, IsActive: input.IsActive}
	m.teams = append(m.teams, team)
	return team, nil
}

func (m *memoryStore) ListTeams(ctx context.Context, skip, limit int) ([]models.Team, error) {
	return m.teams, nil
}

func (m *memoryStore) UpdateTeam(ctx context.Context, input store.UpdateTeamInput) (models.Team, error) {
	for i := range m.teams {
		if m.teams[i].TeamID == input.TeamID {
			if input.ManagerID != nil {
				m.teams[i].ManagerID = input.ManagerID
			}
			if input.TeamLeadID != nil {
				m.teams[i].TeamLeadID = input.TeamLeadID
			}
			return m.teams[i], nil
		}
	}
	return models.Team{}, store.ErrTeamNotFound
}

func (m *memoryStore) CreateSLARule(ctx context.Context, rule models.SLARule) (models.SLARule, error) {
	rule.RuleID = m.id()
	m.rules = append(m.rules, rule)
	return rule, nil
}

func (m *memoryStore) ListSLARules(ctx context.Context, activeOnly bool, skip, limit int) ([]models.SLARule, error) {
	return m.rules, nil
}

func TestApplyIsIdempotent(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st := newMemoryStore()

	summary, err := Apply(context.Background(), st, doc)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if summary.TeamsCreated != 1 || summary.UsersCreated != 3 || summary.RulesCreated != 1 {
		t.Fatalf("unexpected first summary %+v", summary)
	}
	team := st.teams[0]
	if team.ManagerID == nil || *team.ManagerID != st.users["maria@example.com"].UserID {
		t.Fatalf("expected manager to be linked, got %+v", team)
	}
	if team.TeamLeadID == nil || *team.TeamLeadID != st.users["leo@example.com"].UserID {
		t.Fatalf("expected team lead to be linked, got %+v", team)
	}
	if st.users["leo@example.com"].Team() != team.TeamID {
		t.Fatalf("expected lead to belong to the team")
	}
	if st.users["casey@example.com"].Role != models.RoleCustomer {
		t.Fatalf("expected default customer role")
	}

	summary, err = Apply(context.Background(), st, doc)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if summary.TeamsCreated != 0 || summary.UsersCreated != 0 || summary.UsersSkipped != 3 || summary.RulesCreated != 0 {
		t.Fatalf("unexpected second summary %+v", summary)
	}
	if len(st.teams) != 1 || len(st.rules) != 1 {
		t.Fatalf("expected no duplicates, got %d teams %d rules", len(st.teams), len(st.rules))
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"unknown team":    "users:\n  - {email: a@example.com, full_name: A, password: secret1, team: Nope}\n",
		"short password":  "users:\n  - {email: a@example.com, full_name: A, password: abc}\n",
		"bad role":        "users:\n  - {email: a@example.com, full_name: A, password: secret1, role: boss}\n",
		"zero hours":      "sla_matrix:\n  - {product: Loan, issue: X, severity: low, sla_hours: 0}\n",
		"bad severity":    "sla_matrix:\n  - {product: Loan, issue: X, severity: urgent, sla_hours: 4}\n",
		"unknown manager": "teams:\n  - {name: Loans, manager: ghost@example.com}\n",
		"malformed yaml":  "teams: [\n",
	}
	for name, input := range cases {
		if _, err := Parse([]byte(input)); err == nil || !strings.HasPrefix(err.Error(), "seed:") {
			t.Fatalf("%s: expected seed error, got %v", name, err)
		}
	}
}
