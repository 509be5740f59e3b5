package access

import (
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

func strPtr(value string) *string {
	return &value
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		role   string
		action Action
		want   bool
	}{
		{models.RoleOpsMember, ActionUpdateComplaint, true},
		{models.RoleCustomer, ActionUpdateComplaint, false},
		{models.RoleOpsMember, ActionAssignComplaint, false},
		{models.RoleTeamLead, ActionAssignComplaint, true},
		{models.RoleManager, ActionListUsers, true},
		{models.RoleManager, ActionDeleteUser, false},
		{models.RoleAdmin, ActionCreateSLARule, true},
		{models.RoleTeamLead, ActionListSLARules, true},
		{models.RoleOpsMember, ActionListSLARules, false},
		{models.RoleAdmin, ActionChatbotQuery, false},
		{models.RoleManager, ActionChatbotQuery, true},
		{models.RoleAdmin, Action("unknown"), false},
	}
	for _, tt := range cases {
		if got := Allowed(tt.role, tt.action); got != tt.want {
			t.Fatalf("Allowed(%q, %q)=%v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestComplaintScope(t *testing.T) {
	teamA := "team-a"
	complaints := map[string]models.Complaint{
		"own":        {ComplaintID: "c1", CustomerID: "cust"},
		"team":       {ComplaintID: "c2", CustomerID: "other", AssignedTeamID: strPtr(teamA)},
		"assigned":   {ComplaintID: "c3", CustomerID: "other", AssignedToID: strPtr("ops")},
		"other team": {ComplaintID: "c4", CustomerID: "other", AssignedTeamID: strPtr("team-b")},
		"unassigned": {ComplaintID: "c5", CustomerID: "other"},
	}

	cases := []struct {
		name         string
		user         models.User
		managed      []string
		assignedToMe bool
		visible      map[string]bool
	}{
		{
			name:    "customer",
			user:    models.User{UserID: "cust", Role: models.RoleCustomer},
			visible: map[string]bool{"own": true},
		},
		{
			name:    "ops member",
			user:    models.User{UserID: "ops", Role: models.RoleOpsMember, TeamID: strPtr(teamA)},
			visible: map[string]bool{"team": true, "assigned": true},
		},
		{
			name:         "ops member assigned to me",
			user:         models.User{UserID: "ops", Role: models.RoleOpsMember, TeamID: strPtr(teamA)},
			assignedToMe: true,
			visible:      map[string]bool{"assigned": true},
		},
		{
			name:    "team lead",
			user:    models.User{UserID: "lead", Role: models.RoleTeamLead, TeamID: strPtr(teamA)},
			visible: map[string]bool{"team": true},
		},
		{
			name:    "team lead without team",
			user:    models.User{UserID: "lead", Role: models.RoleTeamLead},
			visible: map[string]bool{},
		},
		{
			name:    "manager with teams",
			user:    models.User{UserID: "mgr", Role: models.RoleManager},
			managed: []string{"team-b"},
			visible: map[string]bool{"other team": true},
		},
		{
			name:    "manager without teams",
			user:    models.User{UserID: "mgr", Role: models.RoleManager},
			visible: map[string]bool{"own": true, "team": true, "assigned": true, "other team": true, "unassigned": true},
		},
		{
			name:    "admin",
			user:    models.User{UserID: "root", Role: models.RoleAdmin},
			visible: map[string]bool{"own": true, "team": true, "assigned": true, "other team": true, "unassigned": true},
		},
	}

	for _, tt := range cases {
		scope := ComplaintScope(tt.user, tt.managed, tt.assignedToMe)
		for key, complaint := range complaints {
			if got := scope.Matches(complaint); got != tt.visible[key] {
				t.Fatalf("%s: complaint %q visible=%v, want %v", tt.name, key, got, tt.visible[key])
			}
		}
	}
}

func TestCanView(t *testing.T) {
	complaint := models.Complaint{CustomerID: "cust", AssignedTeamID: strPtr("team-a"), AssignedToID: strPtr("ops")}
	cases := []struct {
		user models.User
		want bool
	}{
		{models.User{UserID: "cust", Role: models.RoleCustomer}, true},
		{models.User{UserID: "stranger", Role: models.RoleCustomer}, false},
		{models.User{UserID: "ops", Role: models.RoleOpsMember}, true},
		{models.User{UserID: "lead", Role: models.RoleTeamLead, TeamID: strPtr("team-a")}, true},
		{models.User{UserID: "lead", Role: models.RoleTeamLead, TeamID: strPtr("team-b")}, false},
		{models.User{UserID: "mgr", Role: models.RoleManager}, true},
		{models.User{UserID: "root", Role: models.RoleAdmin}, true},
	}
	for _, tt := range cases {
		if got := CanView(tt.user, complaint); got != tt.want {
			t.Fatalf("CanView(%s/%s)=%v, want %v", tt.user.Role, tt.user.UserID, got, tt.want)
		}
	}
}
