package access

import "github.com/beashaj2001/complaintsManagement/internal/models"

type Action string

const (
	ActionUpdateComplaint Action = "complaint.update"
	ActionAssignComplaint Action = "complaint.assign"
	ActionListUsers       Action = "user.list"
	ActionViewAnyUser     Action = "user.view_any"
	ActionUpdateAnyUser   Action = "user.update_any"
	ActionDeleteUser      Action = "user.delete"
	ActionCreateTeam      Action = "team.create"
	ActionUpdateTeam      Action = "team.update"
	ActionListTeams       Action = "team.list"
	ActionCreateSLARule   Action = "sla.create"
	ActionUpdateSLARule   Action = "sla.update"
	ActionListSLARules    Action = "sla.list"
	ActionAgentRun        Action = "agent.run"
	ActionChatbotQuery    Action = "chatbot.query"
)

var permissions = map[Action][]string{
	ActionUpdateComplaint: {models.RoleOpsMember, models.RoleTeamLead, models.RoleManager, models.RoleAdmin},
	ActionAssignComplaint: {models.RoleTeamLead, models.RoleManager, models.RoleAdmin},
	ActionListUsers:       {models.RoleAdmin, models.RoleManager},
	ActionViewAnyUser:     {models.RoleAdmin, models.RoleManager},
	ActionUpdateAnyUser:   {models.RoleAdmin},
	ActionDeleteUser:      {models.RoleAdmin},
	ActionCreateTeam:      {models.RoleAdmin},
	ActionUpdateTeam:      {models.RoleAdmin},
	ActionListTeams:       {models.RoleAdmin, models.RoleManager},
	ActionCreateSLARule:   {models.RoleAdmin},
	ActionUpdateSLARule:   {models.RoleAdmin},
	ActionListSLARules:    {models.RoleAdmin, models.RoleManager, models.RoleTeamLead},
	ActionAgentRun:        {models.RoleAdmin},
	ActionChatbotQuery:    {models.RoleOpsMember, models.RoleTeamLead, models.RoleManager},
}

func Allowed(role string, action Action) bool {
	roles, ok := permissions[action]
	if !ok {
		return false
	}
	return contains(roles, role)
}

// Scope restricts which complaints a user may list. The zero value is
// unrestricted.
type Scope struct {
	CustomerID     string
	TeamIDs        []string
	AssignedToID   string
	TeamOrAssignee bool
	None           bool
}

func (s Scope) Unrestricted() bool {
	return !s.None && s.CustomerID == "" && len(s.TeamIDs) == 0 && s.AssignedToID == ""
}

// ComplaintScope derives the listing scope for user. managedTeamIDs are the
// teams the user manages; a manager without managed teams is unrestricted.
func ComplaintScope(user models.User, managedTeamIDs []string, assignedToMe bool) Scope {
	switch user.Role {
	case models.RoleCustomer:
		return Scope{CustomerID: user.UserID}
	case models.RoleOpsMember:
		if assignedToMe {
			return Scope{AssignedToID: user.UserID}
		}
		scope := Scope{AssignedToID: user.UserID, TeamOrAssignee: true}
		if team := user.Team(); team != "" {
			scope.TeamIDs = []string{team}
		}
		return scope
	case models.RoleTeamLead:
		team := user.Team()
		if team == "" {
			return Scope{None: true}
		}
		return Scope{TeamIDs: []string{team}}
	case models.RoleManager:
		if len(managedTeamIDs) == 0 {
			return Scope{}
		}
		return Scope{TeamIDs: managedTeamIDs}
	case models.RoleAdmin:
		return Scope{}
	default:
		return Scope{None: true}
	}
}

// Matches reports whether complaint falls inside the scope.
func (s Scope) Matches(complaint models.Complaint) bool {
	if s.None {
		return false
	}
	if s.Unrestricted() {
		return true
	}
	if s.CustomerID != "" && complaint.CustomerID != s.CustomerID {
		return false
	}
	team := deref(complaint.AssignedTeamID)
	assignee := deref(complaint.AssignedToID)
	if s.TeamOrAssignee {
		return (team != "" && contains(s.TeamIDs, team)) || assignee == s.AssignedToID
	}
	if s.AssignedToID != "" && assignee != s.AssignedToID {
		return false
	}
	if len(s.TeamIDs) > 0 && (team == "" || !contains(s.TeamIDs, team)) {
		return false
	}
	return true
}

// CanView is the single-complaint read check. Managers and admins may read
// any complaint.
func CanView(user models.User, complaint models.Complaint) bool {
	switch user.Role {
	case models.RoleCustomer:
		return complaint.CustomerID == user.UserID
	case models.RoleOpsMember, models.RoleTeamLead:
		team := deref(complaint.AssignedTeamID)
		if team != "" && team == user.Team() {
			return true
		}
		return deref(complaint.AssignedToID) == user.UserID
	case models.RoleManager, models.RoleAdmin:
		return true
	default:
		return false
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
