package models

import "time"

const (
	RoleCustomer  = "customer"
	RoleOpsMember = "ops_member"
	RoleTeamLead  = "team_lead"
	RoleManager   = "manager"
	RoleAdmin     = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleOpsMember, RoleTeamLead, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	TeamID    *string   `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) Team() string {
	if u.TeamID == nil {
		return ""
	}
	return *u.TeamID
}

type Team struct {
	TeamID      string    `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	TeamLeadID  *string   `json:"team_lead_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
