package store

import (
	"context"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/models"
)

type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Role     string
	IsActive bool
	TeamID   string
}

type UpdateUserInput struct {
	UserID   string
	FullName *string
	Role     *string
	IsActive *bool
	TeamID   *string
}

type CreateTeamInput struct {
	Name        string
	Description string
	ManagerID   string
	TeamLeadID  string
	IsActive    bool
}

type UpdateTeamInput struct {
	TeamID      string
	Name        *string
	Description *string
	ManagerID   *string
	TeamLeadID  *string
	IsActive    *bool
}

type SLARuleInput struct {
	RuleID     string
	Product    *string
	Subproduct *string
	Issue      *string
	Subissue   *string
	Severity   *string
	SLAHours   *int
	IsActive   *bool
}

type CreateComplaintInput struct {
	ComplaintNumber string
	Product         string
	Subproduct      string
	Issue           string
	Subissue        string
	Description     string
	Severity        string
	CustomerID      string
	SLAHours        int
	CreatedAt       time.Time
}

type UpdateComplaintInput struct {
	ComplaintID    string
	ActorID        string
	Status         *string
	AssignedTeamID *string
	AssignedToID   *string
	Description    *string
	Severity       *string
	OccurredAt     time.Time
}

type AssignInput struct {
	ComplaintID string
	ActorID     string
	AssigneeID  string
	OccurredAt  time.Time
}

type NoteInput struct {
	ComplaintID string
	UserID      string
	Note        string
	IsInternal  bool
}

type ComplaintFilter struct {
	Scope    access.Scope
	Status   string
	Severity string
	TeamID   string
	Skip     int
	Limit    int
}

type UserStore interface {
	CreateUser(ctx context.Context, input CreateUserInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, input UpdateUserInput) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	ListTeamMembers(ctx context.Context, teamID string) ([]models.User, error)
}

type TeamStore interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (models.Team, error)
	GetTeam(ctx context.Context, teamID string) (models.Team, error)
	ListTeams(ctx context.Context, skip, limit int) ([]models.Team, error)
	UpdateTeam(ctx context.Context, input UpdateTeamInput) (models.Team, error)
	ManagedTeamIDs(ctx context.Context, userID string) ([]string, error)
}

type SLAStore interface {
	CreateSLARule(ctx context.Context, rule models.SLARule) (models.SLARule, error)
	ListSLARules(ctx context.Context, activeOnly bool, skip, limit int) ([]models.SLARule, error)
	UpdateSLARule(ctx context.Context, input SLARuleInput) (models.SLARule, error)
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, input CreateComplaintInput) (models.Complaint, error)
	GetComplaint(ctx context.Context, complaintID string) (models.Complaint, error)
	GetComplaintByNumber(ctx context.Context, number string) (models.Complaint, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	UpdateComplaint(ctx context.Context, input UpdateComplaintInput) (models.Complaint, error)
	AssignComplaint(ctx context.Context, input AssignInput) (models.Complaint, models.User, error)
	AddNote(ctx context.Context, input NoteInput) (models.Note, error)
	ListNotes(ctx context.Context, complaintID string, includeInternal bool) ([]models.Note, error)
	ListHistory(ctx context.Context, complaintID string) ([]models.HistoryEntry, error)
	DashboardStats(ctx context.Context, scope access.Scope) (models.DashboardStats, error)
	MarkBreaches(ctx context.Context, now time.Time, batchSize int, breached func(models.Complaint) bool) ([]models.Complaint, error)
}

type Store interface {
	UserStore
	TeamStore
	SLAStore
	ComplaintStore
}
