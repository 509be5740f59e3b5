package models

import "time"

type Complaint struct {
	ComplaintID     string     `json:"complaint_id"`
	ComplaintNumber string     `json:"complaint_number"`
	Product         string     `json:"product"`
	Subproduct      string     `json:"subproduct,omitempty"`
	Issue           string     `json:"issue"`
	Subissue        string     `json:"subissue,omitempty"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity"`
	Status          string     `json:"status"`
	CustomerID      string     `json:"customer_id"`
	AssignedTeamID  *string    `json:"assigned_team_id,omitempty"`
	AssignedToID    *string    `json:"assigned_to_id,omitempty"`
	SLAHours        int        `json:"sla_hours"`
	SLABreach       bool       `json:"sla_breach"`
	ResolutionTime  *time.Time `json:"resolution_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const (
	StatusOpen      = "open"
	StatusInProcess = "inprocess"
	StatusPending   = "pending"
	StatusClosed    = "closed"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProcess, StatusPending, StatusClosed:
		return true
	default:
		return false
	}
}

func ValidSeverity(severity string) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

type Note struct {
	NoteID      string    `json:"note_id"`
	ComplaintID string    `json:"complaint_id"`
	UserID      string    `json:"user_id"`
	Note        string    `json:"note"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
}

type HistoryEntry struct {
	ComplaintID string    `json:"complaint_id"`
	Seq         int       `json:"seq"`
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PrevHash    string    `json:"prev_hash"`
	Hash        string    `json:"hash"`
}

type DashboardStats struct {
	TotalComplaints     int      `json:"total_complaints"`
	OpenComplaints      int      `json:"open_complaints"`
	InProcessComplaints int      `json:"inprocess_complaints"`
	PendingComplaints   int      `json:"pending_complaints"`
	ClosedComplaints    int      `json:"closed_complaints"`
	SLABreached         int      `json:"sla_breached"`
	AvgResolutionHours  *float64 `json:"avg_resolution_time,omitempty"`
}
