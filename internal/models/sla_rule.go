package models

import "time"

type SLARule struct {
	RuleID     string    `json:"rule_id"`
	Product    string    `json:"product"`
	Subproduct string    `json:"subproduct,omitempty"`
	Issue      string    `json:"issue"`
	Subissue   string    `json:"subissue,omitempty"`
	Severity   string    `json:"severity"`
	SLAHours   int       `json:"sla_hours"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
