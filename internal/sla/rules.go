package sla

import "github.com/beashaj2001/complaintsManagement/internal/models"

var defaultHours = map[string]int{
	models.SeverityCritical: 4,
	models.SeverityHigh:     12,
	models.SeverityMedium:   24,
	models.SeverityLow:      48,
}

const fallbackHours = 24

func DefaultHours(severity string) int {
	if hours, ok := defaultHours[severity]; ok {
		return hours
	}
	return fallbackHours
}

// ResolveHours returns the allowance of the first active rule matching
// product, issue and severity, or the severity default.
func ResolveHours(rules []models.SLARule, product, issue, severity string) int {
	for _, rule := range rules {
		if !rule.IsActive || rule.SLAHours <= 0 {
			continue
		}
		if rule.Product == product && rule.Issue == issue && rule.Severity == severity {
			return rule.SLAHours
		}
	}
	return DefaultHours(severity)
}
