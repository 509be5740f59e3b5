package store

import "github.com/beashaj2001/complaintsManagement/internal/models"

// A closed complaint can only be reopened; every other status may move to any
// other status.
var transitionMap = map[string][]string{
	models.StatusOpen:      {models.StatusInProcess, models.StatusPending, models.StatusClosed},
	models.StatusInProcess: {models.StatusOpen, models.StatusPending, models.StatusClosed},
	models.StatusPending:   {models.StatusOpen, models.StatusInProcess, models.StatusClosed},
	models.StatusClosed:    {models.StatusOpen},
}

func ValidTransition(fromStatus, toStatus string) bool {
	if fromStatus == toStatus {
		return models.ValidStatus(toStatus)
	}
	allowed, ok := transitionMap[fromStatus]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == toStatus {
			return true
		}
	}
	return false
}

func CanAssign(status string) bool {
	return status != models.StatusClosed
}
