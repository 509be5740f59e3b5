package store

import "errors"

var (
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrSLARuleNotFound    = errors.New("sla rule not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user inactive")
	ErrInvalidState       = errors.New("invalid complaint state")
	ErrAccessDenied       = errors.New("access denied")
	ErrHistoryTampered    = errors.New("complaint history chain broken")
)
