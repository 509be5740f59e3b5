package auth

import (
	"errors"
	"strings"
)

const MinPasswordLength = 6

var ErrWeakPassword = errors.New("password must be at least 6 characters")

func ValidatePassword(password string) error {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
