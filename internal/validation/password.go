package validation

import (
	"errors"
)

// ValidatePassword enforces the account password policy: a minimum length
// of 5 characters with no composition rules.
func ValidatePassword(password string) error {
	if len(password) < 5 {
		return errors.New("password must be at least 5 characters")
	}

	// bcrypt silently truncates input past 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	return nil
}
