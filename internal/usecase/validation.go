package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

const minUsernameLength = 3

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validateUsername enforces the username shape rules: minimum length,
// alphanumeric/underscore alphabet, no leading or trailing underscore, no
// consecutive underscores.
func validateUsername(username string) error {
	if len([]rune(username)) < minUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", ErrValidation, minUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, and underscores", ErrValidation)
	}
	if strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return fmt.Errorf("%w: username cannot start or end with '_'", ErrValidation)
	}
	if strings.Contains(username, "__") {
		return fmt.Errorf("%w: username cannot contain consecutive underscores", ErrValidation)
	}
	return nil
}

// validateEmail checks address syntax. mail.ParseAddress accepts the
// "Name <addr>" form, which is not a bare address, so that shape is
// rejected explicitly.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email address is not valid", ErrValidation)
	}
	return nil
}
