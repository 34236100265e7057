package account

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError is a client-detected input problem. It blocks the
// action locally and never reaches the network.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidateEmail checks the address shape. The message matches the
// identity service's own wording so both sources read the same to the
// user.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" || !emailRe.MatchString(strings.TrimSpace(email)) {
		return invalid("an email address must have an @-sign")
	}
	return nil
}

// ValidateFullName requires a non-empty name. There is no minimum
// length: a single character is accepted.
func ValidateFullName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("full name is required")
	}
	return nil
}

// ValidatePassword enforces the registration password policy: not only
// spaces, at least 8 characters, and at least one digit, uppercase
// letter, lowercase letter and special character. Checks run in this
// order and the first failure wins.
func ValidatePassword(pw string) error {
	if pw != "" && strings.TrimSpace(pw) == "" {
		return invalid("password cannot be only spaces")
	}
	if len(pw) < 8 {
		return invalid("password should have at least 8 characters")
	}
	if !strings.ContainsAny(pw, "0123456789") {
		return invalid("password must contain at least one number")
	}
	if !strings.ContainsAny(pw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return invalid("password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(pw, "abcdefghijklmnopqrstuvwxyz") {
		return invalid("password must contain at least one lowercase letter")
	}
	if !strings.ContainsAny(pw, `!@#$%^&*(),.?":{}|<>`) {
		return invalid("password must contain at least one special character")
	}
	return nil
}
