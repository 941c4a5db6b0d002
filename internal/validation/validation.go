package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a person name is valid
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: field, Message: field + " must be at least 2 characters"}
	}
	return nil
}

// ValidateAmount checks a request amount against the service ceiling
func ValidateAmount(amount, maxAmount float64) error {
	if amount <= 0 {
		return ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if maxAmount > 0 && amount > maxAmount {
		return ValidationError{Field: "amount", Message: fmt.Sprintf("amount exceeds the service maximum of %.2f", maxAmount)}
	}
	return nil
}

// ValidateRelationship checks a dependent relationship label
func ValidateRelationship(relationship string) error {
	relationship = strings.ToLower(strings.TrimSpace(relationship))
	if relationship == "" {
		return ValidationError{Field: "relationship", Message: "relationship is required"}
	}
	switch relationship {
	case "spouse", "child", "parent", "sibling", "other":
		return nil
	}
	return ValidationError{Field: "relationship", Message: "unknown relationship"}
}
