package identity

import (
	"fmt"
	"unicode"

	"github.com/uiticket/ticket-system/internal/core/ports"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordPolicy lists the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy requires six characters mixing digits, both cases and a symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:              6,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Validate returns one identity error per violated rule.
func (p PasswordPolicy) Validate(password string) []ports.IdentityError {
	var errs []ports.IdentityError
	if len([]rune(password)) < p.MinLength {
		errs = append(errs, ports.IdentityError{
			Code:        "PasswordTooShort",
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength),
		})
	}
	if len(password) > MaxPasswordBytes {
		errs = append(errs, ports.IdentityError{
			Code:        "PasswordTooLong",
			Description: fmt.Sprintf("Passwords must be at most %d bytes.", MaxPasswordBytes),
		})
	}

	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}

	if p.RequireNonAlphanumeric && !symbol {
		errs = append(errs, ports.IdentityError{
			Code:        "PasswordRequiresNonAlphanumeric",
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if p.RequireDigit && !digit {
		errs = append(errs, ports.IdentityError{
			Code:        "PasswordRequiresDigit",
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLowercase && !lower {
		errs = append(errs, ports.IdentityError{
			Code:        "PasswordRequiresLower",
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUppercase && !upper {
		errs = append(errs, ports.IdentityError{
			Code:        "PasswordRequiresUpper",
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	return errs
}
