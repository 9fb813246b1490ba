package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// NICPattern accepts the old 9 digit + V/X and the new 12 digit national identity formats
	NICPattern = `^(\d{9}[vVxX]|\d{12})$`

	PasswordMinLength = 8
	// PasswordMinEntropyBits rejects dictionary-like and keyboard-walk passwords
	PasswordMinEntropyBits = 50.0

	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	NIC   *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	NIC:   regexp.MustCompile(NICPattern),
}

// Tags registered by Register
const (
	TagNIC        = "nic"
	TagPersonName = "personname"
	TagPassword   = "password"
	TagNotBlank   = "notblank"
)

// Register adds the custom rules to v. Safe to call once per validator instance.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagNIC:        func(fl validator.FieldLevel) bool { return IsNIC(fl.Field().String()) },
		TagPersonName: func(fl validator.FieldLevel) bool { return IsPersonName(fl.Field().String()) },
		TagPassword:   func(fl validator.FieldLevel) bool { return IsStrongPassword(fl.Field().String()) },
		TagNotBlank:   func(fl validator.FieldLevel) bool { return strings.TrimSpace(fl.Field().String()) != "" },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// IsNIC reports whether s is a national identity number
func IsNIC(s string) bool {
	return CompiledPatterns.NIC.MatchString(strings.TrimSpace(s))
}

// IsEmail reports whether s looks like a lower-case email address
func IsEmail(s string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// IsPersonName requires letters, with spaces, dots, hyphens and apostrophes allowed between them
func IsPersonName(s string) bool {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < NameMinLength || n > NameMaxLength {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case r == ' ' || r == '.' || r == '-' || r == '\'':
		default:
			return false
		}
	}
	return hasLetter
}

// IsStrongPassword requires the minimum length and at least PasswordMinEntropyBits
// of entropy once repeated and sequential characters are discounted
func IsStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < PasswordMinLength {
		return false
	}
	return passwordvalidator.Validate(s, PasswordMinEntropyBits) == nil
}
