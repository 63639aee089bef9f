// Package validation checks and cleans request fields before they reach
// the services.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/securepass/internal/common"
)

const (
	MaxSiteLen     = 255
	MaxUserNameLen = 255
	MaxPasswordLen = 500
	MinPasswordLen = 8
)

var userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

// Errors maps a field name to a message. The zero value is usable.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(e[f])
		b.WriteString(";")
	}
	return b.String()
}

// Is lets errors.Is(err, common.ErrValidation) match.
func (e Errors) Is(target error) bool {
	return target == common.ErrValidation
}

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Registration validates a sign-up request.
func Registration(userName, password string) error {
	errs := Errors{}
	if !userNamePattern.MatchString(userName) {
		errs.Add("username", "Username must be 3-50 characters and contain only letters, numbers, dots, underscores, and hyphens")
	}
	if !StrongPassword(password) {
		errs.Add("password", "Password must be at least 8 characters and include uppercase, lowercase, digit, and special character")
	}
	return errs.Err()
}

// Login validates presence only; strength rules are not re-applied so that
// older accounts can still sign in.
func Login(userName, password string) error {
	errs := Errors{}
	if strings.TrimSpace(userName) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}
	return errs.Err()
}

// StrongPassword requires MinPasswordLen characters with an upper case
// letter, a lower case letter, a digit and a symbol.
func StrongPassword(p string) bool {
	if utf8.RuneCountInString(p) < MinPasswordLen {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// Credential validates the fields of a vault entry. Lengths count runes.
func Credential(site, userName, password string) error {
	errs := Errors{}
	switch {
	case strings.TrimSpace(site) == "":
		errs.Add("site", "Site is required")
	case utf8.RuneCountInString(site) > MaxSiteLen:
		errs.Add("site", "Site must not exceed 255 characters")
	}
	if utf8.RuneCountInString(userName) > MaxUserNameLen {
		errs.Add("username", "Username must not exceed 255 characters")
	}
	switch {
	case strings.TrimSpace(password) == "":
		errs.Add("password", "Password is required")
	case utf8.RuneCountInString(password) > MaxPasswordLen:
		errs.Add("password", "Password must not exceed 500 characters")
	}
	return errs.Err()
}
