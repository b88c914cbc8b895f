package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail       = errors.New("invalid email format")
)

const (
	// MaxAccountNameLength counts characters, not bytes.
	MaxAccountNameLength = 255
	// MaxTransactionAmount is expressed in minor units.
	MaxTransactionAmount int64 = 100_000_000_000

	DefaultPageSize = 50
	MaxPageSize     = 1000
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// NormalizeAccountName trims name and checks its length.
func NormalizeAccountName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}
	if utf8.RuneCountInString(name) > MaxAccountNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return name, nil
}

// NormalizeEmail lowercases and trims email. An empty email is allowed.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidateAmount validates a minor-unit amount or tip.
func ValidateAmount(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	if amount > MaxTransactionAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxTransactionAmount)
	}

	return nil
}

// Page is a clamped limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps limit to (0, max] and offset to >= 0. A non-positive
// limit selects def.
func NewPage(limit, offset, def, max int) Page {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
