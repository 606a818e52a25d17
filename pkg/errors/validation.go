package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits applied to user-supplied text.
const (
	MaxProjectTitle = 100
	MaxWidgetTitle  = 200
	MaxWidgetText   = 10000
	MaxIDLength     = 128
	MinPassword     = 8
)

// ValidateProjectTitle checks that a project title is non-blank and at most
// MaxProjectTitle characters.
func ValidateProjectTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "project title is required")
	}
	if n := utf8.RuneCountInString(title); n > MaxProjectTitle {
		return New(ErrCodeInvalidInput, "project title too long (max %d characters)", MaxProjectTitle)
	}
	return nil
}

// ValidateWidgetTitle checks a widget title, label or placeholder.
func ValidateWidgetTitle(title string) error {
	if utf8.RuneCountInString(title) > MaxWidgetTitle {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", MaxWidgetTitle)
	}
	return nil
}

// ValidateWidgetText checks paragraph content.
func ValidateWidgetText(text string) error {
	if utf8.RuneCountInString(text) > MaxWidgetText {
		return New(ErrCodeInvalidInput, "content too long (max %d characters)", MaxWidgetText)
	}
	return nil
}

var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidateHexColor checks a "#RGB" or "#RRGGBB" color. The empty string is
// accepted and means "use the default color".
func ValidateHexColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid hex color: %q", color)
	}
	return nil
}

// emailRegex is deliberately loose: one @, no whitespace, a dot in the domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the shape of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return New(ErrCodeInvalidCredential, "email is required")
	}
	if !emailRegex.MatchString(email) {
		return New(ErrCodeInvalidCredential, "invalid email address")
	}
	return nil
}

// ValidatePassword requires MinPassword characters with at least one letter
// and one digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPassword {
		return New(ErrCodeInvalidCredential, "password must be at least %d characters", MinPassword)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return New(ErrCodeInvalidCredential, "password must contain at least one letter and one number")
	}
	return nil
}

// ValidateID validates an identifier that ends up in file names, cache keys
// or URL paths. It rejects anything that could escape a directory.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of MaxIDLength bytes
//   - No control characters
//   - No path separators or traversal sequences
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, `/\`) {
		return New(ErrCodeInvalidID, "id cannot contain path separators")
	}
	if id == "." || strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "id cannot contain path traversal sequences")
	}
	return nil
}
