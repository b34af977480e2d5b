package http

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation constants
const (
	MaxMessageLength   = 2000
	MaxLocationLength  = 128
	MaxNameLength      = 256
	MaxConfigKeyLength = 64
	MaxConfigValLength = 50000
	MinPasswordLength  = 6
)

var configKeyRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidConfigKey checks if a setting key is safe
func ValidConfigKey(s string) bool {
	if s == "" || len(s) > MaxConfigKeyLength {
		return false
	}
	return configKeyRe.MatchString(s)
}

// ValidEmail accepts a bare address such as "ravi@example.com"
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == strings.TrimSpace(s)
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString truncates to at most maxLen runes
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}

// ValidateLength checks if string is within bounds (in runes)
func ValidateLength(s string, min, max int) bool {
	l := utf8.RuneCountInString(s)
	return l >= min && l <= max
}
