package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	passwordSymbols   = `!@#$%^&*()_+={}[]:;"'<>,.?/-`
)

// ValidatePassword reports whether p satisfies the password policy: at least
// eight characters with an upper case letter, a lower case letter, a digit
// and one of passwordSymbols.
func ValidatePassword(p string) bool {
	if utf8.RuneCountInString(p) < minPasswordLength || strings.ContainsRune(p, '\n') {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
