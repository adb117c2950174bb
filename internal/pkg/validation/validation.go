package validation

import (
	"regexp"
	"strconv"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// isoCodeRe: two uppercase letters (ISO 3166-1 alpha-2).
var isoCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)

// currencyCodeRe: three uppercase letters (ISO 4217).
var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidISOCode(code string) bool {
	return isoCodeRe.MatchString(code)
}

func IsValidCurrencyCode(code string) bool {
	return currencyCodeRe.MatchString(code)
}

// ParseMonth validates a month query value: must be a digit string in [1,12].
func ParseMonth(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// ParseYear validates a year query value: a plausible 4-digit year.
func ParseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 9999 {
		return 0, false
	}
	return y, true
}
