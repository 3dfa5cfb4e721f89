package services

import (
	"regexp"
	"strings"
)

var (
	reLetters = regexp.MustCompile(`[A-Za-z]`)
	// Only allow digits, spaces, +, -, (, )
	reAllowed = regexp.MustCompile(`^[0-9+\-\s\(\)]+$`)
	// E.164-ish: + followed by 8..15 digits (no leading 0 after +)
	reE164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
)

// NormPhone normalizes a guardian mobile to the +E.164 form stored on
// families and registrations, so that sibling matching compares like with like.
// Rules: strip separators; 00.. -> +..; 971.. -> +971..; 0.. (UAE local) -> +971..
// Returns "" when the input cannot be a phone number.
func NormPhone(p string) string {
	s := strings.TrimSpace(p)
	if s == "" || reLetters.MatchString(s) || !reAllowed.MatchString(s) {
		return ""
	}

	repl := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\n", "", "\r", "", "\t", "")
	s = repl.Replace(s)

	switch {
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "971"):
		s = "+" + s
	case strings.HasPrefix(s, "0"):
		s = "+971" + s[1:]
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s
}

// ValidPhone reports whether a normalized number looks dialable.
func ValidPhone(normalized string) bool {
	return reE164.MatchString(normalized)
}
