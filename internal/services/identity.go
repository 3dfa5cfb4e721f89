package services

import (
	"fmt"
	"regexp"
	"strings"
)

// ID document types.
const (
	IDTypeEmirates = "emirates_id"
	IDTypePassport = "passport"
)

var (
	reEmiratesID = regexp.MustCompile(`^784-\d{4}-\d{7}-\d$`)
	rePassport   = regexp.MustCompile(`^[A-Z0-9]{6,9}$`)
	reDigits15   = regexp.MustCompile(`^784\d{12}$`)
)

// NormIDNumber formats bare Emirates ID digits as 784-YYYY-NNNNNNN-N and
// upper-cases passport numbers.
func NormIDNumber(idType, raw string) string {
	s := strings.TrimSpace(raw)
	switch idType {
	case IDTypeEmirates:
		clean := strings.NewReplacer("-", "", " ", "").Replace(s)
		if reDigits15.MatchString(clean) {
			return fmt.Sprintf("%s-%s-%s-%s", clean[0:3], clean[3:7], clean[7:14], clean[14:])
		}
	case IDTypePassport:
		return strings.ToUpper(s)
	}
	return s
}

// ValidIDNumber checks a normalized ID number against its document type.
func ValidIDNumber(idType, id string) bool {
	switch idType {
	case IDTypeEmirates:
		return reEmiratesID.MatchString(id)
	case IDTypePassport:
		return rePassport.MatchString(strings.ToUpper(id))
	}
	return id != ""
}
