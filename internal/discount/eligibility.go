package discount

import (
	"sort"
	"strings"
	"time"
)

// Registration states that matter to eligibility.
const (
	StateCancelled = "cancelled"
	StateRejected  = "rejected"
)

// Window is an inclusive date range.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Zero() bool { return w.From.IsZero() || w.To.IsZero() }

// Overlaps reports whether two windows share at least one day.
func Overlaps(a, b Window) bool {
	if a.Zero() || b.Zero() {
		return false
	}
	af, at := Date(a.From), Date(a.To)
	bf, bt := Date(b.From), Date(b.To)
	return !bf.After(at) && !bt.Before(af)
}

// Candidate is the slice of a registration the eligibility rules read.
type Candidate struct {
	RegistrationID uint
	StudentID      uint // 0 when not linked to a profile
	IDNumber       string
	State          string
	RegisteredAt   time.Time
	Term           Window
	TermActive     bool
}

func (c Candidate) live() bool {
	return c.State != StateCancelled && c.State != StateRejected
}

func (c Candidate) before(o Candidate) bool {
	if !c.RegisteredAt.Equal(o.RegisteredAt) {
		return c.RegisteredAt.Before(o.RegisteredAt)
	}
	return c.RegistrationID < o.RegistrationID
}

// SiblingOrder ranks the current child among the family's children that
// hold a live registration in an active term that has not ended by today.
// Each child counts once, at its earliest registration.
func SiblingOrder(current Candidate, group []Candidate, today time.Time) int {
	if current.State == StateCancelled {
		return 0
	}
	today = Date(today)

	eligible := make([]Candidate, 0, len(group))
	for _, c := range group {
		if !c.live() || !c.TermActive || c.Term.To.IsZero() || Date(c.Term.To).Before(today) {
			continue
		}
		eligible = append(eligible, c)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].before(eligible[j]) })

	var children []Candidate
	for _, c := range eligible {
		seen := false
		for _, k := range children {
			if sameChild(k, c) {
				seen = true
				break
			}
		}
		if !seen {
			children = append(children, c)
		}
	}

	for i, c := range children {
		if sameChild(c, current) {
			return i + 1
		}
	}
	return 1
}

// HasMultiClub reports whether the same child holds another live
// registration whose term overlaps the current one.
func HasMultiClub(current Candidate, others []Candidate) bool {
	if current.State == StateCancelled || current.Term.Zero() {
		return false
	}
	for _, o := range others {
		if o.RegistrationID == current.RegistrationID || !o.live() || !sameChild(current, o) {
			continue
		}
		if Overlaps(current.Term, o.Term) {
			return true
		}
	}
	return false
}

// sameChild matches two registrations on the registration itself, the linked
// profile, or the ID number.
func sameChild(a, b Candidate) bool {
	if a.RegistrationID != 0 && a.RegistrationID == b.RegistrationID {
		return true
	}
	if a.StudentID != 0 && a.StudentID == b.StudentID {
		return true
	}
	id := strings.TrimSpace(a.IDNumber)
	return id != "" && strings.TrimSpace(b.IDNumber) == id
}

// Midpoint is date_from plus half the term length in whole days, rounded down.
func Midpoint(w Window) time.Time {
	from := Date(w.From)
	days := DaysBetween(from, Date(w.To))
	return from.AddDate(0, 0, days/2)
}

// IsHalfTerm reports whether registeredOn falls strictly after the midpoint.
func IsHalfTerm(w Window, registeredOn time.Time) bool {
	if w.Zero() {
		return false
	}
	return Date(registeredOn).After(Midpoint(w))
}

// Date drops the clock, keeping the calendar day as seen in t's location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
