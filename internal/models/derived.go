package models

import (
	"time"

	"github.com/roayati/clubs/internal/discount"
)

// Term states, derived from today's date.
const (
	TermUpcoming = "upcoming"
	TermOngoing  = "ongoing"
	TermFinished = "finished"
)

func (t Term) Window() discount.Window {
	return discount.Window{From: t.DateFrom, To: t.DateTo}
}

func (t Term) StateOn(today time.Time) string {
	d := discount.Date(today)
	switch {
	case d.Before(discount.Date(t.DateFrom)):
		return TermUpcoming
	case d.After(discount.Date(t.DateTo)):
		return TermFinished
	}
	return TermOngoing
}

// Open reports whether the term still takes registrations on today.
func (t Term) Open(today time.Time) bool {
	return t.IsActive && !discount.Date(t.DateTo).Before(discount.Date(today))
}

// Candidate projects the registration onto the eligibility rules. Term must
// be loaded.
func (r Registration) Candidate(loc *time.Location) discount.Candidate {
	c := discount.Candidate{
		RegistrationID: r.ID,
		IDNumber:       r.IDNumber,
		State:          r.State,
		RegisteredAt:   r.RegisteredAt.In(loc),
		Term:           r.Term.Window(),
		TermActive:     r.Term.IsActive,
	}
	if r.StudentID != nil {
		c.StudentID = *r.StudentID
	}
	return c
}

// Overrides returns the staff-entered component rates.
func (r Registration) Overrides() discount.Overrides {
	return discount.Overrides{
		Sibling:   r.ManualSiblingRate,
		MultiClub: r.ManualMultiClubRate,
		HalfTerm:  r.ManualHalfTermRate,
	}
}

// ApplyDiscount stores the derived eligibility flags and figures.
func (r *Registration) ApplyDiscount(order int, multi, half bool, res discount.Result) {
	r.SiblingOrder = order
	r.HasMultiClub = multi
	r.IsHalfTerm = half
	r.SiblingDiscountRate = res.SiblingRate
	r.MultiClubDiscountRate = res.MultiClubRate
	r.HalfTermDiscountRate = res.HalfTermRate
	r.TotalDiscountRate = res.TotalRate
	r.DiscountAmount = res.DiscountAmount
	r.FinalAmount = res.FinalAmount
}

// DisplayName prefers the linked profile's name.
func (r Registration) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	if r.Student != nil {
		return r.Student.FullName
	}
	return ""
}
