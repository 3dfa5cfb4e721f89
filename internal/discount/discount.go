// Package discount derives the eligibility flags and discount figures of a
// club registration. Everything here is pure: callers load the rows, this
// package only looks at values.
package discount

import "math"

type Policy string

const (
	Cumulative Policy = "cumulative"
	Highest    Policy = "highest"
	Manual     Policy = "manual"
)

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	switch p {
	case Cumulative, Highest, Manual:
		return true
	}
	return false
}

const (
	MultiClubPercent = 15.0
	HalfTermPercent  = 50.0
	maxPercent       = 100.0
)

// Overrides are staff-entered component rates, honoured only by Manual.
// A nil field keeps the computed rate.
type Overrides struct {
	Sibling   *float64
	MultiClub *float64
	HalfTerm  *float64
}

type Input struct {
	SiblingOrder int
	MultiClub    bool
	HalfTerm     bool
	TermPrice    float64
	Policy       Policy
	Cancelled    bool
	Overrides    Overrides
}

type Result struct {
	SiblingRate    float64
	MultiClubRate  float64
	HalfTermRate   float64
	TotalRate      float64
	DiscountAmount float64
	FinalAmount    float64
}

// SiblingRate maps a 1-based sibling order to its percentage.
func SiblingRate(order int) float64 {
	switch {
	case order >= 4:
		return 15
	case order == 3:
		return 10
	case order == 2:
		return 5
	}
	return 0
}

func MultiClubRate(multi bool) float64 {
	if multi {
		return MultiClubPercent
	}
	return 0
}

func HalfTermRate(half bool) float64 {
	if half {
		return HalfTermPercent
	}
	return 0
}

// Compute combines the component rates under the input policy.
// A cancelled registration or one without a price gets no discount and keeps
// the nominal price as its final amount.
func Compute(in Input) Result {
	if in.Cancelled || in.TermPrice <= 0 || math.IsNaN(in.TermPrice) {
		price := in.TermPrice
		if price < 0 || math.IsNaN(price) {
			price = 0
		}
		return Result{FinalAmount: price}
	}

	res := Result{
		SiblingRate:   SiblingRate(in.SiblingOrder),
		MultiClubRate: MultiClubRate(in.MultiClub),
		HalfTermRate:  HalfTermRate(in.HalfTerm),
	}

	switch in.Policy {
	case Highest:
		res.TotalRate = math.Max(res.SiblingRate, math.Max(res.MultiClubRate, res.HalfTermRate))
	case Manual:
		res.SiblingRate = override(res.SiblingRate, in.Overrides.Sibling)
		res.MultiClubRate = override(res.MultiClubRate, in.Overrides.MultiClub)
		res.HalfTermRate = override(res.HalfTermRate, in.Overrides.HalfTerm)
		res.TotalRate = capped(res.SiblingRate + res.MultiClubRate + res.HalfTermRate)
	default:
		res.TotalRate = capped(res.SiblingRate + res.MultiClubRate + res.HalfTermRate)
	}

	res.DiscountAmount = Round2(in.TermPrice * res.TotalRate / 100)
	res.FinalAmount = Round2(in.TermPrice - res.DiscountAmount)
	return res
}

func override(computed float64, v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return computed
	}
	return clamp(*v)
}

func capped(total float64) float64 {
	return math.Min(total, maxPercent)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, maxPercent))
}

// Round2 rounds a currency amount to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
