package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	today  = day("2024-01-10")
	winter = Window{From: day("2024-01-01"), To: day("2024-02-29")}
)

func candidate(id, student uint, at time.Time) Candidate {
	return Candidate{
		RegistrationID: id,
		StudentID:      student,
		State:          "confirmed",
		RegisteredAt:   at,
		Term:           winter,
		TermActive:     true,
	}
}

func TestSiblingOrder_ByEarliestRegistration(t *testing.T) {
	s1 := candidate(1, 10, day("2024-01-02"))
	s2 := candidate(2, 11, day("2024-01-05"))
	group := []Candidate{s2, s1}

	assert.Equal(t, 1, SiblingOrder(s1, group, today))
	assert.Equal(t, 2, SiblingOrder(s2, group, today))
}

func TestSiblingOrder_CancelledSiblingDropsOut(t *testing.T) {
	s1 := candidate(1, 10, day("2024-01-02"))
	s2 := candidate(2, 11, day("2024-01-05"))
	s1.State = StateCancelled

	assert.Equal(t, 1, SiblingOrder(s2, []Candidate{s1, s2}, today))
	assert.Equal(t, 0, SiblingOrder(s1, []Candidate{s1, s2}, today))
}

func TestSiblingOrder_StudentCountedOnceAtEarliest(t *testing.T) {
	// child 10 registered twice; the later row must not push child 11 down
	a := candidate(1, 10, day("2024-01-01"))
	b := candidate(2, 11, day("2024-01-03"))
	c := candidate(3, 10, day("2024-01-04"))
	d := candidate(4, 12, day("2024-01-05"))
	group := []Candidate{a, b, c, d}

	assert.Equal(t, 1, SiblingOrder(c, group, today))
	assert.Equal(t, 2, SiblingOrder(b, group, today))
	assert.Equal(t, 3, SiblingOrder(d, group, today))
}

func TestSiblingOrder_IgnoresEndedAndInactiveTerms(t *testing.T) {
	old := candidate(1, 10, day("2023-09-01"))
	old.Term = Window{From: day("2023-09-01"), To: day("2023-12-31")}
	closed := candidate(2, 11, day("2023-12-20"))
	closed.TermActive = false
	rejected := candidate(3, 13, day("2023-12-21"))
	rejected.State = StateRejected
	cur := candidate(4, 12, day("2024-01-03"))

	assert.Equal(t, 1, SiblingOrder(cur, []Candidate{old, closed, rejected, cur}, today))
}

func TestSiblingOrder_UnlinkedMatchByIDNumber(t *testing.T) {
	byID := Candidate{RegistrationID: 1, IDNumber: "784-2015-1234567-1", State: "draft", RegisteredAt: day("2024-01-01"), Term: winter, TermActive: true}
	byReg := Candidate{RegistrationID: 2, State: "draft", RegisteredAt: day("2024-01-02"), Term: winter, TermActive: true}
	sameID := byID
	sameID.RegistrationID = 3
	sameID.RegisteredAt = day("2024-01-03")

	group := []Candidate{byID, byReg, sameID}
	assert.Equal(t, 1, SiblingOrder(sameID, group, today))
	assert.Equal(t, 2, SiblingOrder(byReg, group, today))
}

func TestSiblingOrder_EmptyGroupDefaultsToFirst(t *testing.T) {
	assert.Equal(t, 1, SiblingOrder(candidate(9, 1, today), nil, today))
}

func TestSiblingOrder_Idempotent(t *testing.T) {
	s1 := candidate(1, 10, day("2024-01-02"))
	s2 := candidate(2, 11, day("2024-01-05"))
	s3 := candidate(3, 12, day("2024-01-05"))
	group := []Candidate{s3, s1, s2}
	for i := 0; i < 5; i++ {
		assert.Equal(t, 2, SiblingOrder(s2, group, today))
		assert.Equal(t, 3, SiblingOrder(s3, group, today))
	}
}

func TestHasMultiClub(t *testing.T) {
	football := candidate(1, 10, day("2024-01-02"))
	chess := candidate(2, 10, day("2024-01-03"))
	chess.Term = Window{From: day("2024-02-29"), To: day("2024-04-30")}

	assert.True(t, HasMultiClub(football, []Candidate{football, chess}))
	assert.True(t, HasMultiClub(chess, []Candidate{football, chess}))

	chess.Term = Window{From: day("2024-03-01"), To: day("2024-04-30")}
	assert.False(t, HasMultiClub(football, []Candidate{football, chess}))
	assert.False(t, HasMultiClub(chess, []Candidate{football, chess}))
}

func TestHasMultiClub_SkipsDeadAndForeign(t *testing.T) {
	cur := candidate(1, 10, day("2024-01-02"))
	cancelled := candidate(2, 10, day("2024-01-02"))
	cancelled.State = StateCancelled
	sibling := candidate(3, 11, day("2024-01-02"))

	assert.False(t, HasMultiClub(cur, []Candidate{cancelled, sibling}))

	anon := Candidate{RegistrationID: 4, State: "draft", Term: winter}
	assert.False(t, HasMultiClub(anon, []Candidate{anon, {RegistrationID: 5, State: "draft", Term: winter}}))
}

func TestSiblingOrder_LinkedAndUnlinkedSameChild(t *testing.T) {
	linked := candidate(1, 10, day("2024-01-01"))
	linked.IDNumber = "784-2015-1234567-1"
	unlinked := Candidate{RegistrationID: 2, IDNumber: "784-2015-1234567-1", State: "draft", RegisteredAt: day("2024-01-02"), Term: winter, TermActive: true}
	sibling := candidate(3, 11, day("2024-01-03"))
	group := []Candidate{linked, unlinked, sibling}

	assert.Equal(t, 1, SiblingOrder(unlinked, group, today))
	assert.Equal(t, 2, SiblingOrder(sibling, group, today))
}

func TestHasMultiClub_MatchesByIDNumber(t *testing.T) {
	a := Candidate{RegistrationID: 1, IDNumber: "AB123456", State: "draft", Term: winter}
	b := Candidate{RegistrationID: 2, IDNumber: "AB123456", State: "confirmed", Term: winter}
	assert.True(t, HasMultiClub(a, []Candidate{b}))

	linked := candidate(3, 10, day("2024-01-02"))
	linked.IDNumber = "AB123456"
	assert.True(t, HasMultiClub(linked, []Candidate{a}))
	assert.True(t, HasMultiClub(a, []Candidate{linked}))
}

func TestIsHalfTerm(t *testing.T) {
	assert.Equal(t, day("2024-01-30"), Midpoint(winter))
	assert.True(t, IsHalfTerm(winter, day("2024-01-31")))
	assert.False(t, IsHalfTerm(winter, day("2024-01-29")))
	assert.False(t, IsHalfTerm(winter, day("2024-01-30")))
	assert.False(t, IsHalfTerm(Window{}, day("2024-01-31")))
}

func TestIsHalfTerm_IgnoresClock(t *testing.T) {
	late := time.Date(2024, 1, 30, 23, 59, 0, 0, time.UTC)
	assert.False(t, IsHalfTerm(winter, late))
}

func TestOverlapsInclusive(t *testing.T) {
	a := Window{From: day("2024-01-01"), To: day("2024-01-31")}
	assert.True(t, Overlaps(a, Window{From: day("2024-01-31"), To: day("2024-02-10")}))
	assert.False(t, Overlaps(a, Window{From: day("2024-02-01"), To: day("2024-02-10")}))
	assert.True(t, Overlaps(a, Window{From: day("2023-12-01"), To: day("2024-03-01")}))
}
