package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roayati/clubs/internal/models"
)

func TestTransition(t *testing.T) {
	Transition(models.Registration{Code: "REG-1"}, "draft", "confirmed") // no hook installed

	var got []string
	OnTransition = func(reg models.Registration, from, to string) {
		got = append(got, reg.Code+":"+from+">"+to)
	}
	t.Cleanup(func() { OnTransition = nil })

	Transition(models.Registration{Code: "REG-1"}, "draft", "confirmed")
	assert.Equal(t, []string{"REG-1:draft>confirmed"}, got)
}
