package events

import "github.com/roayati/clubs/internal/models"

// OnTransition is called after a registration changes state and the
// transaction has committed. services will call this if it's set.
var OnTransition func(reg models.Registration, from, to string)

// Transition invokes OnTransition when a hook is installed.
func Transition(reg models.Registration, from, to string) {
	if OnTransition != nil {
		OnTransition(reg, from, to)
	}
}
