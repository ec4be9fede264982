package dispatch

import "errors"

var (
	// ErrAlreadyAssigned is returned to every claimer that lost the race.
	ErrAlreadyAssigned = errors.New("mission already assigned to another provider")

	// ErrNoOffer is returned when a provider acts on a mission that was
	// never dispatched to them, or whose offer is no longer pending.
	ErrNoOffer = errors.New("no pending offer for this mission")
)
