package contract

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("contract not found")
	ErrValidation        = errors.New("invalid contract")
	ErrDealNotWon        = errors.New("contracts can only be generated for won deals")
	ErrInvalidTransition = errors.New("invalid contract status transition")
)

// validTransitions defines allowed contract status moves.
var validTransitions = map[Status][]Status{
	StatusDraft:           {StatusSent, StatusCancelled},
	StatusSent:            {StatusPartiallySigned, StatusFullyExecuted, StatusCancelled},
	StatusPartiallySigned: {StatusFullyExecuted, StatusCancelled},
	StatusFullyExecuted:   {},
	StatusCancelled:       {},
}

// Valid reports whether s is a known contract status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition checks whether a status change is allowed.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return nil
}
