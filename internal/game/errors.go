package game

import "fmt"

// RejectionCode is a stable, testable code returned by Validate/SubmitOrder
// when a proposed order is rejected. Callers surface this to the user; the
// game state is left unchanged.
type RejectionCode string

const (
	RejectInvalidOrderNumber        RejectionCode = "INVALID_ORDER_NUMBER"
	RejectPlayerNotFound            RejectionCode = "PLAYER_NOT_FOUND"
	RejectKnightNotFound            RejectionCode = "KNIGHT_NOT_FOUND"
	RejectKnightNotOwned            RejectionCode = "KNIGHT_NOT_OWNED"
	RejectKnightDead                RejectionCode = "KNIGHT_DEAD"
	RejectHexNotFound               RejectionCode = "HEX_NOT_FOUND"
	RejectFromMismatch              RejectionCode = "FROM_MISMATCH"
	RejectFortifyDestinationInvalid RejectionCode = "FORTIFY_DESTINATION_INVALID"
	RejectPromoteDestinationInvalid RejectionCode = "PROMOTE_DESTINATION_INVALID"
	RejectPromoteInsufficientTroops RejectionCode = "PROMOTE_INSUFFICIENT_TROOPS"
	RejectNotNeighbor               RejectionCode = "NOT_NEIGHBOR"
	RejectInvalidTroopCount         RejectionCode = "INVALID_TROOP_COUNT"
	RejectInsufficientTroops        RejectionCode = "INSUFFICIENT_TROOPS"
	RejectAttackTargetNotEnemy      RejectionCode = "ATTACK_TARGET_NOT_ENEMY"
)

// RejectionError wraps a RejectionCode so it satisfies the error interface
// while letting callers type-assert for the code with errors.As.
type RejectionError struct {
	Code RejectionCode
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Code)
}

func reject(code RejectionCode) error {
	return &RejectionError{Code: code}
}

// PreconditionError marks an internal bug or corrupt state: something the
// validator should have already caught, or arithmetic that would make a
// troop count negative. The engine never returns a partial state when this
// happens; callers should treat it as an unrecoverable assertion failure.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated: %s", e.Reason)
}

func panicPrecondition(reason string) {
	panic(&PreconditionError{Reason: reason})
}
