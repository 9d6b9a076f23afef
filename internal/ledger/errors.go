package ledger

import "errors"

// Every operation fails with exactly one of these sentinels, wrapped with
// context via fmt.Errorf("...: %w", ...). Callers branch with errors.Is.
var (
	// ErrUnauthorized means the caller lacks the required role or ownership.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means a referenced entity id or address does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is forbidden in the entity's
	// current lifecycle state (e.g. negotiating a terminal relationship).
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientQuantity means a transfer or purchase exceeds the
	// available quantity.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrInsufficientInventory means a manufacturing ingredient exceeds the
	// caller's remaining inventory of that product.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrDeadlineExceeded means a temporal precondition has passed.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrNotYetExpired means a deadline-based cancellation was attempted
	// before the deadline.
	ErrNotYetExpired = errors.New("not yet expired")

	// ErrDuplicateRegistration means the address is already registered.
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrNotYourTurn means the negotiation turn belongs to the counterparty.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrValidation means the input itself is malformed (negative amounts,
	// mismatched array lengths, empty required fields).
	ErrValidation = errors.New("validation error")
)
