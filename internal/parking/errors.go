package parking

import "errors"

var (
	// ErrInvalidCategory marks a category tag outside the known set.
	ErrInvalidCategory = errors.New("invalid vehicle category")

	// ErrInvalidDuration marks a negative billed duration.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrNotOccupied is returned when a payment is confirmed against a
	// slot that is not awaiting one.
	ErrNotOccupied = errors.New("slot is not awaiting payment")

	// ErrPaymentRequired is returned when a release is attempted on a
	// slot whose fee has not been settled. A vehicle never leaves unpaid.
	ErrPaymentRequired = errors.New("payment required before exit")
)
