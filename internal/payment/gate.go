// Package payment holds the settlement boundary of the parking lot. The
// pool only needs to know that an amount was settled; which rail did the
// settling stays on this side of the line.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrDeclined is returned when a rail refuses a settlement. The slot
	// stays occupied and the charge is safe to retry.
	ErrDeclined = errors.New("payment declined")

	// ErrUnknownMethod marks a rail name outside the supported set.
	ErrUnknownMethod = errors.New("unknown payment method")
)

// Receipt is proof of one settlement. The pool never reads anything off it
// beyond its existence; it exists for the presentation layer.
type Receipt struct {
	ID     string
	Amount float64
	Method string
}

// Gate settles an exact quoted amount. Implementations must treat a retry
// of the same logical charge as safe.
type Gate interface {
	Settle(ctx context.Context, amount float64) (Receipt, error)
}

// ByMethod selects the configured rail for a caller-supplied method name.
func ByMethod(method string) (Gate, error) {
	switch method {
	case MethodCash:
		return NewCashGate(), nil
	case MethodCard:
		return NewCardGate(), nil
	case MethodUPI:
		return NewUPIGate(), nil
	}
	return nil, ErrUnknownMethod
}
