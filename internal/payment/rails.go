package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	MethodCash = "cash"
	MethodCard = "card"
	MethodUPI  = "upi"
)

type CashGate struct{}

func NewCashGate() *CashGate {
	return &CashGate{}
}

func (g *CashGate) Settle(ctx context.Context, amount float64) (Receipt, error) {
	return settle(ctx, MethodCash, amount)
}

type CardGate struct{}

func NewCardGate() *CardGate {
	return &CardGate{}
}

func (g *CardGate) Settle(ctx context.Context, amount float64) (Receipt, error) {
	return settle(ctx, MethodCard, amount)
}

type UPIGate struct{}

func NewUPIGate() *UPIGate {
	return &UPIGate{}
}

func (g *UPIGate) Settle(ctx context.Context, amount float64) (Receipt, error) {
	return settle(ctx, MethodUPI, amount)
}

func settle(ctx context.Context, method string, amount float64) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	if amount < 0 {
		return Receipt{}, fmt.Errorf("%w: negative amount %.2f", ErrDeclined, amount)
	}

	return Receipt{
		ID:     uuid.New().String(),
		Amount: amount,
		Method: method,
	}, nil
}
