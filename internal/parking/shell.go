package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"parking-lot/internal/payment"
)

// Shell drives the pool from stdin. It holds the handles returned by
// allocation, keyed by slot number, since a handle is the only capability
// through which a slot can be paid for and released.
type Shell struct {
	pool      *InstrumentedPool
	telemetry *TelemetryProvider
	scanner   *bufio.Scanner
	handles   map[int]*SlotHandle
}

func NewShell(pool *InstrumentedPool, telemetry *TelemetryProvider) *Shell {
	return &Shell{
		pool:      pool,
		telemetry: telemetry,
		scanner:   bufio.NewScanner(os.Stdin),
		handles:   make(map[int]*SlotHandle),
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		done := s.processCommand(cmdCtx, input)
		cmdSpan.End()

		if done {
			break
		}
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	command := parts[0]

	switch command {
	case "park":
		s.handlePark(ctx, parts)
	case "fee":
		s.handleFee(ctx, parts)
	case "pay":
		s.handlePay(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "exit":
		return true
	default:
		fmt.Printf("Unknown command: %s\n", command)
	}
	return false
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		fmt.Println("Usage: park <registration_number> <bike|car|truck> <duration_units>")
		return
	}

	category, err := ParseCategory(parts[2])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	durationUnits, err := strconv.Atoi(parts[3])
	if err != nil || durationUnits < 0 {
		fmt.Println("Invalid duration")
		return
	}

	vehicle, err := NewVehicle(parts[1], category)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	handle, err := s.pool.Allocate(ctx, vehicle, durationUnits)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}
	if handle == nil {
		fmt.Println("Sorry, parking lot is full")
		return
	}

	s.handles[handle.Number()] = handle

	fee, err := s.pool.QuoteFee(ctx, handle)
	if err != nil {
		fmt.Printf("Allocated slot number: %d\n", handle.Number())
		return
	}
	fmt.Printf("Allocated slot number: %d (fee due: %.2f)\n", handle.Number(), fee)
}

func (s *Shell) handleFee(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		fmt.Println("Usage: fee <slot_number>")
		return
	}

	handle, ok := s.lookupHandle(parts[1])
	if !ok {
		return
	}

	fee, err := s.pool.QuoteFee(ctx, handle)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Fee for slot %d: %.2f\n", handle.Number(), fee)
}

func (s *Shell) handlePay(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: pay <slot_number> <cash|card|upi>")
		return
	}

	handle, ok := s.lookupHandle(parts[1])
	if !ok {
		return
	}

	gate, err := payment.ByMethod(parts[2])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fee, err := s.pool.QuoteFee(ctx, handle)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	receipt, err := gate.Settle(ctx, fee)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	if err := s.pool.ConfirmPayment(ctx, handle); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Paid %.2f via %s (receipt %s)\n", receipt.Amount, receipt.Method, receipt.ID)
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		fmt.Println("Usage: leave <slot_number>")
		return
	}

	handle, ok := s.lookupHandle(parts[1])
	if !ok {
		return
	}

	if err := s.pool.Release(ctx, handle); err != nil {
		if errors.Is(err, ErrPaymentRequired) {
			fmt.Println("Payment not done! Please pay before exit.")
			return
		}
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	delete(s.handles, handle.Number())
	fmt.Printf("Slot number %d is free\n", handle.Number())
}

func (s *Shell) handleStatus(ctx context.Context) {
	infos := s.pool.Status(ctx)
	if len(infos) == 0 {
		fmt.Println("Parking lot is empty")
		return
	}

	fmt.Println("Slot No.\tRegistration No\tCategory\tUnits\tState")
	for _, info := range infos {
		fmt.Printf("%d\t\t%s\t%s\t%d\t%s\n",
			info.Number, info.Registration, info.Category, info.DurationUnits, info.State)
	}
}

func (s *Shell) lookupHandle(arg string) (*SlotHandle, bool) {
	slotNumber, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Println("Invalid slot number")
		return nil, false
	}

	handle, ok := s.handles[slotNumber]
	if !ok {
		fmt.Printf("No active ticket for slot %d\n", slotNumber)
		return nil, false
	}
	return handle, true
}
