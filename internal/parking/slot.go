package parking

import "sync"

type SlotState int

const (
	SlotFree SlotState = iota
	SlotOccupied
	SlotPaid
)

func (s SlotState) String() string {
	switch s {
	case SlotFree:
		return "free"
	case SlotOccupied:
		return "occupied"
	case SlotPaid:
		return "paid"
	}
	return "unknown"
}

// Slot is a single unit of parking capacity. It cycles through
// free -> occupied -> paid -> free for the life of the process; payment is
// mandatory, so there is no occupied -> free shortcut. Each slot carries
// its own mutex so operations on unrelated slots never contend.
type Slot struct {
	Number int

	mu          sync.Mutex
	state       SlotState
	vehicle     *Vehicle
	billedUnits int
}

func NewSlot(number int) *Slot {
	return &Slot{
		Number: number,
		state:  SlotFree,
	}
}

// tryAssign claims the slot for a vehicle if it is free. The billed
// duration is fixed here and never recomputed.
func (s *Slot) tryAssign(vehicle *Vehicle, durationUnits int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SlotFree {
		return false
	}

	s.state = SlotOccupied
	s.vehicle = vehicle
	s.billedUnits = durationUnits
	return true
}

// markPaid records that the outstanding fee has been settled. Confirming
// against a slot that is not awaiting payment is a caller bug and is
// surfaced rather than swallowed.
func (s *Slot) markPaid() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SlotOccupied {
		return ErrNotOccupied
	}

	s.state = SlotPaid
	return nil
}

// release frees the slot. An occupied slot is rejected until its payment
// has been confirmed; releasing an already-free slot succeeds so exit
// retries stay idempotent. The bool reports whether this call performed
// the paid-to-free transition, so observers can tell a real release from
// a retried one.
func (s *Slot) release() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SlotOccupied:
		return false, ErrPaymentRequired
	case SlotPaid:
		s.state = SlotFree
		s.vehicle = nil
		s.billedUnits = 0
		return true, nil
	}
	return false, nil
}

// SlotInfo is a point-in-time copy of a slot's visible state.
type SlotInfo struct {
	Number        int
	State         SlotState
	Registration  string
	Category      Category
	DurationUnits int
}

func (s *Slot) snapshot() SlotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := SlotInfo{
		Number:        s.Number,
		State:         s.state,
		DurationUnits: s.billedUnits,
	}
	if s.vehicle != nil {
		info.Registration = s.vehicle.RegistrationNumber
		info.Category = s.vehicle.Category
	}
	return info
}
