package parking

import "fmt"

// Pool owns a fixed set of slots and serializes their allocation and
// release. Build exactly one per process and hand it by reference to every
// caller that needs it; there is no package-level instance.
type Pool struct {
	capacity int
	slots    []*Slot
}

func NewPool(capacity int) *Pool {
	slots := make([]*Slot, capacity)
	for i := 0; i < capacity; i++ {
		slots[i] = NewSlot(i + 1)
	}

	return &Pool{
		capacity: capacity,
		slots:    slots,
	}
}

func (p *Pool) Capacity() int {
	return p.capacity
}

// SlotHandle is a capability to act on one allocated slot. Category and
// duration are frozen into the handle at allocation time, so fee quotes
// against it stay stable no matter what happens to the slot afterwards.
type SlotHandle struct {
	slot          *Slot
	registration  string
	category      Category
	durationUnits int
}

func (h *SlotHandle) Number() int {
	return h.slot.Number
}

func (h *SlotHandle) Registration() string {
	return h.registration
}

func (h *SlotHandle) Category() Category {
	return h.category
}

func (h *SlotHandle) DurationUnits() int {
	return h.durationUnits
}

// Allocate claims the first free slot in pool order for the vehicle and
// returns a handle to it. A nil handle with a nil error means the pool is
// full; callers branch on it rather than unwrap an error, since running
// out of capacity is an expected outcome, not a failure.
func (p *Pool) Allocate(vehicle *Vehicle, durationUnits int) (*SlotHandle, error) {
	if durationUnits < 0 {
		return nil, fmt.Errorf("%w: %d units", ErrInvalidDuration, durationUnits)
	}

	for _, slot := range p.slots {
		if slot.tryAssign(vehicle, durationUnits) {
			return &SlotHandle{
				slot:          slot,
				registration:  vehicle.RegistrationNumber,
				category:      vehicle.Category,
				durationUnits: durationUnits,
			}, nil
		}
	}
	return nil, nil
}

// QuoteFee prices the stay referenced by the handle. Repeated calls always
// return the same amount.
func (p *Pool) QuoteFee(handle *SlotHandle) (float64, error) {
	return QuoteFee(handle.category, handle.durationUnits)
}

// ConfirmPayment transitions the slot from occupied to paid. It fails with
// ErrNotOccupied when the slot is not awaiting payment, so a double
// confirmation surfaces instead of silently succeeding.
func (p *Pool) ConfirmPayment(handle *SlotHandle) error {
	return handle.slot.markPaid()
}

// Release frees the slot behind the handle. An unpaid slot is rejected
// with ErrPaymentRequired and left untouched; releasing an already-free
// slot reports success.
func (p *Pool) Release(handle *SlotHandle) error {
	_, err := p.release(handle)
	return err
}

// release additionally reports whether this call freed the slot, which
// the instrumented wrapper needs to keep its occupancy gauge honest
// across idempotent exit retries.
func (p *Pool) release(handle *SlotHandle) (bool, error) {
	return handle.slot.release()
}

// Status reports the occupied and paid slots in pool order.
func (p *Pool) Status() []SlotInfo {
	var infos []SlotInfo
	for _, slot := range p.slots {
		if info := slot.snapshot(); info.State != SlotFree {
			infos = append(infos, info)
		}
	}
	return infos
}

// FindByRegistration returns the slot number holding the given
// registration, or false when no slot does.
func (p *Pool) FindByRegistration(registrationNumber string) (int, bool) {
	for _, slot := range p.slots {
		info := slot.snapshot()
		if info.State != SlotFree && info.Registration == registrationNumber {
			return info.Number, true
		}
	}
	return 0, false
}
