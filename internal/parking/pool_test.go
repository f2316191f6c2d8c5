package parking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVehicle(t *testing.T, registration string, category Category) *Vehicle {
	t.Helper()
	vehicle, err := NewVehicle(registration, category)
	require.NoError(t, err)
	return vehicle
}

func TestNewPool(t *testing.T) {
	pool := NewPool(6)

	assert.Equal(t, 6, pool.Capacity())
	require.Len(t, pool.slots, 6)

	for i, slot := range pool.slots {
		assert.Equal(t, i+1, slot.Number)
		assert.Equal(t, SlotFree, slot.state)
	}
}

func TestPoolAllocateFirstFit(t *testing.T) {
	pool := NewPool(3)

	for i := 1; i <= 3; i++ {
		handle, err := pool.Allocate(mustVehicle(t, fmt.Sprintf("KA01HH%04d", i), CategoryCar), 2)
		require.NoError(t, err)
		require.NotNil(t, handle)
		assert.Equal(t, i, handle.Number())
	}

	handle, err := pool.Allocate(mustVehicle(t, "KA01HH7777", CategoryBike), 1)
	require.NoError(t, err)
	assert.Nil(t, handle, "a full pool yields a nil handle, not an error")
}

func TestPoolAllocateZeroCapacity(t *testing.T) {
	pool := NewPool(0)

	handle, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryCar), 2)
	require.NoError(t, err)
	assert.Nil(t, handle)
}

func TestPoolAllocateNegativeDuration(t *testing.T) {
	pool := NewPool(1)

	_, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryCar), -2)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestPoolReleaseRequiresPayment(t *testing.T) {
	for _, category := range []Category{CategoryBike, CategoryCar, CategoryTruck} {
		for _, units := range []int{0, 1, 4} {
			pool := NewPool(1)
			handle, err := pool.Allocate(mustVehicle(t, "KA01HH1234", category), units)
			require.NoError(t, err)
			require.NotNil(t, handle)

			err = pool.Release(handle)
			assert.ErrorIs(t, err, ErrPaymentRequired, "category %s, %d units", category, units)

			// The rejected release must leave the slot untouched.
			infos := pool.Status()
			require.Len(t, infos, 1)
			assert.Equal(t, SlotOccupied, infos[0].State)
		}
	}
}

func TestPoolExitProtocol(t *testing.T) {
	pool := NewPool(3)

	handle, err := pool.Allocate(mustVehicle(t, "KA01AB1234", CategoryCar), 4)
	require.NoError(t, err)
	require.NotNil(t, handle)

	fee, err := pool.QuoteFee(handle)
	require.NoError(t, err)
	assert.Equal(t, 40.0, fee)

	// Leaving before payment is the one forbidden transition.
	assert.ErrorIs(t, pool.Release(handle), ErrPaymentRequired)

	require.NoError(t, pool.ConfirmPayment(handle))
	require.NoError(t, pool.Release(handle))

	// The slot is indistinguishable from its initial free state: no status
	// entry, and the next allocation claims it again.
	assert.Empty(t, pool.Status())

	next, err := pool.Allocate(mustVehicle(t, "KA01HH9999", CategoryBike), 1)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, handle.Number(), next.Number())
}

func TestPoolConfirmPaymentErrors(t *testing.T) {
	pool := NewPool(1)

	handle, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryCar), 2)
	require.NoError(t, err)
	require.NotNil(t, handle)

	require.NoError(t, pool.ConfirmPayment(handle))

	// Confirming twice is a caller bug and must surface.
	assert.ErrorIs(t, pool.ConfirmPayment(handle), ErrNotOccupied)

	require.NoError(t, pool.Release(handle))

	// Confirming against a freed slot must surface too.
	assert.ErrorIs(t, pool.ConfirmPayment(handle), ErrNotOccupied)
}

func TestPoolReleaseIdempotent(t *testing.T) {
	pool := NewPool(1)

	handle, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryBike), 2)
	require.NoError(t, err)
	require.NotNil(t, handle)

	require.NoError(t, pool.ConfirmPayment(handle))
	require.NoError(t, pool.Release(handle))
	require.NoError(t, pool.Release(handle), "releasing an already-free slot reports success")
}

func TestPoolReleaseReportsTransition(t *testing.T) {
	pool := NewPool(1)

	handle, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryCar), 2)
	require.NoError(t, err)
	require.NotNil(t, handle)

	freed, err := pool.release(handle)
	assert.ErrorIs(t, err, ErrPaymentRequired)
	assert.False(t, freed)

	require.NoError(t, pool.ConfirmPayment(handle))

	freed, err = pool.release(handle)
	require.NoError(t, err)
	assert.True(t, freed, "the paid release frees the slot")

	// The idempotent retry succeeds without reporting a second transition,
	// so occupancy accounting built on the flag cannot go negative.
	freed, err = pool.release(handle)
	require.NoError(t, err)
	assert.False(t, freed)
}

func TestPoolQuoteFeeFrozenAtAllocation(t *testing.T) {
	pool := NewPool(1)

	handle, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryTruck), 3)
	require.NoError(t, err)
	require.NotNil(t, handle)

	first, err := pool.QuoteFee(handle)
	require.NoError(t, err)
	assert.Equal(t, 60.0, first)

	require.NoError(t, pool.ConfirmPayment(handle))

	again, err := pool.QuoteFee(handle)
	require.NoError(t, err)
	assert.Equal(t, first, again, "quote is invariant under payment confirmation")

	require.NoError(t, pool.Release(handle))

	after, err := pool.QuoteFee(handle)
	require.NoError(t, err)
	assert.Equal(t, first, after, "quote is invariant after release")
}

func TestPoolCapacityOneScenario(t *testing.T) {
	pool := NewPool(1)

	bike, err := pool.Allocate(mustVehicle(t, "KA01BB0001", CategoryBike), 2)
	require.NoError(t, err)
	require.NotNil(t, bike)

	car, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryCar), 2)
	require.NoError(t, err)
	assert.Nil(t, car)
}

func TestPoolStatusAndFind(t *testing.T) {
	pool := NewPool(4)

	h1, err := pool.Allocate(mustVehicle(t, "KA01HH1234", CategoryCar), 4)
	require.NoError(t, err)
	require.NotNil(t, h1)
	h2, err := pool.Allocate(mustVehicle(t, "KA01HH9999", CategoryBike), 1)
	require.NoError(t, err)
	require.NotNil(t, h2)

	require.NoError(t, pool.ConfirmPayment(h1))

	infos := pool.Status()
	require.Len(t, infos, 2)
	assert.Equal(t, 1, infos[0].Number)
	assert.Equal(t, SlotPaid, infos[0].State)
	assert.Equal(t, "KA01HH1234", infos[0].Registration)
	assert.Equal(t, CategoryCar, infos[0].Category)
	assert.Equal(t, 4, infos[0].DurationUnits)
	assert.Equal(t, 2, infos[1].Number)
	assert.Equal(t, SlotOccupied, infos[1].State)

	slotNumber, found := pool.FindByRegistration("KA01HH9999")
	assert.True(t, found)
	assert.Equal(t, 2, slotNumber)

	_, found = pool.FindByRegistration("NOTFOUND")
	assert.False(t, found)
}

func TestPoolConcurrentAllocation(t *testing.T) {
	const (
		capacity = 10
		callers  = 25
	)

	pool := NewPool(capacity)

	var wg sync.WaitGroup
	handles := make([]*SlotHandle, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vehicle, err := NewVehicle(fmt.Sprintf("KA01HH%04d", i), CategoryCar)
			if err != nil {
				t.Error(err)
				return
			}
			handle, err := pool.Allocate(vehicle, 1)
			if err != nil {
				t.Error(err)
				return
			}
			handles[i] = handle
		}(i)
	}
	wg.Wait()

	claimed := make(map[int]bool)
	successes := 0
	for _, handle := range handles {
		if handle == nil {
			continue
		}
		successes++
		assert.False(t, claimed[handle.Number()], "slot %d allocated twice", handle.Number())
		claimed[handle.Number()] = true
	}

	assert.Equal(t, capacity, successes, "exactly capacity allocations succeed")
}

func TestPoolConcurrentCycle(t *testing.T) {
	const workers = 8

	pool := NewPool(4)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				vehicle, err := NewVehicle(fmt.Sprintf("KA%02dHH%04d", i, j), CategoryBike)
				if err != nil {
					t.Error(err)
					return
				}
				handle, err := pool.Allocate(vehicle, 1)
				if err != nil {
					t.Error(err)
					return
				}
				if handle == nil {
					continue // pool full, expected under contention
				}
				if err := pool.ConfirmPayment(handle); err != nil {
					t.Errorf("confirm on slot %d: %v", handle.Number(), err)
					return
				}
				if err := pool.Release(handle); err != nil {
					t.Errorf("release on slot %d: %v", handle.Number(), err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, pool.Status(), "all slots free after every cycle completes")
}
