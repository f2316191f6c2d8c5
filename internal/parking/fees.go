package parking

import "fmt"

// Hourly rates per category. Distinct constants so a mispriced category
// shows up immediately in a quote.
const (
	bikeRatePerUnit  = 5.0
	carRatePerUnit   = 10.0
	truckRatePerUnit = 20.0
)

// QuoteFee prices a stay: rate(category) * durationUnits. It is a pure
// function; the same inputs always produce the same amount. An unknown
// category is an error, never a silent zero, because a zero-priced stay
// would mask a billing bug.
func QuoteFee(category Category, durationUnits int) (float64, error) {
	if durationUnits < 0 {
		return 0, fmt.Errorf("%w: %d units", ErrInvalidDuration, durationUnits)
	}

	var rate float64
	switch category {
	case CategoryBike:
		rate = bikeRatePerUnit
	case CategoryCar:
		rate = carRatePerUnit
	case CategoryTruck:
		rate = truckRatePerUnit
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	return rate * float64(durationUnits), nil
}
