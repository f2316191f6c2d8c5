package parking

import "fmt"

type Category string

const (
	CategoryBike  Category = "bike"
	CategoryCar   Category = "car"
	CategoryTruck Category = "truck"
)

// Vehicle is an immutable registration number plus category tag. The
// original requirements model bikes, cars and trucks as separate types,
// but none of them behaves differently, so one record with a tag is enough.
type Vehicle struct {
	RegistrationNumber string
	Category           Category
}

// NewVehicle builds a vehicle record. Unknown categories are rejected here
// so a bad tag never reaches the fee table.
func NewVehicle(registrationNumber string, category Category) (*Vehicle, error) {
	switch category {
	case CategoryBike, CategoryCar, CategoryTruck:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	return &Vehicle{
		RegistrationNumber: registrationNumber,
		Category:           category,
	}, nil
}

// ParseCategory maps a caller-supplied string onto a known category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBike:
		return CategoryBike, nil
	case CategoryCar:
		return CategoryCar, nil
	case CategoryTruck:
		return CategoryTruck, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}
