package parking

import (
	"errors"
	"testing"
)

func TestNewVehicle(t *testing.T) {
	regNumber := "KA01HH1234"

	vehicle, err := NewVehicle(regNumber, CategoryCar)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if vehicle.RegistrationNumber != regNumber {
		t.Errorf("Expected registration number %s, got %s", regNumber, vehicle.RegistrationNumber)
	}

	if vehicle.Category != CategoryCar {
		t.Errorf("Expected category %s, got %s", CategoryCar, vehicle.Category)
	}
}

func TestNewVehicleInvalidCategory(t *testing.T) {
	_, err := NewVehicle("KA01HH1234", Category("boat"))
	if !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("Expected ErrInvalidCategory, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"bike", "car", "truck"} {
		category, err := ParseCategory(s)
		if err != nil {
			t.Errorf("Unexpected error for %q: %v", s, err)
		}
		if string(category) != s {
			t.Errorf("Expected category %q, got %q", s, category)
		}
	}

	if _, err := ParseCategory("spaceship"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("Expected ErrInvalidCategory, got %v", err)
	}
}
