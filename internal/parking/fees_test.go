package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteFeeRates(t *testing.T) {
	tests := []struct {
		category Category
		units    int
		want     float64
	}{
		{CategoryBike, 4, 20},
		{CategoryCar, 4, 40},
		{CategoryTruck, 4, 80},
		{CategoryBike, 1, 5},
		{CategoryCar, 1, 10},
		{CategoryTruck, 1, 20},
	}

	for _, tt := range tests {
		amount, err := QuoteFee(tt.category, tt.units)
		require.NoError(t, err)
		assert.Equal(t, tt.want, amount, "category %s, %d units", tt.category, tt.units)
	}
}

func TestQuoteFeeZeroDuration(t *testing.T) {
	for _, category := range []Category{CategoryBike, CategoryCar, CategoryTruck} {
		amount, err := QuoteFee(category, 0)
		require.NoError(t, err)
		assert.Zero(t, amount)
	}
}

func TestQuoteFeeDeterministic(t *testing.T) {
	first, err := QuoteFee(CategoryTruck, 7)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		amount, err := QuoteFee(CategoryTruck, 7)
		require.NoError(t, err)
		assert.Equal(t, first, amount)
	}
}

func TestQuoteFeeUnknownCategory(t *testing.T) {
	_, err := QuoteFee(Category("boat"), 4)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestQuoteFeeNegativeDuration(t *testing.T) {
	_, err := QuoteFee(CategoryCar, -1)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
