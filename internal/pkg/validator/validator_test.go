package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty("x"))
}

func TestIsValidPeriod(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidPeriod(1, 2026))
	assert.True(t, IsValidPeriod(12, 2000))
	assert.False(t, IsValidPeriod(0, 2026))
	assert.False(t, IsValidPeriod(13, 2026))
	assert.False(t, IsValidPeriod(6, 1999))
}

func TestIsValidDate(t *testing.T) {
	t.Parallel()

	date, ok := IsValidDate("2026-07-31")
	assert.True(t, ok)
	assert.Equal(t, 2026, date.Year())

	_, ok = IsValidDate("31-07-2026")
	assert.False(t, ok)

	_, ok = IsValidDate("2026-02-30")
	assert.False(t, ok)
}

func TestWithinTolerance(t *testing.T) {
	t.Parallel()

	one := decimal.NewFromInt(1)
	assert.True(t, WithinTolerance(decimal.NewFromInt(50000), decimal.NewFromFloat(50000.99), one))
	assert.True(t, WithinTolerance(decimal.NewFromFloat(50000.99), decimal.NewFromInt(50000), one))
	assert.False(t, WithinTolerance(decimal.NewFromInt(50000), decimal.NewFromInt(50002), one))
}

func TestValidationErrorsToMap(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{
		{Field: "month", Message: "must be between 1 and 12"},
		{Field: "year", Message: "must be 2000 or later"},
	}

	m := errs.ToMap()
	assert.Equal(t, "must be between 1 and 12", m["month"])
	assert.Equal(t, "must be 2000 or later", m["year"])
	assert.Contains(t, errs.Error(), "month: must be between 1 and 12")
}
