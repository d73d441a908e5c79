package statutory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testConfig() Config {
	max1 := dec("10000")
	max2 := dec("15000")
	return Config{
		PFRatePercent:  dec("12"),
		PFWageCeiling:  dec("15000"),
		ESIRatePercent: dec("0.75"),
		ESIWageCeiling: dec("21000"),
		ProfessionalTaxSlabs: []Slab{
			{Min: dec("0"), Max: &max1, Amount: dec("0")},
			{Min: dec("10000.01"), Max: &max2, Amount: dec("150")},
			{Min: dec("15000.01"), Amount: dec("200")},
		},
	}
}

func TestPF(t *testing.T) {
	t.Parallel()

	c := testConfig()
	assert.True(t, c.PF(dec("10000")).Equal(dec("1200")))
	// Ceiling caps the contribution base.
	assert.True(t, c.PF(dec("50000")).Equal(dec("1800")))
}

func TestESI(t *testing.T) {
	t.Parallel()

	c := testConfig()
	assert.True(t, c.ESI(dec("20000")).Equal(dec("150")))
	assert.True(t, c.ESI(dec("50000")).Equal(dec("157.5")))
}

func TestProfessionalTax(t *testing.T) {
	t.Parallel()

	c := testConfig()
	assert.True(t, c.ProfessionalTax(dec("8000")).IsZero())
	assert.True(t, c.ProfessionalTax(dec("12000")).Equal(dec("150")))
	assert.True(t, c.ProfessionalTax(dec("15000")).Equal(dec("150")))
	assert.True(t, c.ProfessionalTax(dec("50000")).Equal(dec("200")))
}
