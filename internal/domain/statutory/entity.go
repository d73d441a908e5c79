package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is one effective-dated set of statutory rates. PF and ESI are
// percentage contributions computed against the adjusted gross capped at the
// respective wage ceilings; professional tax is a slab lookup. Slab
// boundaries are jurisdiction policy and arrive from configuration, never
// hard-coded in the engine.
type Config struct {
	EffectiveFrom  time.Time       `json:"effective_from"`
	PFRatePercent  decimal.Decimal `json:"pf_rate_percent"`
	PFWageCeiling  decimal.Decimal `json:"pf_wage_ceiling"`
	ESIRatePercent decimal.Decimal `json:"esi_rate_percent"`
	ESIWageCeiling decimal.Decimal `json:"esi_wage_ceiling"`
	ProfessionalTaxSlabs []Slab    `json:"professional_tax_slabs"`
}

// Slab is one professional-tax bracket. Max nil means open-ended.
type Slab struct {
	Min    decimal.Decimal  `json:"min"`
	Max    *decimal.Decimal `json:"max,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
}

var oneHundred = decimal.NewFromInt(100)

// PF computes the provident-fund contribution on wage, applying the ceiling.
func (c Config) PF(wage decimal.Decimal) decimal.Decimal {
	base := wage
	if c.PFWageCeiling.IsPositive() && base.GreaterThan(c.PFWageCeiling) {
		base = c.PFWageCeiling
	}
	return base.Mul(c.PFRatePercent).Div(oneHundred).Round(2)
}

// ESI computes the employee state-insurance contribution on wage, applying
// the ceiling.
func (c Config) ESI(wage decimal.Decimal) decimal.Decimal {
	base := wage
	if c.ESIWageCeiling.IsPositive() && base.GreaterThan(c.ESIWageCeiling) {
		base = c.ESIWageCeiling
	}
	return base.Mul(c.ESIRatePercent).Div(oneHundred).Round(2)
}

// ProfessionalTax looks up the slab containing wage.
func (c Config) ProfessionalTax(wage decimal.Decimal) decimal.Decimal {
	for _, slab := range c.ProfessionalTaxSlabs {
		if wage.LessThan(slab.Min) {
			continue
		}
		if slab.Max != nil && wage.GreaterThan(*slab.Max) {
			continue
		}
		return slab.Amount
	}
	return decimal.Zero
}
