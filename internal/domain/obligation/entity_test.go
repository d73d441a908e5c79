package obligation

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

func TestAdvanceDeductible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		per       string
		remaining string
		want      string
	}{
		{"full installment", "2000", "6000", "2000"},
		{"capped by remaining", "2000", "1500", "1500"},
		{"absorbs rounding residue", "3333.33", "3333.34", "3333.34"},
		{"nothing left", "2000", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Advance{PerInstallment: dec(tt.per), RemainingAmount: dec(tt.remaining)}
			assert.True(t, a.Deductible().Equal(dec(tt.want)),
				"got %s, want %s", a.Deductible(), tt.want)
		})
	}
}

func TestAdvanceOpen(t *testing.T) {
	t.Parallel()

	assert.True(t, Advance{Status: AdvanceStatusPending, RemainingAmount: dec("100")}.Open())
	assert.True(t, Advance{Status: AdvanceStatusPartial, RemainingAmount: dec("100")}.Open())
	assert.False(t, Advance{Status: AdvanceStatusDeducted, RemainingAmount: decimal.Zero}.Open())
	assert.False(t, Advance{Status: AdvanceStatusCancelled, RemainingAmount: dec("100")}.Open())
	assert.False(t, Advance{Status: AdvanceStatusPending, RemainingAmount: decimal.Zero}.Open())
}

func TestLoanRemainingEMIs(t *testing.T) {
	t.Parallel()

	l := Loan{NumberOfEMIs: 12, TotalPaidEMIs: 1}
	assert.Equal(t, 11, l.RemainingEMIs())
}

func TestLoanDeductible(t *testing.T) {
	t.Parallel()

	mid := Loan{
		NumberOfEMIs:     12,
		TotalPaidEMIs:    1,
		EMIAmount:        dec("9333.33"),
		RemainingBalance: dec("102666.67"),
	}
	assert.True(t, mid.Deductible().Equal(dec("9333.33")))

	// The final EMI settles the whole balance, rounding residue included.
	last := Loan{
		NumberOfEMIs:     12,
		TotalPaidEMIs:    11,
		EMIAmount:        dec("9333.33"),
		RemainingBalance: dec("9333.37"),
	}
	assert.True(t, last.Deductible().Equal(dec("9333.37")))
}

func TestLoanCompletionPercent(t *testing.T) {
	t.Parallel()

	l := Loan{NumberOfEMIs: 12, TotalPaidEMIs: 3}
	assert.True(t, l.CompletionPercent().Equal(dec("25")))

	assert.True(t, Loan{}.CompletionPercent().IsZero())
}
