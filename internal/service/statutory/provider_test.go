package statutory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func config(effective time.Time, pfRate string) statutory.Config {
	rate, err := decimal.NewFromString(pfRate)
	if err != nil {
		panic(err)
	}
	return statutory.Config{
		EffectiveFrom: effective,
		PFRatePercent: rate,
	}
}

func TestRates_PicksNewestEffectiveConfig(t *testing.T) {
	t.Parallel()

	older := config(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "10")
	newer := config(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "12")
	provider := NewStaticProvider(older, newer)

	// July 2026 falls after both effective dates: the newest wins.
	rates, err := provider.Rates(context.Background(), 7, 2026)
	require.NoError(t, err)
	assert.True(t, rates.PFRatePercent.Equal(newer.PFRatePercent))

	// January 2025 predates the newer config, so the older one applies.
	rates, err = provider.Rates(context.Background(), 1, 2025)
	require.NoError(t, err)
	assert.True(t, rates.PFRatePercent.Equal(older.PFRatePercent))
}

func TestRates_EffectiveOnPeriodStart(t *testing.T) {
	t.Parallel()

	cfg := config(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "12")
	provider := NewStaticProvider(cfg)

	rates, err := provider.Rates(context.Background(), 4, 2025)
	require.NoError(t, err)
	assert.True(t, rates.PFRatePercent.Equal(cfg.PFRatePercent))
}

func TestRates_NoConfigForPeriod(t *testing.T) {
	t.Parallel()

	provider := NewStaticProvider(config(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "12"))

	_, err := provider.Rates(context.Background(), 3, 2025)
	assert.ErrorIs(t, err, statutory.ErrNoRatesForPeriod)
}

func TestNewFileProvider(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rates.json")
	content := `[
		{
			"effective_from": "2025-04-01T00:00:00Z",
			"pf_rate_percent": "12",
			"pf_wage_ceiling": "15000",
			"esi_rate_percent": "0.75",
			"esi_wage_ceiling": "21000",
			"professional_tax_slabs": [
				{"min": "0", "max": "10000", "amount": "0"},
				{"min": "10000.01", "amount": "200"}
			]
		}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	provider, err := NewFileProvider(path)
	require.NoError(t, err)

	rates, err := provider.Rates(context.Background(), 7, 2026)
	require.NoError(t, err)
	assert.True(t, rates.PFRatePercent.Equal(decimal.NewFromInt(12)))
	assert.Len(t, rates.ProfessionalTaxSlabs, 2)
}

func TestNewFileProvider_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileProvider(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestNewFileProvider_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	_, err := NewFileProvider(path)
	assert.Error(t, err)
}
