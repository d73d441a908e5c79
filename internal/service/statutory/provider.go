// Package statutory loads effective-dated statutory rate configurations from
// a JSON file. Rate changes are a deploy-time concern: the file ships with
// the service and is read once at startup.
package statutory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
)

type fileProvider struct {
	configs []statutory.Config
}

// NewFileProvider reads rate configurations from path and keeps them sorted
// by effective date, newest first.
func NewFileProvider(path string) (statutory.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read statutory rates file: %w", err)
	}

	var configs []statutory.Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse statutory rates file %s: %w", path, err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("statutory rates file %s holds no configurations", path)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].EffectiveFrom.After(configs[j].EffectiveFrom)
	})

	return &fileProvider{configs: configs}, nil
}

// NewStaticProvider wraps fixed configurations, primarily for tests.
func NewStaticProvider(configs ...statutory.Config) statutory.Provider {
	sorted := make([]statutory.Config, len(configs))
	copy(sorted, configs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.After(sorted[j].EffectiveFrom)
	})
	return &fileProvider{configs: sorted}
}

// Rates returns the newest configuration effective on or before the period
// start.
func (p *fileProvider) Rates(_ context.Context, month, year int) (statutory.Config, error) {
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	for _, config := range p.configs {
		if !config.EffectiveFrom.After(periodStart) {
			return config, nil
		}
	}

	return statutory.Config{}, statutory.ErrNoRatesForPeriod
}
