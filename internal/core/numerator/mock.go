package numerator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, period time.Time) (string, error)

	counter atomic.Int64
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, period)
	}
	// Default: predictable in-memory sequence.
	return fmt.Sprintf("%s-%d-%05d", cfg.Prefix, period.Year(), m.counter.Add(1)), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
