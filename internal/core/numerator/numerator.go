// Package numerator provides the domain contract for human-readable
// document numbering (purchase orders). Implementations live in the
// infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "PED")
	Prefix string

	// IncludeYear adds the period year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
// Pattern: PREFIX-YEAR-XXXXX (e.g., PED-2026-00001).
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
	}
}

// Generator generates sequential document numbers.
type Generator interface {
	// GetNextNumber generates the next document number for the period.
	// Sequences reset per year.
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)
}
