// Package numerator provides the PostgreSQL implementation of document
// auto-numbering.
package numerator

import (
	"context"
	"fmt"
	"time"

	corenumerator "stockcontrol/internal/core/numerator"
	"stockcontrol/internal/infrastructure/storage/postgres"
)

var _ corenumerator.Generator = (*Service)(nil)

// Service generates sequential document numbers backed by the
// sys_sequences table. The UPSERT runs through the caller's transaction
// when one is active, so a rolled-back order does not burn a visible gap
// at commit time.
type Service struct {
	txManager *postgres.TxManager
}

// New creates a numerator service.
func New(txManager *postgres.TxManager) *Service {
	return &Service{txManager: txManager}
}

// GetNextNumber generates the next document number.
// Pattern: PREFIX-YEAR-XXXXX (e.g., PED-2026-00001). Sequences reset per
// year.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	querier := s.txManager.GetQuerier(ctx)

	var num int64
	err := querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (sequence_type, year, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (sequence_type, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, cfg.Prefix, period.Year()).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next sequence value: %w", err)
	}

	return formatNumber(cfg, period, num), nil
}

func formatNumber(cfg corenumerator.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
