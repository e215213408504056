package stock

import (
	"context"
	"fmt"
)

// Ledger computes current balances from movement history.
//
// Balances are always re-derived from the source of truth, never cached:
// a deliberate consistency-over-performance choice given at-most-one
// writer per product at a time.
type Ledger struct {
	repo Repository
}

// NewLedger creates a new stock ledger.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Balance returns the product's current balance: the sum of ENTRADA
// quantities minus the sum of SAIDA quantities. A product with no
// movements (including an unknown product) has balance 0.
func (l *Ledger) Balance(ctx context.Context, productID int64) (int64, error) {
	balances, err := l.Balances(ctx, []int64{productID})
	if err != nil {
		return 0, err
	}
	return balances[productID], nil
}

// Balances computes balances for several products with one movement
// fetch, folded per-product in memory. Every requested id is present in
// the result, defaulting to 0.
func (l *Ledger) Balances(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	balances := make(map[int64]int64, len(productIDs))
	for _, id := range productIDs {
		balances[id] = 0
	}

	if len(productIDs) == 0 {
		return balances, nil
	}

	movements, err := l.repo.FindByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find movements: %w", err)
	}

	for i := range movements {
		balances[movements[i].ProductID] += movements[i].SignedQuantity()
	}

	return balances, nil
}
