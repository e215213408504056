package stock

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeMovementRepo is an in-memory Repository for ledger and recorder tests.
type fakeMovementRepo struct {
	movements []Movement

	findCalls int
	findErr   error
	createErr error
	lockErr   error
	lockedIDs []int64
}

func (f *fakeMovementRepo) Create(_ context.Context, m *Movement) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeMovementRepo) CreateBatch(_ context.Context, movements []*Movement) error {
	for _, m := range movements {
		f.movements = append(f.movements, *m)
	}
	return nil
}

func (f *fakeMovementRepo) FindByProducts(_ context.Context, productIDs []int64) ([]Movement, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	wanted := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	var out []Movement
	for _, m := range f.movements {
		if wanted[m.ProductID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) HistoryByProduct(_ context.Context, productID int64, _ HistoryFilter) ([]Movement, error) {
	var out []Movement
	for _, m := range f.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) LockProduct(_ context.Context, productID int64) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	f.lockedIDs = append(f.lockedIDs, productID)
	return nil
}

func mov(productID int64, kind Kind, qty int64) Movement {
	return Movement{
		ProductID: productID,
		CompanyID: 1,
		Kind:      kind,
		Quantity:  qty,
		Reason:    ReasonManual,
		CreatedAt: time.Now().UTC(),
	}
}

func TestLedger_Balance(t *testing.T) {
	tests := []struct {
		name      string
		movements []Movement
		want      int64
	}{
		{
			name: "entries minus exits",
			movements: []Movement{
				mov(1, KindEntrada, 100),
				mov(1, KindSaida, 30),
				mov(1, KindEntrada, 5),
				mov(1, KindSaida, 25),
			},
			want: 50,
		},
		{
			name:      "no movements",
			movements: nil,
			want:      0,
		},
		{
			name: "exits only go negative in history terms",
			movements: []Movement{
				mov(1, KindEntrada, 10),
				mov(1, KindSaida, 10),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeMovementRepo{movements: tt.movements}
			ledger := NewLedger(repo)

			got, err := ledger.Balance(context.Background(), 1)
			if err != nil {
				t.Fatalf("Balance failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Balance mismatch\nwant: %d\ngot:  %d", tt.want, got)
			}
		})
	}
}

func TestLedger_Balances_SingleFetch(t *testing.T) {
	repo := &fakeMovementRepo{movements: []Movement{
		mov(1, KindEntrada, 10),
		mov(2, KindEntrada, 7),
		mov(2, KindSaida, 3),
		mov(3, KindSaida, 0),
	}}
	ledger := NewLedger(repo)

	got, err := ledger.Balances(context.Background(), []int64{1, 2, 99})
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	if repo.findCalls != 1 {
		t.Errorf("expected a single movement fetch, got %d", repo.findCalls)
	}
	if got[1] != 10 {
		t.Errorf("product 1 balance\nwant: 10\ngot:  %d", got[1])
	}
	if got[2] != 4 {
		t.Errorf("product 2 balance\nwant: 4\ngot:  %d", got[2])
	}
	if b, ok := got[99]; !ok || b != 0 {
		t.Errorf("unknown product must be present with balance 0, got %d (present=%v)", b, ok)
	}
}

func TestLedger_Balances_Empty(t *testing.T) {
	repo := &fakeMovementRepo{}
	ledger := NewLedger(repo)

	got, err := ledger.Balances(context.Background(), nil)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if repo.findCalls != 0 {
		t.Errorf("expected no fetch for empty input, got %d", repo.findCalls)
	}
}

func TestLedger_Balances_RepoError(t *testing.T) {
	repo := &fakeMovementRepo{findErr: errors.New("connection lost")}
	ledger := NewLedger(repo)

	if _, err := ledger.Balances(context.Background(), []int64{1}); err == nil {
		t.Fatal("expected error to propagate")
	}
}
