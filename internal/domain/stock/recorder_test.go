package stock

import (
	"context"
	"testing"
	"time"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/product"
)

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	known map[int64]bool
}

func (f *fakeProductRepo) Create(context.Context, *product.Product) error { return nil }

func (f *fakeProductRepo) Update(context.Context, *product.Product) error { return nil }

func (f *fakeProductRepo) Delete(context.Context, int64) error { return nil }

func (f *fakeProductRepo) GetByID(_ context.Context, productID int64) (*product.Product, error) {
	if !f.known[productID] {
		return nil, apperror.NewNotFound("product", productID)
	}
	return &product.Product{ID: productID, CompanyID: 1}, nil
}

func (f *fakeProductRepo) ListByCompany(context.Context, int64, product.ListFilter) ([]product.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) FindMonitored(context.Context, *int64, time.Time) ([]product.Product, error) {
	return nil, nil
}

type fakeGate struct {
	denied map[string]bool
	calls  []string
}

func (f *fakeGate) Require(_ context.Context, _ int64, key string) error {
	f.calls = append(f.calls, key)
	if f.denied[key] {
		return apperror.NewForbidden("permission denied")
	}
	return nil
}

func newTestRecorder(repo *fakeMovementRepo, gate Gate) *Recorder {
	products := &fakeProductRepo{known: map[int64]bool{1: true}}
	ledger := NewLedger(repo)
	return NewRecorder(repo, products, ledger, gate, nil, passthroughTx{})
}

func TestRecorder_Record_Entrada(t *testing.T) {
	repo := &fakeMovementRepo{}
	recorder := newTestRecorder(repo, nil)

	m, err := recorder.Record(context.Background(), MovementInput{
		ProductID: 1,
		Kind:      KindEntrada,
		Quantity:  50,
		Reason:    ReasonInitial,
		CompanyID: 1,
		UserID:    10,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if m.SignedQuantity() != 50 {
		t.Errorf("signed quantity\nwant: 50\ngot:  %d", m.SignedQuantity())
	}
	if len(repo.movements) != 1 {
		t.Fatalf("expected 1 stored movement, got %d", len(repo.movements))
	}
	// Inflows never need the balance check or the row lock.
	if len(repo.lockedIDs) != 0 {
		t.Errorf("inflow must not lock products, locked %v", repo.lockedIDs)
	}
}

func TestRecorder_Record_InsufficientStock(t *testing.T) {
	repo := &fakeMovementRepo{movements: []Movement{
		mov(1, KindEntrada, 10),
	}}
	recorder := newTestRecorder(repo, nil)

	_, err := recorder.Record(context.Background(), MovementInput{
		ProductID: 1,
		Kind:      KindSaida,
		Quantity:  50,
		Reason:    ReasonSale,
		CompanyID: 1,
		UserID:    10,
	})
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	appErr, _ := apperror.AsAppError(err)
	if appErr.Details["requested"] != int64(50) {
		t.Errorf("requested detail\nwant: 50\ngot:  %v", appErr.Details["requested"])
	}
	if appErr.Details["current"] != int64(10) {
		t.Errorf("current detail\nwant: 10\ngot:  %v", appErr.Details["current"])
	}

	// Nothing may be written on rejection.
	if len(repo.movements) != 1 {
		t.Errorf("expected no new movements, got %d", len(repo.movements))
	}
}

func TestRecorder_Record_SaidaLocksProduct(t *testing.T) {
	repo := &fakeMovementRepo{movements: []Movement{
		mov(1, KindEntrada, 100),
	}}
	recorder := newTestRecorder(repo, nil)

	_, err := recorder.Record(context.Background(), MovementInput{
		ProductID: 1,
		Kind:      KindSaida,
		Quantity:  40,
		Reason:    ReasonSale,
		CompanyID: 1,
		UserID:    10,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(repo.lockedIDs) != 1 || repo.lockedIDs[0] != 1 {
		t.Errorf("expected product 1 row lock, got %v", repo.lockedIDs)
	}
}

func TestRecorder_Record_ExactBalanceAllowed(t *testing.T) {
	repo := &fakeMovementRepo{movements: []Movement{
		mov(1, KindEntrada, 30),
	}}
	recorder := newTestRecorder(repo, nil)

	_, err := recorder.Record(context.Background(), MovementInput{
		ProductID: 1,
		Kind:      KindSaida,
		Quantity:  30,
		Reason:    ReasonSale,
		CompanyID: 1,
		UserID:    10,
	})
	if err != nil {
		t.Fatalf("draining the balance to zero must be allowed: %v", err)
	}
}

func TestRecorder_Record_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input MovementInput
	}{
		{
			name:  "zero quantity",
			input: MovementInput{ProductID: 1, Kind: KindEntrada, Quantity: 0},
		},
		{
			name:  "negative quantity",
			input: MovementInput{ProductID: 1, Kind: KindSaida, Quantity: -5},
		},
		{
			name:  "unknown kind",
			input: MovementInput{ProductID: 1, Kind: Kind("TRANSFER"), Quantity: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeMovementRepo{}
			recorder := newTestRecorder(repo, nil)

			_, err := recorder.Record(context.Background(), tt.input)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRecorder_Record_UnknownProduct(t *testing.T) {
	repo := &fakeMovementRepo{}
	recorder := newTestRecorder(repo, nil)

	_, err := recorder.Record(context.Background(), MovementInput{
		ProductID: 404,
		Kind:      KindEntrada,
		Quantity:  5,
	})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecorder_Record_GateDenied(t *testing.T) {
	repo := &fakeMovementRepo{}
	gate := &fakeGate{denied: map[string]bool{"estoque_gerenciar": true}}
	recorder := newTestRecorder(repo, gate)

	_, err := recorder.Record(context.Background(), MovementInput{
		ProductID: 1,
		Kind:      KindEntrada,
		Quantity:  5,
		UserID:    10,
	})
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.movements) != 0 {
		t.Errorf("denied call must not write, got %d movements", len(repo.movements))
	}
}
