package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/core/numerator"
	"stockcontrol/internal/domain/audit"
	"stockcontrol/internal/domain/stock"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type openGate struct{}

func (openGate) Require(context.Context, int64, string) error { return nil }

type deniedGate struct{}

func (deniedGate) Require(context.Context, int64, string) error {
	return apperror.NewForbidden("permission denied")
}

type fakeOrderRepo struct {
	orders map[int64]*Order
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*Order), nextID: 1}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *Order) error {
	o.ID = f.nextID
	f.nextID++
	for i := range o.Lines {
		o.Lines[i].ID = int64(i + 1)
		o.Lines[i].OrderID = o.ID
	}
	clone := *o
	f.orders[o.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id, companyID int64) (*Order, error) {
	o, ok := f.orders[id]
	if !ok || o.CompanyID != companyID {
		return nil, apperror.NewNotFound("order", id)
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone, nil
}

func (f *fakeOrderRepo) GetByIDForUpdate(ctx context.Context, id, companyID int64) (*Order, error) {
	return f.GetByID(ctx, id, companyID)
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	o, ok := f.orders[id]
	if !ok {
		return apperror.NewNotFound("order", id)
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) UpdateLineFulfilled(_ context.Context, lineID, fulfilled int64) error {
	for _, o := range f.orders {
		for i := range o.Lines {
			if o.Lines[i].ID == lineID {
				o.Lines[i].Fulfilled = fulfilled
				return nil
			}
		}
	}
	return apperror.NewNotFound("order line", lineID)
}

func (f *fakeOrderRepo) ListByCompany(_ context.Context, companyID int64, _ ListFilter) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.CompanyID == companyID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeMovements struct {
	movements []stock.Movement
}

func (f *fakeMovements) Create(_ context.Context, m *stock.Movement) error {
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeMovements) CreateBatch(_ context.Context, movements []*stock.Movement) error {
	for _, m := range movements {
		f.movements = append(f.movements, *m)
	}
	return nil
}

func (f *fakeMovements) FindByProducts(context.Context, []int64) ([]stock.Movement, error) {
	return nil, nil
}

func (f *fakeMovements) HistoryByProduct(context.Context, int64, stock.HistoryFilter) ([]stock.Movement, error) {
	return nil, nil
}

func (f *fakeMovements) LockProduct(context.Context, int64) error { return nil }

// netBalance folds the recorded movements for one product.
func (f *fakeMovements) netBalance(productID int64) int64 {
	var total int64
	for i := range f.movements {
		if f.movements[i].ProductID == productID {
			total += f.movements[i].SignedQuantity()
		}
	}
	return total
}

type fakeAuditor struct {
	actions []audit.Action
}

func (f *fakeAuditor) LogChange(_ context.Context, _ string, _ int64, action audit.Action, _ map[string]any) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditor) EntityHistory(context.Context, string, int64, int) ([]audit.Entry, error) {
	return nil, nil
}

type fixture struct {
	repo      *fakeOrderRepo
	movements *fakeMovements
	auditor   *fakeAuditor
	service   *Service
}

func newFixture(gate Gate) *fixture {
	f := &fixture{
		repo:      newFakeOrderRepo(),
		movements: &fakeMovements{},
		auditor:   &fakeAuditor{},
	}
	f.service = NewService(f.repo, f.movements, &numerator.MockGenerator{}, f.auditor, gate, passthroughTx{})
	return f
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testOrder() *Order {
	return &Order{
		CompanyID: 1,
		CreatedBy: 10,
		Lines: []Line{
			{ProductID: 100, Requested: 10, UnitPrice: price("2.50")},
			{ProductID: 200, Requested: 4, UnitPrice: price("10.00")},
		},
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(openGate{})
	o := testOrder()

	if err := f.service.Create(context.Background(), o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if o.Status != StatusPendente {
		t.Errorf("status\nwant: %s\ngot:  %s", StatusPendente, o.Status)
	}
	if o.Number == "" {
		t.Error("order number must be generated")
	}
	// 10 * 2.50 + 4 * 10.00
	if !o.Total.Equal(price("65.00")) {
		t.Errorf("total\nwant: 65.00\ngot:  %s", o.Total)
	}
	if len(f.auditor.actions) != 1 || f.auditor.actions[0] != audit.ActionCreate {
		t.Errorf("expected one create audit entry, got %v", f.auditor.actions)
	}
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(openGate{})

	err := f.service.Create(context.Background(), &Order{CompanyID: 1, CreatedBy: 10})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("expected validation error for an order without lines, got %v", err)
	}
}

func TestService_Create_GateDenied(t *testing.T) {
	f := newFixture(deniedGate{})

	err := f.service.Create(context.Background(), testOrder())
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(f.repo.orders) != 0 {
		t.Error("denied create must not persist")
	}
}

func TestService_Process(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.service.Process(ctx, 10, o.ID, 1); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	got, _ := f.repo.GetByID(ctx, o.ID, 1)
	if got.Status != StatusProcessando {
		t.Errorf("status\nwant: %s\ngot:  %s", StatusProcessando, got.Status)
	}

	// PROCESSANDO -> PROCESSANDO is not a legal transition.
	err := f.service.Process(ctx, 10, o.ID, 1)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestService_Conclude_DefaultQuantities(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.service.Conclude(ctx, 10, o.ID, 1, nil); err != nil {
		t.Fatalf("Conclude failed: %v", err)
	}

	got, _ := f.repo.GetByID(ctx, o.ID, 1)
	if got.Status != StatusConcluido {
		t.Errorf("status\nwant: %s\ngot:  %s", StatusConcluido, got.Status)
	}
	if got.Lines[0].Fulfilled != 10 || got.Lines[1].Fulfilled != 4 {
		t.Errorf("fulfilled quantities must default to requested, got %+v", got.Lines)
	}

	if len(f.movements.movements) != 2 {
		t.Fatalf("expected 2 entry movements, got %d", len(f.movements.movements))
	}
	for _, m := range f.movements.movements {
		if m.Kind != stock.KindEntrada || m.Reason != stock.ReasonOrderCompleted {
			t.Errorf("unexpected movement %+v", m)
		}
		if m.OrderID == nil || *m.OrderID != o.ID {
			t.Errorf("movement must link back to the order, got %v", m.OrderID)
		}
	}
}

func TestService_Conclude_ReceiptOverrides(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	receipts := []LineReceipt{
		{ProductID: 100, Quantity: 7}, // partial delivery
		{ProductID: 200, Quantity: 0}, // nothing arrived
	}
	if err := f.service.Conclude(ctx, 10, o.ID, 1, receipts); err != nil {
		t.Fatalf("Conclude failed: %v", err)
	}

	if len(f.movements.movements) != 1 {
		t.Fatalf("zero-quantity lines must not move stock, got %d movements", len(f.movements.movements))
	}
	if f.movements.netBalance(100) != 7 {
		t.Errorf("product 100 balance\nwant: 7\ngot:  %d", f.movements.netBalance(100))
	}

	got, _ := f.repo.GetByID(ctx, o.ID, 1)
	if got.Lines[0].Fulfilled != 7 || got.Lines[1].Fulfilled != 0 {
		t.Errorf("fulfilled quantities, got %+v", got.Lines)
	}
}

func TestService_Conclude_Idempotent(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.service.Conclude(ctx, 10, o.ID, 1, nil); err != nil {
		t.Fatalf("first Conclude failed: %v", err)
	}
	before := len(f.movements.movements)

	// Concluding again must succeed without a second movement round.
	if err := f.service.Conclude(ctx, 10, o.ID, 1, nil); err != nil {
		t.Fatalf("repeat Conclude failed: %v", err)
	}
	if len(f.movements.movements) != before {
		t.Errorf("repeat conclusion duplicated movements: %d -> %d", before, len(f.movements.movements))
	}
}

func TestService_Conclude_NegativeReceipt(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := f.service.Conclude(ctx, 10, o.ID, 1, []LineReceipt{{ProductID: 100, Quantity: -1}})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_Cancel_CompensatesFulfilledLines(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.service.Conclude(ctx, 10, o.ID, 1, nil); err != nil {
		t.Fatalf("Conclude failed: %v", err)
	}

	// Status guard first: CONCLUIDO is not terminal, cancel is allowed
	// and must reverse the received stock.
	if err := f.service.Cancel(ctx, 10, o.ID, 1); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	got, _ := f.repo.GetByID(ctx, o.ID, 1)
	if got.Status != StatusCancelado {
		t.Errorf("status\nwant: %s\ngot:  %s", StatusCancelado, got.Status)
	}

	// Conclude then cancel nets to zero for every product.
	if b := f.movements.netBalance(100); b != 0 {
		t.Errorf("product 100 net balance\nwant: 0\ngot:  %d", b)
	}
	if b := f.movements.netBalance(200); b != 0 {
		t.Errorf("product 200 net balance\nwant: 0\ngot:  %d", b)
	}

	var exits int
	for _, m := range f.movements.movements {
		if m.Kind == stock.KindSaida {
			if m.Reason != stock.ReasonOrderCancelled {
				t.Errorf("compensating movement reason\nwant: %s\ngot:  %s", stock.ReasonOrderCancelled, m.Reason)
			}
			exits++
		}
	}
	if exits != 2 {
		t.Errorf("compensating movements\nwant: 2\ngot:  %d", exits)
	}
}

func TestService_Cancel_PendingOrderMovesNoStock(t *testing.T) {
	f := newFixture(openGate{})
	ctx := context.Background()

	o := testOrder()
	if err := f.service.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.service.Cancel(ctx, 10, o.ID, 1); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if len(f.movements.movements) != 0 {
		t.Errorf("unfulfilled lines must not produce movements, got %d", len(f.movements.movements))
	}

	// Terminal: cancelling again is rejected.
	err := f.service.Cancel(ctx, 10, o.ID, 1)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPendente, StatusProcessando, true},
		{StatusPendente, StatusConcluido, true},
		{StatusPendente, StatusCancelado, true},
		{StatusProcessando, StatusConcluido, true},
		{StatusProcessando, StatusCancelado, true},
		{StatusProcessando, StatusPendente, false},
		{StatusConcluido, StatusCancelado, true},
		{StatusConcluido, StatusProcessando, false},
		{StatusCancelado, StatusConcluido, false},
		{StatusCancelado, StatusCancelado, false},
	}

	for _, tt := range tests {
		o := &Order{Status: tt.from}
		if got := o.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s\nwant: %v\ngot:  %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestOrder_ComputeTotal(t *testing.T) {
	o := &Order{
		Lines: []Line{
			{Requested: 3, UnitPrice: price("1.99")},
			{Requested: 2, UnitPrice: price("0.50")},
		},
	}
	if total := o.ComputeTotal(); !total.Equal(price("6.97")) {
		t.Errorf("total\nwant: 6.97\ngot:  %s", total)
	}
}
