package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/domain/user"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type openGuard struct{ acquired int }

func (g *openGuard) TryAcquire(context.Context) (func(), bool) {
	g.acquired++
	return func() {}, true
}

type busyGuard struct{}

func (busyGuard) TryAcquire(context.Context) (func(), bool) { return nil, false }

type fakeProducts struct {
	monitored []product.Product

	lastCompanyID     *int64
	lastCreatedBefore time.Time
}

func (f *fakeProducts) Create(context.Context, *product.Product) error { return nil }

func (f *fakeProducts) Update(context.Context, *product.Product) error { return nil }

func (f *fakeProducts) Delete(context.Context, int64) error { return nil }

func (f *fakeProducts) GetByID(_ context.Context, productID int64) (*product.Product, error) {
	return &product.Product{ID: productID}, nil
}

func (f *fakeProducts) ListByCompany(context.Context, int64, product.ListFilter) ([]product.Product, error) {
	return nil, nil
}

func (f *fakeProducts) FindMonitored(_ context.Context, companyID *int64, createdBefore time.Time) ([]product.Product, error) {
	f.lastCompanyID = companyID
	f.lastCreatedBefore = createdBefore
	if companyID == nil {
		return f.monitored, nil
	}
	var out []product.Product
	for _, p := range f.monitored {
		if p.CompanyID == *companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeBalances serves the ledger from a fixed balance map, rendered as a
// single ENTRADA per product.
type fakeBalances struct {
	balances map[int64]int64
}

func (f *fakeBalances) Create(context.Context, *stock.Movement) error { return nil }

func (f *fakeBalances) CreateBatch(context.Context, []*stock.Movement) error { return nil }

func (f *fakeBalances) LockProduct(context.Context, int64) error { return nil }

func (f *fakeBalances) FindByProducts(_ context.Context, productIDs []int64) ([]stock.Movement, error) {
	var out []stock.Movement
	for _, id := range productIDs {
		if qty, ok := f.balances[id]; ok && qty > 0 {
			out = append(out, stock.Movement{ProductID: id, Kind: stock.KindEntrada, Quantity: qty})
		}
	}
	return out, nil
}

func (f *fakeBalances) HistoryByProduct(context.Context, int64, stock.HistoryFilter) ([]stock.Movement, error) {
	return nil, nil
}

type fakeUsers struct {
	byCompany map[int64][]user.User
}

func (f *fakeUsers) Create(context.Context, *user.User) error { return nil }
func (f *fakeUsers) Update(context.Context, *user.User) error { return nil }

func (f *fakeUsers) GetByID(context.Context, int64) (*user.User, error) { return nil, nil }

func (f *fakeUsers) GetByEmail(context.Context, string) (*user.User, error) { return nil, nil }

func (f *fakeUsers) ExistsEmail(context.Context, string) (bool, error) { return false, nil }

func (f *fakeUsers) ListActiveByCompany(_ context.Context, companyID int64, _ []user.Role) ([]user.User, error) {
	return f.byCompany[companyID], nil
}

type fakeNotificationRepo struct {
	alerts        []StockAlert
	notifications []Notification
	recipients    []Recipient

	alertErr error
}

func (f *fakeNotificationRepo) CreateAlert(_ context.Context, alert *StockAlert) error {
	if f.alertErr != nil {
		return f.alertErr
	}
	alert.ID = int64(len(f.alerts) + 1)
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeNotificationRepo) HasRecentAlert(_ context.Context, productID, companyID int64, since time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.ProductID == productID && a.CompanyID == companyID && !a.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) CreateNotification(_ context.Context, n *Notification) error {
	n.ID = int64(len(f.notifications) + 1)
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) CreateRecipients(_ context.Context, recipients []Recipient) error {
	f.recipients = append(f.recipients, recipients...)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(context.Context, int64, int, int) ([]Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(context.Context, int64, int64) error { return nil }

func monitoredProduct(id, companyID, minQuantity int64) product.Product {
	return product.Product{
		ID:          id,
		CompanyID:   companyID,
		Name:        "Produto",
		MinQuantity: minQuantity,
		CreatedAt:   time.Now().UTC().Add(-48 * time.Hour),
	}
}

type notifierFixture struct {
	products *fakeProducts
	repo     *fakeNotificationRepo
	users    *fakeUsers
	guard    *openGuard
	notifier *Notifier
}

func newNotifierFixture(products []product.Product, balances map[int64]int64) *notifierFixture {
	f := &notifierFixture{
		products: &fakeProducts{monitored: products},
		repo:     &fakeNotificationRepo{},
		users: &fakeUsers{byCompany: map[int64][]user.User{
			1: {{ID: 10, CompanyID: 1}, {ID: 11, CompanyID: 1}},
		}},
		guard: &openGuard{},
	}
	f.notifier = NewNotifier(
		f.products,
		stock.NewLedger(&fakeBalances{balances: balances}),
		f.repo,
		f.users,
		passthroughTx{},
		f.guard,
		f.guard,
		DefaultNotifierConfig(),
	)
	return f
}

func TestNotifier_ScanAll_CreatesAlerts(t *testing.T) {
	f := newNotifierFixture(
		[]product.Product{
			monitoredProduct(1, 1, 10), // balance 0 -> ZERADO
			monitoredProduct(2, 1, 10), // balance 5 -> CRITICO
			monitoredProduct(3, 1, 10), // balance 12 -> ALERTA
			monitoredProduct(4, 1, 10), // balance 50 -> healthy
		},
		map[int64]int64{2: 5, 3: 12, 4: 50},
	)

	created, err := f.notifier.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}
	if created != 3 {
		t.Fatalf("alerts created\nwant: 3\ngot:  %d", created)
	}

	severities := make(map[Severity]bool)
	for _, a := range f.repo.alerts {
		severities[a.Severity] = true
	}
	for _, want := range []Severity{SeverityZerado, SeverityCritico, SeverityAlerta} {
		if !severities[want] {
			t.Errorf("missing %s alert", want)
		}
	}

	// Fan-out: two recipients per alert.
	if len(f.repo.recipients) != 6 {
		t.Errorf("recipient rows\nwant: 6\ngot:  %d", len(f.repo.recipients))
	}
}

func TestNotifier_ScanAll_GuardSkip(t *testing.T) {
	f := newNotifierFixture([]product.Product{monitoredProduct(1, 1, 10)}, nil)
	f.notifier.allGuard = busyGuard{}

	created, err := f.notifier.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("a skipped scan must not error: %v", err)
	}
	if created != 0 {
		t.Errorf("skipped scan created %d alerts", created)
	}
	if len(f.repo.alerts) != 0 {
		t.Errorf("skipped scan must not write, got %d alerts", len(f.repo.alerts))
	}
}

func TestNotifier_Dedup(t *testing.T) {
	f := newNotifierFixture([]product.Product{monitoredProduct(1, 1, 10)}, nil)
	ctx := context.Background()

	created, err := f.notifier.ScanAll(ctx)
	if err != nil || created != 1 {
		t.Fatalf("first scan: created=%d err=%v", created, err)
	}

	// Second scan within the cool-down window is suppressed.
	created, err = f.notifier.ScanAll(ctx)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if created != 0 {
		t.Errorf("repeat alert within the window, created=%d", created)
	}
	if len(f.repo.notifications) != 1 {
		t.Errorf("notifications\nwant: 1\ngot:  %d", len(f.repo.notifications))
	}

	// After the window expires the product alerts again.
	f.repo.alerts[0].SentAt = time.Now().UTC().Add(-25 * time.Hour)
	created, err = f.notifier.ScanAll(ctx)
	if err != nil || created != 1 {
		t.Fatalf("post-window scan: created=%d err=%v", created, err)
	}
}

func TestNotifier_ZeroRecipients(t *testing.T) {
	f := newNotifierFixture([]product.Product{monitoredProduct(1, 1, 10)}, nil)
	f.users.byCompany = nil

	created, err := f.notifier.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}
	if created != 0 {
		t.Errorf("no recipients must mean no alert, created=%d", created)
	}
	if len(f.repo.notifications) != 0 || len(f.repo.alerts) != 0 {
		t.Error("no rows may be written when nobody receives the alert")
	}
}

func TestNotifier_ScanCompany_Filters(t *testing.T) {
	f := newNotifierFixture(
		[]product.Product{
			monitoredProduct(1, 1, 10),
			monitoredProduct(2, 2, 10),
		},
		nil,
	)

	created, err := f.notifier.ScanCompany(context.Background(), 1)
	if err != nil {
		t.Fatalf("ScanCompany failed: %v", err)
	}
	if created != 1 {
		t.Errorf("created\nwant: 1\ngot:  %d", created)
	}
	if f.products.lastCompanyID == nil || *f.products.lastCompanyID != 1 {
		t.Errorf("scan must be scoped to company 1, got %v", f.products.lastCompanyID)
	}
}

func TestNotifier_MaturityCutoff(t *testing.T) {
	f := newNotifierFixture(nil, nil)

	before := time.Now().UTC().Add(-f.notifier.config.MaturityWindow)
	if _, err := f.notifier.ScanAll(context.Background()); err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}

	got := f.products.lastCreatedBefore
	if got.After(time.Now().UTC().Add(-f.notifier.config.MaturityWindow + time.Minute)) {
		t.Errorf("cutoff must exclude products younger than the maturity window, got %v", got)
	}
	if got.Before(before.Add(-time.Minute)) {
		t.Errorf("cutoff too far in the past: %v", got)
	}
}

func TestNotifier_ProductErrorContinuesScan(t *testing.T) {
	f := newNotifierFixture(
		[]product.Product{
			monitoredProduct(1, 1, 10),
			monitoredProduct(2, 1, 10),
		},
		nil,
	)
	f.repo.alertErr = errors.New("insert failed")

	created, err := f.notifier.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("scan must survive per-product failures: %v", err)
	}
	if created != 0 {
		t.Errorf("created\nwant: 0\ngot:  %d", created)
	}
}

// signalGuard reports each acquisition on a channel so tests can wait
// for the immediate scan instead of sleeping.
type signalGuard struct {
	scanned chan struct{}
}

func (g *signalGuard) TryAcquire(context.Context) (func(), bool) {
	select {
	case g.scanned <- struct{}{}:
	default:
	}
	return func() {}, true
}

func TestScheduler_StartStop(t *testing.T) {
	f := newNotifierFixture(nil, nil)
	guard := &signalGuard{scanned: make(chan struct{}, 1)}
	f.notifier.allGuard = guard

	scheduler := NewScheduler(f.notifier, time.Hour)

	scheduler.Start(context.Background())
	scheduler.Start(context.Background()) // no-op while running

	select {
	case <-guard.scanned:
	case <-time.After(5 * time.Second):
		t.Fatal("Start must run an immediate scan")
	}

	scheduler.Stop()
	scheduler.Stop() // no-op when stopped

	// Restartable after Stop.
	scheduler.Start(context.Background())
	select {
	case <-guard.scanned:
	case <-time.After(5 * time.Second):
		t.Fatal("restarted scheduler must scan again")
	}
	scheduler.Stop()
}
