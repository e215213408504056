package notification

import (
	"context"
	"fmt"
	"time"

	"stockcontrol/internal/core/tx"
	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/obs"
	"stockcontrol/pkg/logger"
)

// Guard serializes one scan entry point. A scan arriving while one is in
// flight is skipped, not queued. Implementations live in
// infrastructure/lock.
type Guard interface {
	TryAcquire(ctx context.Context) (release func(), ok bool)
}

// NotifierConfig holds notifier tuning.
type NotifierConfig struct {
	// MaturityWindow is the minimum product age before it is scanned.
	// New products are skipped so always-empty new stock does not alert.
	MaturityWindow time.Duration

	// DedupWindow is the cool-down between alerts for one product.
	DedupWindow time.Duration

	// Locale selects notification templates.
	Locale string
}

// DefaultNotifierConfig returns the canonical windows: one hour of
// product maturity, twenty-four hours of alert cool-down.
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		MaturityWindow: time.Hour,
		DedupWindow:    24 * time.Hour,
		Locale:         DefaultLocale,
	}
}

// Notifier scans monitored products, classifies low-stock severity, and
// emits de-duplicated notifications fanned out to a company's users.
type Notifier struct {
	products  product.Repository
	ledger    *stock.Ledger
	repo      Repository
	users     user.Repository
	txManager tx.Manager
	config    NotifierConfig

	// One guard per entry point, not a global lock.
	allGuard     Guard
	companyGuard Guard
}

// NewNotifier creates a low-stock notifier.
func NewNotifier(
	products product.Repository,
	ledger *stock.Ledger,
	repo Repository,
	users user.Repository,
	txManager tx.Manager,
	allGuard, companyGuard Guard,
	config NotifierConfig,
) *Notifier {
	return &Notifier{
		products:     products,
		ledger:       ledger,
		repo:         repo,
		users:        users,
		txManager:    txManager,
		allGuard:     allGuard,
		companyGuard: companyGuard,
		config:       config,
	}
}

// ScanAll scans every company's monitored products. Returns the number of
// alerts created. A scan arriving while another ScanAll is running
// returns (0, nil) immediately.
func (n *Notifier) ScanAll(ctx context.Context) (int, error) {
	release, ok := n.allGuard.TryAcquire(ctx)
	if !ok {
		obs.ScansSkipped.WithLabelValues("all").Inc()
		logger.Debug(ctx, "low-stock scan already running, skipping")
		return 0, nil
	}
	defer release()

	obs.ScansTotal.WithLabelValues("all").Inc()
	return n.scan(ctx, nil)
}

// ScanCompany scans one company's monitored products on demand.
func (n *Notifier) ScanCompany(ctx context.Context, companyID int64) (int, error) {
	release, ok := n.companyGuard.TryAcquire(ctx)
	if !ok {
		obs.ScansSkipped.WithLabelValues("company").Inc()
		logger.Debug(ctx, "company low-stock scan already running, skipping", "company_id", companyID)
		return 0, nil
	}
	defer release()

	obs.ScansTotal.WithLabelValues("company").Inc()
	return n.scan(ctx, &companyID)
}

func (n *Notifier) scan(ctx context.Context, companyID *int64) (int, error) {
	cutoff := time.Now().UTC().Add(-n.config.MaturityWindow)

	candidates, err := n.products.FindMonitored(ctx, companyID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find monitored products: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	ids := make([]int64, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}

	balances, err := n.ledger.Balances(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("compute balances: %w", err)
	}

	created := 0
	for i := range candidates {
		p := &candidates[i]
		balance := balances[p.ID]

		severity, alert := Classify(balance, p.MinQuantity)
		if !alert {
			continue
		}

		ok, err := n.emitAlert(ctx, p, balance, severity)
		if err != nil {
			// One bad product must not abort the whole scan.
			logger.Error(ctx, "failed to emit low-stock alert",
				"product_id", p.ID,
				"company_id", p.CompanyID,
				"error", err,
			)
			continue
		}
		if ok {
			created++
		}
	}

	logger.Info(ctx, "low-stock scan finished",
		"candidates", len(candidates),
		"alerts_created", created,
	)

	return created, nil
}

// emitAlert creates the throttle marker, the notification, and the
// per-user delivery rows for one product, unless throttled. Returns
// false when the alert was suppressed.
func (n *Notifier) emitAlert(ctx context.Context, p *product.Product, balance int64, severity Severity) (bool, error) {
	since := time.Now().UTC().Add(-n.config.DedupWindow)

	recent, err := n.repo.HasRecentAlert(ctx, p.ID, p.CompanyID, since)
	if err != nil {
		return false, fmt.Errorf("check recent alert: %w", err)
	}
	if recent {
		return false, nil
	}

	recipients, err := n.users.ListActiveByCompany(ctx, p.CompanyID, user.ActiveRoles)
	if err != nil {
		return false, fmt.Errorf("list recipients: %w", err)
	}
	if len(recipients) == 0 {
		// No one to deliver to: do not create an orphaned notification.
		return false, nil
	}

	title, body := Render(n.config.Locale, severity, p.Name, balance)
	emitted := false

	err = n.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Re-check inside the transaction: two concurrent scans may both
		// have passed the first check.
		recent, err := n.repo.HasRecentAlert(ctx, p.ID, p.CompanyID, since)
		if err != nil {
			return fmt.Errorf("recheck recent alert: %w", err)
		}
		if recent {
			return nil
		}

		alert := &StockAlert{
			ProductID: p.ID,
			CompanyID: p.CompanyID,
			Quantity:  balance,
			Severity:  severity,
			SentAt:    time.Now().UTC(),
		}
		if err := n.repo.CreateAlert(ctx, alert); err != nil {
			return fmt.Errorf("create alert marker: %w", err)
		}

		notif := &Notification{
			CompanyID: p.CompanyID,
			Title:     title,
			Body:      body,
			CreatedAt: time.Now().UTC(),
		}
		if err := n.repo.CreateNotification(ctx, notif); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		rows := make([]Recipient, len(recipients))
		for i := range recipients {
			rows[i] = Recipient{
				NotificationID: notif.ID,
				UserID:         recipients[i].ID,
			}
		}
		if err := n.repo.CreateRecipients(ctx, rows); err != nil {
			return fmt.Errorf("create recipients: %w", err)
		}

		emitted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if emitted {
		obs.AlertsCreated.WithLabelValues(string(severity)).Inc()
		logger.Info(ctx, "low-stock alert created",
			"product_id", p.ID,
			"company_id", p.CompanyID,
			"severity", severity,
			"balance", balance,
			"recipients", len(recipients),
		)
	}

	return emitted, nil
}
