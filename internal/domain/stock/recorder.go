package stock

import (
	"context"
	"fmt"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/core/tx"
	"stockcontrol/internal/domain/audit"
	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/obs"
	"stockcontrol/pkg/logger"
)

// Gate authorizes recorder operations. Implemented by the permission
// resolver.
type Gate interface {
	Require(ctx context.Context, userID int64, key string) error
}

// MovementInput carries the fields of a movement to record.
type MovementInput struct {
	ProductID int64
	Kind      Kind
	Quantity  int64
	Reason    Reason
	Note      *string
	CompanyID int64
	UserID    int64
	SaleID    *int64
	OrderID   *int64
}

// Recorder validates and appends stock movements.
type Recorder struct {
	repo      Repository
	products  product.Repository
	ledger    *Ledger
	gate      Gate
	auditor   audit.Logger
	txManager tx.Manager
}

// NewRecorder creates a new movement recorder. auditor may be nil.
func NewRecorder(repo Repository, products product.Repository, ledger *Ledger, gate Gate, auditor audit.Logger, txManager tx.Manager) *Recorder {
	return &Recorder{
		repo:      repo,
		products:  products,
		ledger:    ledger,
		gate:      gate,
		auditor:   auditor,
		txManager: txManager,
	}
}

// Record validates and appends one movement.
//
// Outflows that would drive the balance below zero are rejected with
// InsufficientStock before anything is written. The balance check and the
// append run in one transaction under a product row lock, so concurrent
// outflows against the same product serialize instead of both passing
// the check.
func (r *Recorder) Record(ctx context.Context, input MovementInput) (*Movement, error) {
	if r.gate != nil {
		if err := r.gate.Require(ctx, input.UserID, permission.KeyEstoqueGerenciar); err != nil {
			return nil, err
		}
	}

	if input.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", input.Quantity)
	}
	if !input.Kind.Valid() {
		return nil, apperror.NewValidation("invalid movement kind").
			WithDetail("field", "kind").
			WithDetail("value", string(input.Kind))
	}

	if _, err := r.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	m := NewMovement(input.ProductID, input.CompanyID, input.UserID, input.Kind, input.Quantity, input.Reason)
	m.Note = input.Note
	m.SaleID = input.SaleID
	m.OrderID = input.OrderID

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if input.Kind == KindSaida {
			if err := r.repo.LockProduct(ctx, input.ProductID); err != nil {
				return fmt.Errorf("lock product: %w", err)
			}

			balance, err := r.ledger.Balance(ctx, input.ProductID)
			if err != nil {
				return err
			}
			if balance < input.Quantity {
				return apperror.NewInsufficientStock(input.ProductID, input.Quantity, balance)
			}
		}

		if err := r.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}

		if r.auditor != nil {
			if err := r.auditor.LogChange(ctx, "product", m.ProductID, audit.ActionMovement, map[string]any{
				"line_id":  m.LineID.String(),
				"kind":     string(m.Kind),
				"quantity": m.Quantity,
				"reason":   string(m.Reason),
			}); err != nil {
				return fmt.Errorf("audit movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	obs.MovementsRecorded.WithLabelValues(string(m.Kind)).Inc()
	logger.Info(ctx, "stock movement recorded",
		"product_id", m.ProductID,
		"kind", m.Kind,
		"quantity", m.Quantity,
		"reason", m.Reason,
	)

	return m, nil
}

// History returns a product's movement history for audit display.
func (r *Recorder) History(ctx context.Context, productID int64, filter HistoryFilter) ([]Movement, error) {
	if _, err := r.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return r.repo.HistoryByProduct(ctx, productID, filter)
}
