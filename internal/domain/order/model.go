// Package order implements the purchase-order lifecycle. Concluding or
// cancelling an order synthesizes ledger movements so the stock balance
// always reflects what actually arrived.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"stockcontrol/internal/core/apperror"
)

// Status is the purchase-order state.
type Status string

const (
	StatusPendente    Status = "PENDENTE"
	StatusProcessando Status = "PROCESSANDO"
	StatusConcluido   Status = "CONCLUIDO"
	StatusCancelado   Status = "CANCELADO"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendente, StatusProcessando, StatusConcluido, StatusCancelado:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions. CONCLUIDO
// is not terminal: a concluded order can still be cancelled, reversing
// its stock entries.
func (s Status) Terminal() bool {
	return s == StatusCancelado
}

// Order is a purchase order. Total is fixed at creation from the
// requested quantities; later receipts do not change it.
type Order struct {
	ID        int64           `db:"id" json:"id"`
	CompanyID int64           `db:"company_id" json:"companyId"`
	Number    string          `db:"number" json:"number"`
	Status    Status          `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Note      *string         `db:"note" json:"note,omitempty"`
	CreatedBy int64           `db:"created_by" json:"createdBy"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one ordered product. Fulfilled starts at zero and is set when
// the order is concluded.
type Line struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"orderId"`
	ProductID int64           `db:"product_id" json:"productId"`
	Requested int64           `db:"requested" json:"requested"`
	Fulfilled int64           `db:"fulfilled" json:"fulfilled"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
}

// LineReceipt overrides the received quantity for one product when
// concluding. Lines without a receipt default to the requested quantity.
type LineReceipt struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Validate checks order fields before creation.
func (o *Order) Validate() error {
	if o.CompanyID <= 0 {
		return apperror.NewValidation("company is required")
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("order must have at least one line")
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		if l.ProductID <= 0 {
			return apperror.NewValidation("line product is required")
		}
		if l.Requested <= 0 {
			return apperror.NewValidation("line requested quantity must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("line unit price cannot be negative")
		}
	}
	return nil
}

// ComputeTotal returns Σ(unitPrice × requested) across lines.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		l := &o.Lines[i]
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Requested)))
	}
	return total
}

// CanTransitionTo reports whether the status transition is allowed.
// Cancellation is reachable from any non-terminal state.
func (o *Order) CanTransitionTo(next Status) bool {
	switch next {
	case StatusProcessando:
		return o.Status == StatusPendente
	case StatusConcluido:
		return o.Status == StatusPendente || o.Status == StatusProcessando
	case StatusCancelado:
		return !o.Status.Terminal()
	}
	return false
}
