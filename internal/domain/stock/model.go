// Package stock provides the append-only stock movement ledger:
// balance computation and movement recording.
package stock

import (
	"time"

	"github.com/google/uuid"
)

// Kind defines movement direction.
type Kind string

const (
	// KindEntrada increases balance (inflow).
	KindEntrada Kind = "ENTRADA"
	// KindSaida decreases balance (outflow).
	KindSaida Kind = "SAIDA"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindEntrada || k == KindSaida
}

// Reason tags why a movement happened.
type Reason string

const (
	ReasonInitial        Reason = "estoque_inicial"
	ReasonSale           Reason = "venda"
	ReasonOrderCompleted Reason = "pedido_concluido"
	ReasonOrderCancelled Reason = "pedido_cancelado"
	ReasonManual         Reason = "ajuste_manual"
)

// Movement is one immutable ledger entry. Movements are never updated or
// deleted, except as a cascade when their product is deleted.
type Movement struct {
	// LineID is a UUIDv7, time-ordered for audit display.
	LineID uuid.UUID `db:"line_id" json:"lineId"`

	ProductID int64  `db:"product_id" json:"productId"`
	CompanyID int64  `db:"company_id" json:"companyId"`
	Kind      Kind   `db:"kind" json:"kind"`
	Quantity  int64  `db:"quantity" json:"quantity"`
	Reason    Reason `db:"reason" json:"reason"`
	Note      *string `db:"note" json:"note,omitempty"`

	// UserID is the acting user.
	UserID int64 `db:"user_id" json:"userId"`

	// SaleID links movements originated by a sale.
	SaleID *int64 `db:"sale_id" json:"saleId,omitempty"`

	// OrderID links movements synthesized by a purchase-order transition.
	OrderID *int64 `db:"order_id" json:"orderId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with a generated line ID.
func NewMovement(productID, companyID, userID int64, kind Kind, quantity int64, reason Reason) *Movement {
	lineID, err := uuid.NewV7()
	if err != nil {
		lineID = uuid.New()
	}
	return &Movement{
		LineID:    lineID,
		ProductID: productID,
		CompanyID: companyID,
		UserID:    userID,
		Kind:      kind,
		Quantity:  quantity,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on kind.
// ENTRADA is positive, SAIDA negative.
func (m *Movement) SignedQuantity() int64 {
	if m.Kind == KindSaida {
		return -m.Quantity
	}
	return m.Quantity
}
