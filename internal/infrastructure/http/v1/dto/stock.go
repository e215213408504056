package dto

import (
	"time"

	"stockcontrol/internal/domain/stock"
)

// RecordMovementRequest records one stock movement.
type RecordMovementRequest struct {
	ProductID int64   `json:"productId" binding:"required"`
	Kind      string  `json:"kind" binding:"required,oneof=ENTRADA SAIDA"`
	Quantity  int64   `json:"quantity" binding:"required,min=1"`
	Reason    string  `json:"reason"`
	Note      *string `json:"note"`
}

// MovementResponse is one ledger entry.
type MovementResponse struct {
	LineID    string    `json:"lineId"`
	ProductID int64     `json:"productId"`
	Kind      string    `json:"kind"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromMovement maps a movement to its response shape.
func FromMovement(m *stock.Movement) MovementResponse {
	return MovementResponse{
		LineID:    m.LineID.String(),
		ProductID: m.ProductID,
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		Reason:    string(m.Reason),
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}

// BalanceResponse is the derived balance of one product.
type BalanceResponse struct {
	ProductID int64 `json:"productId"`
	Balance   int64 `json:"balance"`
}

// HistoryRequest filters movement history.
type HistoryRequest struct {
	PaginationRequest
	Kind *string `form:"kind" binding:"omitempty,oneof=ENTRADA SAIDA"`
}
