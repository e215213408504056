package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stockcontrol/internal/domain/order"
)

// OrderLineRequest is one line of a new order.
type OrderLineRequest struct {
	ProductID int64           `json:"productId" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreateOrderRequest creates a purchase order.
type CreateOrderRequest struct {
	Note  *string            `json:"note"`
	Lines []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ConcludeOrderRequest optionally overrides received quantities per
// product. Lines without an override receive the requested quantity.
type ConcludeOrderRequest struct {
	Receipts []LineReceiptRequest `json:"receipts" binding:"omitempty,dive"`
}

// LineReceiptRequest is one received-quantity override.
type LineReceiptRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"min=0"`
}

// OrderLineResponse is one order line.
type OrderLineResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Requested int64           `json:"requested"`
	Fulfilled int64           `json:"fulfilled"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderResponse is an order with its lines.
type OrderResponse struct {
	ID        int64               `json:"id"`
	Number    string              `json:"number"`
	Status    string              `json:"status"`
	Total     decimal.Decimal     `json:"total"`
	Note      *string             `json:"note,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	Lines     []OrderLineResponse `json:"lines,omitempty"`
}

// FromOrder maps an order to its response shape.
func FromOrder(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Number:    o.Number,
		Status:    string(o.Status),
		Total:     o.Total,
		Note:      o.Note,
		CreatedAt: o.CreatedAt,
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Requested: l.Requested,
			Fulfilled: l.Fulfilled,
			UnitPrice: l.UnitPrice,
		})
	}
	return resp
}
