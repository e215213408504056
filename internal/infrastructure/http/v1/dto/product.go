package dto

import (
	"github.com/shopspring/decimal"

	"stockcontrol/internal/domain/product"
)

// CreateProductRequest creates a product.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	MinQuantity int64           `json:"minQuantity" binding:"omitempty,min=0"`
}

// UpdateProductRequest updates a product.
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	MinQuantity int64           `json:"minQuantity" binding:"omitempty,min=0"`
}

// ProductResponse is a product with its current ledger balance.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	MinQuantity int64           `json:"minQuantity"`
	Quantity    int64           `json:"quantity"`
}

// LowStockProductResponse is a monitored product whose balance triggered
// an alert severity.
type LowStockProductResponse struct {
	ProductResponse
	Severity string `json:"severity"`
}

// FromProduct maps a product and its balance to the response shape.
func FromProduct(p *product.Product, balance int64) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		MinQuantity: p.MinQuantity,
		Quantity:    balance,
	}
}
