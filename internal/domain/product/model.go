// Package product provides the product catalog.
package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockcontrol/internal/core/apperror"
)

// Product is a sellable item owned by a company.
//
// Current stock quantity is never stored on the product: it is derived
// from the movement ledger (see the stock package).
type Product struct {
	ID          int64           `db:"id" json:"id"`
	CompanyID   int64           `db:"company_id" json:"companyId"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`

	// MinQuantity is the reorder threshold for low-stock monitoring.
	// Zero disables monitoring for this product.
	MinQuantity int64 `db:"min_quantity" json:"minQuantity"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a new product.
func NewProduct(companyID int64, name string, unitPrice decimal.Decimal, minQuantity int64) *Product {
	now := time.Now().UTC()
	return &Product{
		CompanyID:   companyID,
		Name:        name,
		UnitPrice:   unitPrice,
		MinQuantity: minQuantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates product data.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.CompanyID == 0 {
		return apperror.NewValidation("company is required").WithDetail("field", "companyId")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unitPrice")
	}
	if p.MinQuantity < 0 {
		return apperror.NewValidation("minimum quantity cannot be negative").WithDetail("field", "minQuantity")
	}
	return nil
}

// Monitored reports whether low-stock monitoring applies to this product.
func (p *Product) Monitored() bool {
	return p.MinQuantity > 0
}
