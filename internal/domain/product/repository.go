package product

import (
	"context"
	"time"
)

// ListFilter filters product listings.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Repository defines product storage operations.
type Repository interface {
	// Create creates a new product.
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product. Returns apperror.NewNotFound when missing.
	GetByID(ctx context.Context, productID int64) (*Product, error)

	// Update updates product data.
	Update(ctx context.Context, p *Product) error

	// Delete removes a product. Movements cascade away with it.
	Delete(ctx context.Context, productID int64) error

	// ListByCompany retrieves a company's products.
	ListByCompany(ctx context.Context, companyID int64, filter ListFilter) ([]Product, error)

	// FindMonitored returns low-stock scan candidates: products with
	// min_quantity > 0 created at or before createdBefore. companyID nil
	// scans all companies.
	FindMonitored(ctx context.Context, companyID *int64, createdBefore time.Time) ([]Product, error)
}
