package order

import "context"

// ListFilter filters order listings.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// Repository defines order storage operations.
type Repository interface {
	// Create persists the order and its lines, setting generated IDs.
	Create(ctx context.Context, o *Order) error

	// GetByID returns the order with its lines.
	GetByID(ctx context.Context, id, companyID int64) (*Order, error)

	// GetByIDForUpdate is GetByID with a row lock inside the current
	// transaction. Serializes concurrent status transitions.
	GetByIDForUpdate(ctx context.Context, id, companyID int64) (*Order, error)

	// UpdateStatus sets the order status.
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// UpdateLineFulfilled sets the fulfilled quantity of one line.
	UpdateLineFulfilled(ctx context.Context, lineID, fulfilled int64) error

	// ListByCompany returns orders without lines, newest first.
	ListByCompany(ctx context.Context, companyID int64, filter ListFilter) ([]Order, error)
}
