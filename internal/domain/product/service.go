package product

import (
	"context"
	"fmt"
	"time"

	"stockcontrol/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "company_id", p.CompanyID)

	return nil
}

// Update validates and persists product changes.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID int64) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Delete removes a product and, by cascade, its movement history.
func (s *Service) Delete(ctx context.Context, productID int64) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, productID)
}

// ListByCompany retrieves a company's products.
func (s *Service) ListByCompany(ctx context.Context, companyID int64, filter ListFilter) ([]Product, error) {
	return s.repo.ListByCompany(ctx, companyID, filter)
}

// ListMonitored retrieves the company's products with low-stock
// monitoring enabled, regardless of age.
func (s *Service) ListMonitored(ctx context.Context, companyID int64) ([]Product, error) {
	return s.repo.FindMonitored(ctx, &companyID, time.Now().UTC())
}
