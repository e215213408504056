package order

import (
	"context"
	"fmt"
	"time"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/core/numerator"
	"stockcontrol/internal/core/tx"
	"stockcontrol/internal/domain/audit"
	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/pkg/logger"
)

// Gate authorizes order operations. Implemented by the permission
// resolver.
type Gate interface {
	Require(ctx context.Context, userID int64, key string) error
}

// Service drives the purchase-order lifecycle. Concluding and cancelling
// synthesize ledger movements inside the same transaction as the status
// change, so stock and order state never diverge.
type Service struct {
	repo      Repository
	movements stock.Repository
	numbers   numerator.Generator
	auditor   audit.Logger
	gate      Gate
	txManager tx.Manager
}

// NewService creates an order service.
func NewService(
	repo Repository,
	movements stock.Repository,
	numbers numerator.Generator,
	auditor audit.Logger,
	gate Gate,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		movements: movements,
		numbers:   numbers,
		auditor:   auditor,
		gate:      gate,
		txManager: txManager,
	}
}

// Create persists a new order in PENDENTE with a generated sequence
// number. Total is computed from the lines and fixed from then on.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := s.gate.Require(ctx, o.CreatedBy, permission.KeyVendasRealizar); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.Status = StatusPendente
	o.Total = o.ComputeTotal()
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Lines {
		o.Lines[i].Fulfilled = 0
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig("PED"), now)
		if err != nil {
			return fmt.Errorf("generate order number: %w", err)
		}
		o.Number = number

		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := s.auditor.LogChange(ctx, "order", o.ID, audit.ActionCreate, map[string]any{
			"number": o.Number,
			"total":  o.Total.String(),
			"lines":  len(o.Lines),
		}); err != nil {
			return fmt.Errorf("audit order creation: %w", err)
		}

		logger.Info(ctx, "order created",
			"order_id", o.ID,
			"number", o.Number,
			"total", o.Total.String(),
		)
		return nil
	})
}

// Get returns one order with its lines.
func (s *Service) Get(ctx context.Context, id, companyID int64) (*Order, error) {
	return s.repo.GetByID(ctx, id, companyID)
}

// List returns a company's orders.
func (s *Service) List(ctx context.Context, companyID int64, filter ListFilter) ([]Order, error) {
	return s.repo.ListByCompany(ctx, companyID, filter)
}

// Process moves a PENDENTE order to PROCESSANDO.
func (s *Service) Process(ctx context.Context, userID, orderID, companyID int64) error {
	if err := s.gate.Require(ctx, userID, permission.KeyVendasRealizar); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByIDForUpdate(ctx, orderID, companyID)
		if err != nil {
			return err
		}
		if !o.CanTransitionTo(StatusProcessando) {
			return apperror.NewInvalidTransition(string(o.Status), string(StatusProcessando))
		}
		return s.repo.UpdateStatus(ctx, orderID, StatusProcessando)
	})
}

// Conclude receives the order's stock. Each line takes its explicit
// receipt quantity when one is supplied, else the requested quantity;
// positive quantities produce one ENTRADA movement per line and set the
// line's fulfilled quantity. Concluding an already CONCLUIDO order is a
// no-op, never a second round of movements.
func (s *Service) Conclude(ctx context.Context, userID, orderID, companyID int64, receipts []LineReceipt) error {
	if err := s.gate.Require(ctx, userID, permission.KeyEstoqueGerenciar); err != nil {
		return err
	}

	received := make(map[int64]int64, len(receipts))
	for _, r := range receipts {
		if r.Quantity < 0 {
			return apperror.NewValidation("received quantity cannot be negative").
				WithDetail("product_id", r.ProductID)
		}
		received[r.ProductID] = r.Quantity
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByIDForUpdate(ctx, orderID, companyID)
		if err != nil {
			return err
		}
		if o.Status == StatusConcluido {
			return nil
		}
		if !o.CanTransitionTo(StatusConcluido) {
			return apperror.NewInvalidTransition(string(o.Status), string(StatusConcluido))
		}

		var entries []*stock.Movement
		for i := range o.Lines {
			line := &o.Lines[i]

			qty := line.Requested
			if override, ok := received[line.ProductID]; ok {
				qty = override
			}
			if qty <= 0 {
				continue
			}

			m := stock.NewMovement(line.ProductID, o.CompanyID, userID, stock.KindEntrada, qty, stock.ReasonOrderCompleted)
			m.OrderID = &o.ID
			entries = append(entries, m)

			if err := s.repo.UpdateLineFulfilled(ctx, line.ID, qty); err != nil {
				return fmt.Errorf("update line fulfilled: %w", err)
			}
			line.Fulfilled = qty
		}

		if len(entries) > 0 {
			if err := s.movements.CreateBatch(ctx, entries); err != nil {
				return fmt.Errorf("record entry movements: %w", err)
			}
		}

		if err := s.repo.UpdateStatus(ctx, orderID, StatusConcluido); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if err := s.auditor.LogChange(ctx, "order", o.ID, audit.ActionConclude, map[string]any{
			"movements": len(entries),
		}); err != nil {
			return fmt.Errorf("audit order conclusion: %w", err)
		}

		logger.Info(ctx, "order concluded",
			"order_id", o.ID,
			"number", o.Number,
			"movements", len(entries),
		)
		return nil
	})
}

// Cancel moves a non-terminal order to CANCELADO. Lines already
// fulfilled get one compensating SAIDA movement each, reversing the
// stock that was received.
func (s *Service) Cancel(ctx context.Context, userID, orderID, companyID int64) error {
	if err := s.gate.Require(ctx, userID, permission.KeyEstoqueGerenciar); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByIDForUpdate(ctx, orderID, companyID)
		if err != nil {
			return err
		}
		if !o.CanTransitionTo(StatusCancelado) {
			return apperror.NewInvalidTransition(string(o.Status), string(StatusCancelado))
		}

		var exits []*stock.Movement
		for i := range o.Lines {
			line := &o.Lines[i]
			if line.Fulfilled <= 0 {
				continue
			}
			m := stock.NewMovement(line.ProductID, o.CompanyID, userID, stock.KindSaida, line.Fulfilled, stock.ReasonOrderCancelled)
			m.OrderID = &o.ID
			exits = append(exits, m)
		}

		if len(exits) > 0 {
			if err := s.movements.CreateBatch(ctx, exits); err != nil {
				return fmt.Errorf("record compensating movements: %w", err)
			}
		}

		if err := s.repo.UpdateStatus(ctx, orderID, StatusCancelado); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if err := s.auditor.LogChange(ctx, "order", o.ID, audit.ActionCancel, map[string]any{
			"movements": len(exits),
		}); err != nil {
			return fmt.Errorf("audit order cancellation: %w", err)
		}

		logger.Info(ctx, "order cancelled",
			"order_id", o.ID,
			"number", o.Number,
			"movements", len(exits),
		)
		return nil
	})
}
