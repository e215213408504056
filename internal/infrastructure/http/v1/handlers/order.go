package handlers

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/domain/order"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles the purchase-order lifecycle.
type OrderHandler struct {
	BaseHandler
	orders *order.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create creates a purchase order.
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o := &order.Order{
		CompanyID: h.CompanyID(c),
		CreatedBy: h.UserID(c),
		Note:      req.Note,
	}
	for _, l := range req.Lines {
		o.Lines = append(o.Lines, order.Line{
			ProductID: l.ProductID,
			Requested: l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	if err := h.orders.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, o.ID)
}

// Get returns one order with its lines.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), id, h.CompanyID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(o))
}

// List returns the company's orders.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := order.ListFilter{Limit: page.Limit, Offset: page.Offset}
	if s := c.Query("status"); s != "" {
		status := order.Status(s)
		filter.Status = &status
	}

	orders, err := h.orders.List(c.Request.Context(), h.CompanyID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		items[i] = dto.FromOrder(&orders[i])
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Process moves an order to PROCESSANDO.
// POST /api/v1/orders/:id/process
func (h *OrderHandler) Process(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.Process(c.Request.Context(), h.UserID(c), id, h.CompanyID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "order processing")
}

// Conclude receives the order's stock and moves it to CONCLUIDO.
// POST /api/v1/orders/:id/conclude
func (h *OrderHandler) Conclude(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.ConcludeOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receipts := make([]order.LineReceipt, len(req.Receipts))
	for i, r := range req.Receipts {
		receipts[i] = order.LineReceipt{ProductID: r.ProductID, Quantity: r.Quantity}
	}

	if err := h.orders.Conclude(c.Request.Context(), h.UserID(c), id, h.CompanyID(c), receipts); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "order concluded")
}

// Cancel cancels an order, reversing any fulfilled stock.
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.Cancel(c.Request.Context(), h.UserID(c), id, h.CompanyID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "order cancelled")
}
