package handlers

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/notification"
	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	BaseHandler
	products *product.Service
	ledger   *stock.Ledger
}

// NewProductHandler creates a product handler.
func NewProductHandler(products *product.Service, ledger *stock.Ledger) *ProductHandler {
	return &ProductHandler{products: products, ledger: ledger}
}

// Create creates a product.
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := product.NewProduct(h.CompanyID(c), req.Name, req.UnitPrice, req.MinQuantity)
	p.Description = req.Description

	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID)
}

// Get returns one product with its derived balance.
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if p.CompanyID != h.CompanyID(c) {
		h.Error(c, apperror.NewNotFound("product", id))
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), p.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p, balance))
}

// List returns the company's products with balances, resolved in one
// batched ledger query.
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	products, err := h.products.ListByCompany(c.Request.Context(), h.CompanyID(c), product.ListFilter{
		Search: c.Query("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	balances, err := h.ledger.Balances(c.Request.Context(), ids)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, len(products))
	for i := range products {
		items[i] = dto.FromProduct(&products[i], balances[products[i].ID])
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// LowStock returns monitored products currently at an alert severity.
// GET /api/v1/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	monitored, err := h.products.ListMonitored(ctx, h.CompanyID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	ids := make([]int64, len(monitored))
	for i := range monitored {
		ids[i] = monitored[i].ID
	}

	balances, err := h.ledger.Balances(ctx, ids)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LowStockProductResponse, 0, len(monitored))
	for i := range monitored {
		p := &monitored[i]
		severity, alert := notification.Classify(balances[p.ID], p.MinQuantity)
		if !alert {
			continue
		}
		items = append(items, dto.LowStockProductResponse{
			ProductResponse: dto.FromProduct(p, balances[p.ID]),
			Severity:        string(severity),
		})
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Update updates a product.
// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if p.CompanyID != h.CompanyID(c) {
		h.Error(c, apperror.NewNotFound("product", id))
		return
	}

	p.Name = req.Name
	p.Description = req.Description
	p.UnitPrice = req.UnitPrice
	p.MinQuantity = req.MinQuantity

	if err := h.products.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "product updated")
}

// Delete removes a product and its movement history.
// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	if p.CompanyID != h.CompanyID(c) {
		h.Error(c, apperror.NewNotFound("product", id))
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
