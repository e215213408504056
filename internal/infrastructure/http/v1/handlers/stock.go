package handlers

import (
	"github.com/gin-gonic/gin"

	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/infrastructure/http/v1/dto"
)

// StockHandler handles movement recording, balances, and history.
type StockHandler struct {
	BaseHandler
	recorder *stock.Recorder
	ledger   *stock.Ledger
}

// NewStockHandler creates a stock handler.
func NewStockHandler(recorder *stock.Recorder, ledger *stock.Ledger) *StockHandler {
	return &StockHandler{recorder: recorder, ledger: ledger}
}

// Record records one stock movement.
// POST /api/v1/stock/movements
func (h *StockHandler) Record(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reason := stock.Reason(req.Reason)
	if reason == "" {
		reason = stock.ReasonManual
	}

	m, err := h.recorder.Record(c.Request.Context(), stock.MovementInput{
		ProductID: req.ProductID,
		Kind:      stock.Kind(req.Kind),
		Quantity:  req.Quantity,
		Reason:    reason,
		Note:      req.Note,
		CompanyID: h.CompanyID(c),
		UserID:    h.UserID(c),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovement(m))
}

// Balance returns the derived balance of one product.
// GET /api/v1/stock/products/:id/balance
func (h *StockHandler) Balance(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BalanceResponse{ProductID: id, Balance: balance})
}

// History returns a product's movement history, newest first.
// GET /api/v1/stock/products/:id/movements
func (h *StockHandler) History(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.HistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := stock.HistoryFilter{Limit: req.Limit, Offset: req.Offset}
	if req.Kind != nil {
		kind := stock.Kind(*req.Kind)
		filter.Kind = &kind
	}

	movements, err := h.recorder.History(c.Request.Context(), id, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i := range movements {
		items[i] = dto.FromMovement(&movements[i])
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}
