package handler

import (
	"github.com/danisworo/stockpile/internal/export"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TotalStock returns the condensed stock listing for every product.
func (h *Handler) TotalStock(c *gin.Context) {
	products := h.uc.Products()
	allocations := h.uc.Allocations()

	items := make([]productView, 0, len(products))
	for id, p := range products {
		items = append(items, toProductView(id, p, allocations.TotalFor(id)))
	}
	Success(c, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) ExportTotalStock(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="total-stock-list.csv"`)
	if err := export.TotalStock(c.Writer, h.uc.Products(), h.uc.Allocations()); err != nil {
		h.logger.Error("export total stock", zap.Error(err))
	}
}

type bulkRequest struct {
	Rows []dto.BulkRow `json:"rows"`
}

func (h *Handler) BulkStockIn(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid bulk payload: "+err.Error())
		return
	}
	committed, err := h.uc.BulkStockIn(c.Request.Context(), req.Rows)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{"committed": committed})
}

func (h *Handler) BulkStockOut(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid bulk payload: "+err.Error())
		return
	}
	committed, err := h.uc.BulkStockOut(c.Request.Context(), req.Rows)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{"committed": committed})
}

// BulkPreview renders an uncommitted sheet as CSV so it can be reviewed
// offline before posting it to bulk-in or bulk-out.
func (h *Handler) BulkPreview(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid bulk payload: "+err.Error())
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="bulk-preview.csv"`)
	if err := export.BulkPreview(c.Writer, req.Rows); err != nil {
		h.logger.Error("export bulk preview", zap.Error(err))
	}
}
