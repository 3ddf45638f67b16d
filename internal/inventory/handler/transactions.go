package handler

import (
	"strings"

	"github.com/danisworo/stockpile/internal/export"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func transactionFilters(c *gin.Context) dto.TransactionFilters {
	return dto.TransactionFilters{
		PO:     strings.TrimSpace(c.Query("po")),
		Model:  strings.TrimSpace(c.Query("model")),
		Remark: strings.TrimSpace(c.Query("remark")),
	}
}

// ListTransactions returns the in-memory ledger slice, newest first.
func (h *Handler) ListTransactions(c *gin.Context) {
	txs := h.uc.Transactions(transactionFilters(c))
	Success(c, gin.H{"items": txs, "total": len(txs)})
}

// AddTransaction appends a free-form ledger entry (manual correction note).
// Stock quantities are not touched; the dedicated operations do that.
func (h *Handler) AddTransaction(c *gin.Context) {
	var tx model.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		BadRequest(c, "invalid transaction payload: "+err.Error())
		return
	}
	if err := h.uc.AddTransaction(c.Request.Context(), tx); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Created(c, gin.H{"productId": tx.ProductID})
}

func (h *Handler) ExportTransactions(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.Transactions(c.Writer, h.uc.Transactions(transactionFilters(c))); err != nil {
		h.logger.Error("export transactions", zap.Error(err))
	}
}

// POOverview lists ledger entries correlated by PO number substring.
func (h *Handler) POOverview(c *gin.Context) {
	needle := strings.ToLower(strings.TrimSpace(c.Query("po")))
	all := h.uc.Transactions(dto.TransactionFilters{})
	items := make([]model.Transaction, 0)
	for _, tx := range all {
		if tx.PONumber == "" {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(tx.PONumber), needle) {
			continue
		}
		items = append(items, tx)
	}
	Success(c, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) ExportPOOverview(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="po-overview.csv"`)
	if err := export.POOverview(c.Writer, h.uc.Transactions(dto.TransactionFilters{}), c.Query("po")); err != nil {
		h.logger.Error("export po overview", zap.Error(err))
	}
}
