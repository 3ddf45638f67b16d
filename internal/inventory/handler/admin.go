package handler

import (
	"fmt"
	"net/http"

	"github.com/danisworo/stockpile/internal/model"
	"github.com/gin-gonic/gin"
)

// Backup streams the full durable state as a downloadable JSON file.
func (h *Handler) Backup(c *gin.Context) {
	b, err := h.uc.BackupAll(c.Request.Context())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	filename := fmt.Sprintf("inventory-backup-%s.json", b.BackupDate.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, b)
}

// Restore replaces all durable state from an uploaded backup file. This is
// destructive and not undoable; the caller owns the confirmation step.
func (h *Handler) Restore(c *gin.Context) {
	var b model.Backup
	if err := c.ShouldBindJSON(&b); err != nil {
		BadRequest(c, "invalid backup payload: "+err.Error())
		return
	}
	if err := h.uc.RestoreAll(c.Request.Context(), &b); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{
		"products":     len(b.Products),
		"transactions": len(b.Transactions),
		"categories":   len(b.Categories),
	})
}
