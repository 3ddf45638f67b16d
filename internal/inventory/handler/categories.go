package handler

import (
	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type renameCategoryRequest struct {
	NewName string `json:"newName"`
}

func (h *Handler) ListCategories(c *gin.Context) {
	Success(c, gin.H{"categories": h.uc.Categories()})
}

func (h *Handler) AddCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid category payload: "+err.Error())
		return
	}
	if err := h.uc.AddCategory(c.Request.Context(), req.Name); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Created(c, gin.H{"categories": h.uc.Categories()})
}

func (h *Handler) RenameCategory(c *gin.Context) {
	var req renameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid rename payload: "+err.Error())
		return
	}
	if err := h.uc.RenameCategory(c.Request.Context(), c.Param("name"), req.NewName); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{"categories": h.uc.Categories()})
}

// RemoveCategory drops the vocabulary entry only. Products referencing the
// name keep it; they are not recategorised.
func (h *Handler) RemoveCategory(c *gin.Context) {
	if err := h.uc.RemoveCategory(c.Request.Context(), c.Param("name")); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{"categories": h.uc.Categories()})
}
