package handler

import (
	"strings"

	"github.com/danisworo/stockpile/internal/export"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type projectLine struct {
	ProductID   string `json:"productId"`
	DisplayName string `json:"displayName"`
	Quantity    int    `json:"quantity"`
}

type projectView struct {
	Name  string        `json:"name"`
	Total int           `json:"total"`
	Lines []projectLine `json:"lines"`
}

// ListProjects returns every project with its allocation lines. Lines for
// deleted products stay visible under the retired id.
func (h *Handler) ListProjects(c *gin.Context) {
	products := h.uc.Products()
	allocations := h.uc.Allocations()

	views := make([]projectView, 0)
	for _, name := range h.uc.ProjectNames() {
		view := projectView{Name: name}
		for id := range allocations {
			qty := allocations.Get(id, name)
			if qty == 0 {
				continue
			}
			display := id
			if p, ok := products[id]; ok {
				display = p.DisplayName()
			}
			view.Lines = append(view.Lines, projectLine{ProductID: id, DisplayName: display, Quantity: qty})
			view.Total += qty
		}
		views = append(views, view)
	}
	Success(c, gin.H{"projects": views})
}

func (h *Handler) ProjectReport(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		BadRequest(c, "project name is required")
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="project-report.csv"`)
	if err := export.ProjectReport(c.Writer, name, h.uc.Products(), h.uc.Allocations()); err != nil {
		h.logger.Error("export project report", zap.Error(err))
	}
}

func (h *Handler) Reserve(c *gin.Context) {
	var input dto.ProjectActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid reserve payload: "+err.Error())
		return
	}
	if err := h.uc.ReserveForProject(c.Request.Context(), &input); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{
		"productId": input.ProductID,
		"project":   input.Project,
		"reserved":  input.Quantity,
		"allocated": h.uc.Allocations().Get(input.ProductID, input.Project),
	})
}

func (h *Handler) Release(c *gin.Context) {
	var input dto.ProjectActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid release payload: "+err.Error())
		return
	}
	if err := h.uc.ReleaseFromProject(c.Request.Context(), &input); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{
		"productId": input.ProductID,
		"project":   input.Project,
		"released":  input.Quantity,
		"allocated": h.uc.Allocations().Get(input.ProductID, input.Project),
	})
}

// Return hands stock back to the shelf, clamped to the current allocation.
// The response reports how much actually moved.
func (h *Handler) Return(c *gin.Context) {
	var input dto.ProjectActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid return payload: "+err.Error())
		return
	}
	returned, err := h.uc.ReturnFromProject(c.Request.Context(), input.ProductID, input.Project, input.Quantity)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{
		"productId": input.ProductID,
		"project":   input.Project,
		"returned":  returned,
		"allocated": h.uc.Allocations().Get(input.ProductID, input.Project),
	})
}
