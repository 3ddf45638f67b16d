// Package handler is the HTTP presentation adapter. It binds request bodies,
// delegates to the accounting usecase and maps typed domain errors onto
// status codes. No accounting rules live here.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler owns every route group.
type Handler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func New(uc inventory.UseCase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, logger: log}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sync", h.Sync)

		v1.GET("/products", h.ListProducts)
		v1.POST("/products", h.SaveProduct)
		v1.DELETE("/products/:id", h.DeleteProduct)
		v1.GET("/products/export", h.ExportProducts)

		v1.GET("/stock/total", h.TotalStock)
		v1.GET("/stock/total/export", h.ExportTotalStock)
		v1.POST("/stock/bulk-in", h.BulkStockIn)
		v1.POST("/stock/bulk-out", h.BulkStockOut)
		v1.POST("/stock/bulk/preview", h.BulkPreview)

		v1.GET("/projects", h.ListProjects)
		v1.GET("/projects/:name/report", h.ProjectReport)
		v1.POST("/projects/reserve", h.Reserve)
		v1.POST("/projects/release", h.Release)
		v1.POST("/projects/return", h.Return)

		v1.GET("/transactions", h.ListTransactions)
		v1.POST("/transactions", h.AddTransaction)
		v1.GET("/transactions/export", h.ExportTransactions)
		v1.GET("/transactions/po-overview", h.POOverview)
		v1.GET("/transactions/po-overview/export", h.ExportPOOverview)

		v1.GET("/categories", h.ListCategories)
		v1.POST("/categories", h.AddCategory)
		v1.PUT("/categories/:name", h.RenameCategory)
		v1.DELETE("/categories/:name", h.RemoveCategory)

		v1.GET("/backup", h.Backup)
		v1.POST("/restore", h.Restore)
	}
}

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated listings.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Error renders an application code whose first three digits are the HTTP
// status.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// respondDomainError translates the usecase's typed errors. Anything
// unrecognised is treated as a storage transport failure.
func (h *Handler) respondDomainError(c *gin.Context, err error) {
	var (
		validation *inventory.ValidationError
		batch      *inventory.BatchValidationError
		stock      *inventory.InsufficientStockError
		release    *inventory.OverReleaseError
		partial    *inventory.PartialBatchFailure
	)
	switch {
	case errors.As(err, &validation):
		Error(c, 40000, validation.Error())
	case errors.As(err, &batch):
		c.JSON(http.StatusBadRequest, Response{
			Code:    40001,
			Message: "batch validation failed",
			Data:    gin.H{"rows": batch.Rows},
		})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, Response{
			Code:    40900,
			Message: stock.Error(),
			Data: gin.H{
				"productId": stock.ProductID,
				"requested": stock.Requested,
				"available": stock.Available,
			},
		})
	case errors.As(err, &release):
		c.JSON(http.StatusConflict, Response{
			Code:    40901,
			Message: release.Error(),
			Data: gin.H{
				"productId": release.ProductID,
				"project":   release.Project,
				"requested": release.Requested,
				"allocated": release.Allocated,
			},
		})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, Response{
			Code:    50001,
			Message: partial.Error(),
			Data:    gin.H{"committed": partial.Committed, "total": partial.Total},
		})
	default:
		h.logger.Error("storage failure", zap.Error(err))
		Error(c, 50200, err.Error())
	}
}

// GetPagination reads page/page_size with the catalogue defaults.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 50

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 200 {
			pageSize = v
		}
	}
	return page, pageSize
}

func (h *Handler) Sync(c *gin.Context) {
	if err := h.uc.Sync(c.Request.Context()); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{"message": "state synced"})
}
