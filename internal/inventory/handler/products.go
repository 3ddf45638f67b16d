package handler

import (
	"sort"
	"strings"

	"github.com/danisworo/stockpile/internal/export"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// productView is the catalogue row shape: the stored fields plus the derived
// quantities the UI renders next to them.
type productView struct {
	ID            string `json:"productId"`
	ModelNumber   string `json:"modelNumber"`
	Suffix        string `json:"suffix"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	Barcode       string `json:"barcode"`
	Description   string `json:"description"`
	Stock         int    `json:"stock"`
	Reserved      int    `json:"reserved"`
	TotalPhysical int    `json:"totalPhysical"`
}

func toProductView(id string, p model.Product, reserved int) productView {
	return productView{
		ID:            id,
		ModelNumber:   p.ModelNumber,
		Suffix:        p.Suffix,
		Category:      p.Category,
		Location:      p.Location,
		Barcode:       p.BarcodeValue,
		Description:   p.Description,
		Stock:         p.CurrentQuantity,
		Reserved:      reserved,
		TotalPhysical: p.CurrentQuantity + reserved,
	}
}

func matchesSearch(id string, p model.Product, needle string) bool {
	for _, field := range []string{id, p.ModelNumber, p.BarcodeValue, p.Location, p.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ListProducts returns a filtered, paginated catalogue page.
func (h *Handler) ListProducts(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	page, pageSize := GetPagination(c)

	products := h.uc.Products()
	allocations := h.uc.Allocations()

	ids := make([]string, 0, len(products))
	for id, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !matchesSearch(id, p, search) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := len(ids)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]productView, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, toProductView(id, products[id], allocations.TotalFor(id)))
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	})
}

// SaveProduct creates, edits or renames one product.
func (h *Handler) SaveProduct(c *gin.Context) {
	var input dto.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid product payload: "+err.Error())
		return
	}
	p, err := h.uc.SaveProduct(c.Request.Context(), &input)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	id := p.ID()
	Created(c, toProductView(id, *p, h.uc.TotalProjectQuantity(id)))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.uc.Product(id); !ok {
		Error(c, 40400, "product not found: "+id)
		return
	}
	if err := h.uc.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondDomainError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

func (h *Handler) ExportProducts(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	if err := export.Products(c.Writer, h.uc.Products(), h.uc.Allocations()); err != nil {
		h.logger.Error("export products", zap.Error(err))
	}
}
