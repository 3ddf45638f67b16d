package dto

import (
	"strings"
	"time"

	"github.com/danisworo/stockpile/internal/model"
)

// ProductInput carries the add/edit product form. OldID is set when editing;
// when the derived id differs from OldID the save is a rename and the old
// record and allocation key migrate to the new id.
type ProductInput struct {
	OldID           string `json:"oldId"`
	ModelNumber     string `json:"modelNumber"`
	Suffix          string `json:"suffix"`
	Category        string `json:"category"`
	Location        string `json:"location"`
	Barcode         string `json:"barcode"`
	Description     string `json:"description"`
	CurrentQuantity int    `json:"currentQuantity"`
}

func (in *ProductInput) Product() model.Product {
	return model.Product{
		ModelNumber:     strings.TrimSpace(in.ModelNumber),
		Suffix:          strings.TrimSpace(in.Suffix),
		Category:        strings.TrimSpace(in.Category),
		Location:        strings.TrimSpace(in.Location),
		BarcodeValue:    strings.TrimSpace(in.Barcode),
		Description:     strings.TrimSpace(in.Description),
		CurrentQuantity: in.CurrentQuantity,
	}
}

// ProjectActionInput drives reserve and strict release.
type ProjectActionInput struct {
	ProductID string    `json:"productId"`
	Project   string    `json:"project"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	PONumber  string    `json:"poNumber"`
	When      time.Time `json:"when"` // zero value means "now"
}

// BulkRow is one line of a bulk stock-in or stock-out sheet.
type BulkRow struct {
	ModelNumber string    `json:"modelNumber"`
	Suffix      string    `json:"suffix"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Barcode     string    `json:"barcode"`
	Quantity    int       `json:"quantity"`
	Remark      string    `json:"remark"`
	PONumber    string    `json:"poNumber"`
	Date        time.Time `json:"date"` // zero value means "now"
}

// ID derives the row's product id.
func (r *BulkRow) ID() string {
	return model.ProductID(r.ModelNumber, r.Suffix)
}

// TransactionFilters narrows ledger listings by case-insensitive substring.
type TransactionFilters struct {
	PO     string
	Model  string
	Remark string
}

// ProductFilters narrows catalogue listings.
type ProductFilters struct {
	Category string
	Search   string
	Page     int
	PageSize int
}
