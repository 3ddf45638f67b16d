package model

import "strings"

// Product is a stock-keeping unit. Its identity is derived from ModelNumber
// and Suffix, not stored as a field: the derived id is the storage key
// (historically the "barcode" column), while BarcodeValue carries the
// physical barcode printed on the item. The two are distinct on purpose.
type Product struct {
	ModelNumber     string `db:"model_number" json:"modelNumber"`
	Suffix          string `db:"suffix" json:"suffix"`
	Category        string `db:"category" json:"category"`
	Location        string `db:"location" json:"location"`
	BarcodeValue    string `db:"barcode_value" json:"barcode"`
	Description     string `db:"description" json:"description"`
	CurrentQuantity int    `db:"current_quantity" json:"currentQuantity"`
}

// ID derives the product id: "model" or "model-suffix".
func (p Product) ID() string {
	m := strings.TrimSpace(p.ModelNumber)
	s := strings.TrimSpace(p.Suffix)
	if s != "" {
		return m + "-" + s
	}
	return m
}

// DisplayName is the human-readable name snapshotted into ledger entries so
// history survives renames.
func (p Product) DisplayName() string {
	m := p.ModelNumber
	if m == "" {
		m = "Unknown"
	}
	if p.Suffix != "" {
		return m + "-" + p.Suffix
	}
	return m
}

// ProductID derives an id from raw model/suffix strings without building a Product.
func ProductID(modelNumber, suffix string) string {
	return Product{ModelNumber: modelNumber, Suffix: suffix}.ID()
}
