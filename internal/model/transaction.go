package model

import "time"

// Transaction is one ledger entry. The ledger is append-only and advisory:
// it references products by id without owning them, so entries keep pointing
// at renamed or deleted ids.
type Transaction struct {
	ProductID     string    `db:"barcode" json:"productId"`
	StockChange   int       `db:"stock_change" json:"stockChange"`
	Reason        string    `db:"reason" json:"reason"`
	Ref           string    `db:"ref" json:"ref"`
	PONumber      string    `db:"po_number" json:"poNumber,omitempty"`
	When          time.Time `db:"created_at" json:"when"`
	DisplayName   string    `db:"display_name" json:"displayName,omitempty"`
	StockAfter    *int      `db:"stock_after" json:"stockAfter,omitempty"`
	Project       string    `db:"project" json:"project,omitempty"`
	ProjectAction string    `db:"project_action" json:"projectAction,omitempty"`
}
