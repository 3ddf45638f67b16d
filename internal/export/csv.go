// Package export renders the derived CSV reports. The column sets are part
// of the external contract (downstream spreadsheets key on the headers), so
// they change only deliberately.
package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
)

func sortedIDs(products map[string]model.Product) []string {
	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Products writes the full catalogue listing.
func Products(w io.Writer, products map[string]model.Product, allocations model.Allocations) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"productId", "modelNumber", "suffix", "category", "location",
		"barcode", "stock", "reserved", "totalPhysical", "description"}); err != nil {
		return err
	}
	for _, id := range sortedIDs(products) {
		p := products[id]
		reserved := allocations.TotalFor(id)
		rec := []string{
			id, p.ModelNumber, p.Suffix, p.Category, p.Location, p.BarcodeValue,
			strconv.Itoa(p.CurrentQuantity),
			strconv.Itoa(reserved),
			strconv.Itoa(p.CurrentQuantity + reserved),
			p.Description,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TotalStock writes the condensed stock listing.
func TotalStock(w io.Writer, products map[string]model.Product, allocations model.Allocations) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"productId", "modelNumber", "barcode", "category",
		"stock", "reserved", "totalPhysical"}); err != nil {
		return err
	}
	for _, id := range sortedIDs(products) {
		p := products[id]
		reserved := allocations.TotalFor(id)
		rec := []string{
			id, p.ModelNumber, p.BarcodeValue, p.Category,
			strconv.Itoa(p.CurrentQuantity),
			strconv.Itoa(reserved),
			strconv.Itoa(p.CurrentQuantity + reserved),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ProjectReport writes every allocation for one project. Products deleted
// after allocation render with their id as the display name.
func ProjectReport(w io.Writer, project string, products map[string]model.Product, allocations model.Allocations) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"project", "productId", "displayName", "barcode", "modelNumber",
		"allocatedQuantity", "stockQuantity", "category", "location", "description"}); err != nil {
		return err
	}
	ids := make([]string, 0, len(allocations))
	for id := range allocations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		qty := allocations.Get(id, project)
		if qty == 0 {
			continue
		}
		p := products[id]
		display := p.DisplayName()
		if p.ModelNumber == "" {
			display = id
		}
		rec := []string{
			project, id, display, p.BarcodeValue, p.ModelNumber,
			strconv.Itoa(qty),
			strconv.Itoa(p.CurrentQuantity),
			p.Category, p.Location, p.Description,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Transactions writes the full ledger listing, newest first as given.
func Transactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "product", "change", "after",
		"project", "action", "po", "remark"}); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(transactionRecord(tx)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// POOverview writes the PO-correlated slice of the ledger: entries whose PO
// number contains the search string (case-insensitive).
func POOverview(w io.Writer, txs []model.Transaction, search string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"poNumber", "date", "product", "qty", "stockAfter", "remark"}); err != nil {
		return err
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, tx := range txs {
		if needle != "" && !strings.Contains(strings.ToLower(tx.PONumber), needle) {
			continue
		}
		name := tx.DisplayName
		if name == "" {
			name = tx.ProductID
		}
		after := ""
		if tx.StockAfter != nil {
			after = strconv.Itoa(*tx.StockAfter)
		}
		rec := []string{
			tx.PONumber,
			tx.When.Format(time.RFC3339),
			name,
			strconv.Itoa(tx.StockChange),
			after,
			tx.Reason,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BulkPreview writes an uncommitted bulk sheet for offline review.
func BulkPreview(w io.Writer, rows []dto.BulkRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"model", "category", "suffix", "qty",
		"location", "barcode", "remark", "poNumber", "date"}); err != nil {
		return err
	}
	for _, r := range rows {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format(time.RFC3339)
		}
		rec := []string{
			r.ModelNumber, r.Category, r.Suffix,
			strconv.Itoa(r.Quantity),
			r.Location, r.Barcode, r.Remark, r.PONumber, date,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func transactionRecord(tx model.Transaction) []string {
	name := tx.DisplayName
	if name == "" {
		name = tx.ProductID
	}
	after := ""
	if tx.StockAfter != nil {
		after = strconv.Itoa(*tx.StockAfter)
	}
	return []string{
		tx.When.Format(time.RFC3339),
		name,
		strconv.Itoa(tx.StockChange),
		after,
		tx.Project,
		tx.ProjectAction,
		tx.PONumber,
		tx.Reason,
	}
}
