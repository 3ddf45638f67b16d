package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/danisworo/stockpile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return records
}

func TestProductsCSV(t *testing.T) {
	products := map[string]model.Product{
		"WM-100-B": {ModelNumber: "WM-100", Suffix: "B", Category: "Motors",
			Location: "A1", BarcodeValue: "8990001", CurrentQuantity: 6},
		"ZX-9": {ModelNumber: "ZX-9", CurrentQuantity: 2},
	}
	allocations := model.Allocations{}
	allocations.Add("WM-100-B", "Alpha", 4)

	var buf bytes.Buffer
	require.NoError(t, Products(&buf, products, allocations))

	records := parseCSV(t, &buf)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"productId", "modelNumber", "suffix", "category", "location",
		"barcode", "stock", "reserved", "totalPhysical", "description"}, records[0])

	// rows sorted by id
	assert.Equal(t, "WM-100-B", records[1][0])
	assert.Equal(t, "6", records[1][6])
	assert.Equal(t, "4", records[1][7])
	assert.Equal(t, "10", records[1][8])
	assert.Equal(t, "ZX-9", records[2][0])
	assert.Equal(t, "0", records[2][7])
}

func TestProjectReportCSV(t *testing.T) {
	products := map[string]model.Product{
		"WM-100": {ModelNumber: "WM-100", Category: "Motors", CurrentQuantity: 6},
	}
	allocations := model.Allocations{}
	allocations.Add("WM-100", "Alpha", 4)
	allocations.Add("gone", "Alpha", 1) // deleted product, allocation survives
	allocations.Add("WM-100", "Beta", 9)

	var buf bytes.Buffer
	require.NoError(t, ProjectReport(&buf, "Alpha", products, allocations))

	records := parseCSV(t, &buf)
	require.Len(t, records, 3, "only Alpha lines appear")
	assert.Equal(t, "WM-100", records[1][1])
	assert.Equal(t, "4", records[1][5])
	assert.Equal(t, "gone", records[2][1])
	assert.Equal(t, "gone", records[2][2], "deleted products fall back to the id")
}

func TestTransactionsCSV(t *testing.T) {
	after := 3
	txs := []model.Transaction{{
		ProductID:     "WM-100",
		StockChange:   -2,
		Reason:        "Reserved for Alpha",
		When:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DisplayName:   "WM-100",
		StockAfter:    &after,
		Project:       "Alpha",
		ProjectAction: "reserve",
		PONumber:      "PO-1",
	}}

	var buf bytes.Buffer
	require.NoError(t, Transactions(&buf, txs))

	records := parseCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-06-01T12:00:00Z", records[1][0])
	assert.Equal(t, "-2", records[1][2])
	assert.Equal(t, "3", records[1][3])
	assert.Equal(t, "reserve", records[1][5])
}

func TestPOOverviewFiltersBySubstring(t *testing.T) {
	txs := []model.Transaction{
		{ProductID: "a", PONumber: "PO-100", When: time.Now()},
		{ProductID: "b", PONumber: "PO-200", When: time.Now()},
		{ProductID: "c", When: time.Now()}, // no PO: still listed when unfiltered
	}

	var buf bytes.Buffer
	require.NoError(t, POOverview(&buf, txs, "po-1"))
	records := parseCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "PO-100", records[1][0])

	buf.Reset()
	require.NoError(t, POOverview(&buf, txs, ""))
	assert.Len(t, parseCSV(t, &buf), 4)
}

func TestTransactionsCSVMissingStockAfter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transactions(&buf, []model.Transaction{
		{ProductID: "WM-100", StockChange: 1, When: time.Now()},
	}))
	records := parseCSV(t, &buf)
	assert.Equal(t, "", records[1][3])
	assert.Equal(t, "WM-100", records[1][1], "blank display name falls back to the id")
}
