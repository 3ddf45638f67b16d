package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/inventory/usecase"
	"github.com/danisworo/stockpile/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a minimal in-memory Store backing the handler tests.
type memStore struct {
	products     map[string]model.Product
	transactions []model.Transaction
	settings     map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]model.Product{},
		settings: map[string]json.RawMessage{},
	}
}

func (m *memStore) FetchAllProducts(ctx context.Context) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(m.products))
	for id, p := range m.products {
		out[id] = p
	}
	return out, nil
}

func (m *memStore) UpsertProduct(ctx context.Context, id string, p model.Product) error {
	m.products[id] = p
	return nil
}

func (m *memStore) UpsertProducts(ctx context.Context, products map[string]model.Product) error {
	for id, p := range products {
		m.products[id] = p
	}
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, id string) error {
	delete(m.products, id)
	return nil
}

func (m *memStore) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *memStore) FetchRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0, len(m.transactions))
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.transactions[i])
	}
	return out, nil
}

func (m *memStore) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	raw, ok := m.settings[key]
	return raw, ok, nil
}

func (m *memStore) PutSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.settings[key] = raw
	return nil
}

var _ inventory.Store = (*memStore)(nil)

func newTestRouter(t *testing.T, store *memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := usecase.NewInventoryUseCase(store, zap.NewNop(), nil)
	require.NoError(t, uc.Sync(context.Background()))

	r := gin.New()
	New(uc, zap.NewNop()).Register(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, newMemStore())
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSaveProductRoute(t *testing.T) {
	r := newTestRouter(t, newMemStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/products", gin.H{
		"modelNumber": "WM-100", "suffix": "B", "currentQuantity": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Code int         `json:"code"`
		Data productView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "WM-100-B", resp.Data.ID)
	assert.Equal(t, 5, resp.Data.Stock)
}

func TestSaveProductValidationMapsTo400(t *testing.T) {
	r := newTestRouter(t, newMemStore())
	w := doJSON(t, r, http.MethodPost, "/api/v1/products", gin.H{"modelNumber": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMissingProductIs404(t *testing.T) {
	r := newTestRouter(t, newMemStore())
	w := doJSON(t, r, http.MethodDelete, "/api/v1/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProductsFilterAndPagination(t *testing.T) {
	store := newMemStore()
	store.products["WM-100"] = model.Product{ModelNumber: "WM-100", Category: "Motors", CurrentQuantity: 1}
	store.products["ZX-9"] = model.Product{ModelNumber: "ZX-9", Category: "Sensors", CurrentQuantity: 2}
	r := newTestRouter(t, store)

	w := doJSON(t, r, http.MethodGet, "/api/v1/products?category=Motors", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items      []productView `json:"items"`
			Pagination *Pagination   `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "WM-100", resp.Data.Items[0].ID)
	assert.Equal(t, 1, resp.Data.Pagination.Total)
}

func TestReserveInsufficientStockMapsTo409(t *testing.T) {
	store := newMemStore()
	store.products["WM-100"] = model.Product{ModelNumber: "WM-100", CurrentQuantity: 1}
	r := newTestRouter(t, store)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects/reserve", gin.H{
		"productId": "WM-100", "project": "Alpha", "quantity": 10,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 40900, resp.Code)
}

func TestBulkOutBatchValidationMapsTo400(t *testing.T) {
	r := newTestRouter(t, newMemStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/stock/bulk-out", gin.H{
		"rows": []gin.H{{"modelNumber": "missing", "quantity": 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 40001, resp.Code)
}

func TestReserveReleaseRoundTripOverHTTP(t *testing.T) {
	store := newMemStore()
	store.products["WM-100"] = model.Product{ModelNumber: "WM-100", CurrentQuantity: 10}
	r := newTestRouter(t, store)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects/reserve", gin.H{
		"productId": "WM-100", "project": "Alpha", "quantity": 4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/projects/return", gin.H{
		"productId": "WM-100", "project": "Alpha", "quantity": 99,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Returned  int `json:"returned"`
			Allocated int `json:"allocated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Data.Returned, "return clamps to the allocation")
	assert.Equal(t, 0, resp.Data.Allocated)
}

func TestCategoriesRoutes(t *testing.T) {
	r := newTestRouter(t, newMemStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/categories", gin.H{"name": "Motors"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/categories/Motors", gin.H{"newName": "Drives"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/categories/Drives", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/categories", nil)
	var resp struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Default"}, resp.Data.Categories)
}

func TestProductsExportIsCSV(t *testing.T) {
	store := newMemStore()
	store.products["WM-100"] = model.Product{ModelNumber: "WM-100", CurrentQuantity: 2}
	r := newTestRouter(t, store)

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "productId,modelNumber")
}

func TestBackupRestoreOverHTTP(t *testing.T) {
	store := newMemStore()
	store.products["WM-100"] = model.Product{ModelNumber: "WM-100", CurrentQuantity: 3}
	r := newTestRouter(t, store)

	w := doJSON(t, r, http.MethodGet, "/api/v1/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var b model.Backup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	require.Len(t, b.Products, 1)

	fresh := newMemStore()
	r2 := newTestRouter(t, fresh)
	w = doJSON(t, r2, http.MethodPost, "/api/v1/restore", b)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, fresh.products, 1)
}
