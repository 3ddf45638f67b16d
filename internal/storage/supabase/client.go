// Package supabase implements the persistence provider against a hosted
// PostgREST-style table service.
//
// The products table keeps its historical key column name "barcode", which
// always holds the derived product id; the physical barcode printed on the
// item travels in the separate barcode_value column. The two must never be
// conflated.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/model"
	"go.uber.org/zap"
)

const (
	getRetryAttempts = 3
	getRetryBaseWait = 200 * time.Millisecond
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ inventory.Store = (*Client)(nil)

func NewClient(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type productRow struct {
	Barcode         string `json:"barcode"` // storage key: derived product id
	ModelNumber     string `json:"model_number"`
	Suffix          string `json:"suffix"`
	Category        string `json:"category"`
	Location        string `json:"location"`
	BarcodeValue    string `json:"barcode_value"`
	Description     string `json:"description"`
	CurrentQuantity int    `json:"current_quantity"`
}

func toProductRow(id string, p model.Product) productRow {
	return productRow{
		Barcode:         id,
		ModelNumber:     p.ModelNumber,
		Suffix:          p.Suffix,
		Category:        p.Category,
		Location:        p.Location,
		BarcodeValue:    p.BarcodeValue,
		Description:     p.Description,
		CurrentQuantity: p.CurrentQuantity,
	}
}

func (r productRow) product() model.Product {
	return model.Product{
		ModelNumber:     r.ModelNumber,
		Suffix:          r.Suffix,
		Category:        r.Category,
		Location:        r.Location,
		BarcodeValue:    r.BarcodeValue,
		Description:     r.Description,
		CurrentQuantity: r.CurrentQuantity,
	}
}

type transactionRow struct {
	Barcode       string    `json:"barcode"`
	StockChange   int       `json:"stock_change"`
	Reason        string    `json:"reason"`
	Ref           string    `json:"ref"`
	PONumber      string    `json:"po_number"`
	CreatedAt     time.Time `json:"created_at"`
	DisplayName   string    `json:"display_name"`
	StockAfter    *int      `json:"stock_after"`
	Project       string    `json:"project"`
	ProjectAction string    `json:"project_action"`
}

type settingRow struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (c *Client) FetchAllProducts(ctx context.Context) (map[string]model.Product, error) {
	var rows []productRow
	if err := c.getWithRetry(ctx, "products?select=*", &rows); err != nil {
		return nil, err
	}
	out := make(map[string]model.Product, len(rows))
	for _, r := range rows {
		out[r.Barcode] = r.product()
	}
	return out, nil
}

// UpsertProduct creates or replaces one row, resolved by the key column.
func (c *Client) UpsertProduct(ctx context.Context, id string, p model.Product) error {
	return c.do(ctx, http.MethodPost, "products", toProductRow(id, p), true, nil)
}

// UpsertProducts is a merge-by-key upsert: rows whose key already exists are
// replaced, all other existing rows are left alone. It is NOT a collection
// replace (the local adapter differs here).
func (c *Client) UpsertProducts(ctx context.Context, products map[string]model.Product) error {
	rows := make([]productRow, 0, len(products))
	for id, p := range products {
		rows = append(rows, toProductRow(id, p))
	}
	return c.do(ctx, http.MethodPost, "products", rows, true, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "products?barcode=eq."+url.QueryEscape(id), nil, false, nil)
}

func (c *Client) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	row := transactionRow{
		Barcode:       tx.ProductID,
		StockChange:   tx.StockChange,
		Reason:        tx.Reason,
		Ref:           tx.Ref,
		PONumber:      tx.PONumber,
		CreatedAt:     tx.When,
		DisplayName:   tx.DisplayName,
		StockAfter:    tx.StockAfter,
		Project:       tx.Project,
		ProjectAction: tx.ProjectAction,
	}
	return c.do(ctx, http.MethodPost, "transactions", row, false, nil)
}

func (c *Client) FetchRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	endpoint := fmt.Sprintf("transactions?select=*&order=created_at.desc&limit=%d", limit)
	var rows []transactionRow
	if err := c.getWithRetry(ctx, endpoint, &rows); err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Transaction{
			ProductID:     r.Barcode,
			StockChange:   r.StockChange,
			Reason:        r.Reason,
			Ref:           r.Ref,
			PONumber:      r.PONumber,
			When:          r.CreatedAt,
			DisplayName:   r.DisplayName,
			StockAfter:    r.StockAfter,
			Project:       r.Project,
			ProjectAction: r.ProjectAction,
		})
	}
	return out, nil
}

func (c *Client) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	endpoint := "settings?key=eq." + url.QueryEscape(key) + "&select=value"
	var rows []settingRow
	if err := c.getWithRetry(ctx, endpoint, &rows); err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0].Value, true, nil
}

func (c *Client) PutSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return c.do(ctx, http.MethodPost, "settings", settingRow{Key: key, Value: raw}, true, nil)
}

// getWithRetry retries idempotent reads with exponential backoff. Writes are
// never retried: replaying a transaction append would double-log a stock
// change.
func (c *Client) getWithRetry(ctx context.Context, endpoint string, out any) error {
	var err error
	for attempt := 0; attempt < getRetryAttempts; attempt++ {
		if attempt > 0 {
			wait := getRetryBaseWait << (attempt - 1)
			c.logger.Warn("retrying read", zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1), zap.Error(err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = c.do(ctx, http.MethodGet, endpoint, nil, false, out); err == nil {
			return nil
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, upsert bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/rest/v1/"+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if upsert {
		req.Header.Set("Prefer", "resolution=merge-duplicates")
	} else {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, snippet)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, endpoint, err)
		}
	}
	return nil
}
