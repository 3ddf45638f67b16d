// Package local implements the persistence provider on an embedded sqlite
// database. Multi-row writes run inside one transaction, which is what makes
// this adapter safe for the destructive restore path.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/model"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    barcode          TEXT PRIMARY KEY,
    model_number     TEXT NOT NULL,
    suffix           TEXT NOT NULL DEFAULT '',
    category         TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    barcode_value    TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    current_quantity INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS transactions (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    barcode        TEXT NOT NULL,
    stock_change   INTEGER NOT NULL,
    reason         TEXT NOT NULL DEFAULT '',
    ref            TEXT NOT NULL DEFAULT '',
    po_number      TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMP NOT NULL,
    display_name   TEXT NOT NULL DEFAULT '',
    stock_after    INTEGER,
    project        TEXT NOT NULL DEFAULT '',
    project_action TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ inventory.Store = (*Store)(nil)

// Open connects (creating the file if needed) and applies the schema.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer; funnel everything through one conn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// productRow pairs the key column with the product fields. Like the remote
// table, the key column is named barcode for historical reasons and holds
// the derived product id, never the physical code.
type productRow struct {
	Barcode string `db:"barcode"`
	model.Product
}

const productColumns = `barcode, model_number, suffix, category, location, barcode_value, description, current_quantity`
const productValues = `:barcode, :model_number, :suffix, :category, :location, :barcode_value, :description, :current_quantity`

func (s *Store) FetchAllProducts(ctx context.Context) (map[string]model.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products`); err != nil {
		return nil, err
	}
	out := make(map[string]model.Product, len(rows))
	for _, r := range rows {
		out[r.Barcode] = r.Product
	}
	return out, nil
}

func (s *Store) UpsertProduct(ctx context.Context, id string, p model.Product) error {
	query := `
        INSERT INTO products (` + productColumns + `)
        VALUES (` + productValues + `)
        ON CONFLICT (barcode)
        DO UPDATE SET
            model_number = excluded.model_number,
            suffix = excluded.suffix,
            category = excluded.category,
            location = excluded.location,
            barcode_value = excluded.barcode_value,
            description = excluded.description,
            current_quantity = excluded.current_quantity
    `
	_, err := s.db.NamedExecContext(ctx, query, productRow{Barcode: id, Product: p})
	return err
}

// UpsertProducts is a destructive replace: the whole collection is deleted
// and re-inserted inside one transaction, so afterwards the table holds
// exactly the given mapping (the supabase adapter merges instead).
func (s *Store) UpsertProducts(ctx context.Context, products map[string]model.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	insert := `INSERT INTO products (` + productColumns + `) VALUES (` + productValues + `)`
	for id, p := range products {
		if _, err := tx.NamedExecContext(ctx, insert, productRow{Barcode: id, Product: p}); err != nil {
			return fmt.Errorf("insert product %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE barcode = ?`, id)
	return err
}

func (s *Store) AppendTransaction(ctx context.Context, txn model.Transaction) error {
	query := `
        INSERT INTO transactions (barcode, stock_change, reason, ref, po_number, created_at,
                                  display_name, stock_after, project, project_action)
        VALUES (:barcode, :stock_change, :reason, :ref, :po_number, :created_at,
                :display_name, :stock_after, :project, :project_action)
    `
	_, err := s.db.NamedExecContext(ctx, query, txn)
	return err
}

func (s *Store) FetchRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	query := `
        SELECT barcode, stock_change, reason, ref, po_number, created_at,
               display_name, stock_after, project, project_action
        FROM transactions
        ORDER BY created_at DESC, id DESC
        LIMIT ?
    `
	txs := []model.Transaction{}
	if err := s.db.SelectContext(ctx, &txs, query, limit); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return json.RawMessage(value), true, nil
}

func (s *Store) PutSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	query := `
        INSERT INTO settings (key, value) VALUES (?, ?)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value
    `
	_, err = s.db.ExecContext(ctx, query, key, string(raw))
	return err
}
