package inventory

import (
	"context"
	"encoding/json"

	"github.com/danisworo/stockpile/internal/model"
)

// Settings blob keys. Categories and project allocations are persisted as
// whole documents under these keys, not as normalized rows; every save
// replaces the entire blob.
const (
	SettingProjectAllocations = "project_allocations"
	SettingCategories         = "categories"
)

// Store is the persistence provider contract. Every method is fallible
// independent of input validity (network, serialization, store errors).
//
// UpsertProducts semantics differ per adapter and are documented on each
// implementation: the supabase adapter merges by key, the local adapter
// replaces the whole collection.
type Store interface {
	// FetchAllProducts returns the full catalogue keyed by derived product id.
	FetchAllProducts(ctx context.Context) (map[string]model.Product, error)

	// UpsertProduct creates or replaces one product under the given id.
	UpsertProduct(ctx context.Context, id string, p model.Product) error

	// UpsertProducts writes many products at once.
	UpsertProducts(ctx context.Context, products map[string]model.Product) error

	// DeleteProduct removes one product record. Deleting an absent id is not
	// an error.
	DeleteProduct(ctx context.Context, id string) error

	// AppendTransaction appends one ledger entry.
	AppendTransaction(ctx context.Context, tx model.Transaction) error

	// FetchRecentTransactions returns at most limit entries, newest first.
	FetchRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error)

	// GetSetting loads a settings blob. found is false when the key was
	// never saved; callers apply their documented defaults.
	GetSetting(ctx context.Context, key string) (value json.RawMessage, found bool, err error)

	// PutSetting replaces a settings blob wholesale.
	PutSetting(ctx context.Context, key string, value any) error
}
