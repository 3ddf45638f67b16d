package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
	"github.com/danisworo/stockpile/internal/pkg/metrics"
	"go.uber.org/zap"
)

const (
	// syncTransactionLimit caps how much ledger history the bootstrap pulls.
	syncTransactionLimit = 1000
	// backupTransactionLimit caps the ledger slice captured in a backup file.
	backupTransactionLimit = 5000
	// restoreTransactionLimit caps how many entries a restore replays into
	// the ledger. The backup file itself may carry more.
	restoreTransactionLimit = 50
)

type inventoryUseCase struct {
	store   inventory.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	state *inventory.State

	locks *productLocks
	// settingsMu orders whole-blob settings saves: the snapshot for a save is
	// taken while holding it, so a later save can never persist an older view.
	settingsMu sync.Mutex
}

func NewInventoryUseCase(store inventory.Store, log *zap.Logger, m *metrics.Metrics) inventory.UseCase {
	return &inventoryUseCase{
		store:   store,
		logger:  log,
		metrics: m,
		now:     time.Now,
		state:   inventory.NewState(),
		locks:   newProductLocks(),
	}
}

// Sync pulls the full catalogue, recent ledger, categories and allocations
// from the store and replaces the in-memory state in one swap.
func (uc *inventoryUseCase) Sync(ctx context.Context) (err error) {
	defer func() { uc.metrics.Observe("sync", err) }()

	products, err := uc.store.FetchAllProducts(ctx)
	if err != nil {
		return fmt.Errorf("sync products: %w", err)
	}
	txs, err := uc.store.FetchRecentTransactions(ctx, syncTransactionLimit)
	if err != nil {
		return fmt.Errorf("sync transactions: %w", err)
	}
	categories, err := uc.loadCategories(ctx)
	if err != nil {
		return fmt.Errorf("sync categories: %w", err)
	}
	allocations, err := uc.loadAllocations(ctx)
	if err != nil {
		return fmt.Errorf("sync allocations: %w", err)
	}

	uc.mu.Lock()
	uc.state = &inventory.State{
		Products:     products,
		Transactions: txs,
		Allocations:  allocations,
		Categories:   categories,
	}
	uc.mu.Unlock()

	uc.logger.Info("state synced from store",
		zap.Int("products", len(products)),
		zap.Int("transactions", len(txs)),
		zap.Int("categories", len(categories)))
	return nil
}

// SaveProduct creates or updates a product. When OldID is set and differs
// from the derived id this is a rename: the old record is deleted, the
// allocation key migrates, and historical ledger entries keep the old id.
// Memory reflects the result only after every storage write succeeded, so a
// failed rename never leaves a half-migrated snapshot.
func (uc *inventoryUseCase) SaveProduct(ctx context.Context, input *dto.ProductInput) (p *model.Product, err error) {
	defer func() { uc.metrics.Observe("save_product", err) }()

	prod := input.Product()
	if prod.ModelNumber == "" {
		return nil, &inventory.ValidationError{Field: "modelNumber", Message: "is required"}
	}
	if prod.CurrentQuantity < 0 {
		return nil, &inventory.ValidationError{Field: "currentQuantity", Message: "must not be negative"}
	}
	newID := prod.ID()
	rename := input.OldID != "" && input.OldID != newID

	if rename {
		uc.locks.lockPair(input.OldID, newID)
		defer uc.locks.unlockPair(input.OldID, newID)
	} else {
		uc.locks.lock(newID)
		defer uc.locks.unlock(newID)
	}

	var migrated model.Allocations
	if rename {
		if err = uc.store.DeleteProduct(ctx, input.OldID); err != nil {
			return nil, fmt.Errorf("delete renamed product %s: %w", input.OldID, err)
		}
		uc.mu.RLock()
		_, hadAllocation := uc.state.Allocations[input.OldID]
		if hadAllocation {
			migrated = uc.state.Allocations.Clone()
			migrated.MoveKey(input.OldID, newID)
		}
		uc.mu.RUnlock()
		if migrated != nil {
			if err = uc.putAllocations(ctx, migrated); err != nil {
				return nil, fmt.Errorf("migrate allocations %s -> %s: %w", input.OldID, newID, err)
			}
		}
	}

	if err = uc.store.UpsertProduct(ctx, newID, prod); err != nil {
		return nil, fmt.Errorf("upsert product %s: %w", newID, err)
	}

	uc.mu.Lock()
	if rename {
		delete(uc.state.Products, input.OldID)
		if migrated != nil {
			uc.state.Allocations = migrated
		}
	}
	uc.state.Products[newID] = prod
	uc.mu.Unlock()

	uc.logger.Info("product saved", zap.String("id", newID), zap.Bool("rename", rename))
	return &prod, nil
}

// DeleteProduct removes the record and any allocation entry for it. The
// transaction ledger is untouched: history keeps referencing the deleted id.
func (uc *inventoryUseCase) DeleteProduct(ctx context.Context, id string) (err error) {
	defer func() { uc.metrics.Observe("delete_product", err) }()

	uc.locks.lock(id)
	defer uc.locks.unlock(id)

	if err = uc.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	uc.mu.RLock()
	_, hadAllocation := uc.state.Allocations[id]
	var cleaned model.Allocations
	if hadAllocation {
		cleaned = uc.state.Allocations.Clone()
		delete(cleaned, id)
	}
	uc.mu.RUnlock()

	if hadAllocation {
		if err = uc.putAllocations(ctx, cleaned); err != nil {
			return fmt.Errorf("clean allocations for %s: %w", id, err)
		}
	}

	uc.mu.Lock()
	delete(uc.state.Products, id)
	if hadAllocation {
		uc.state.Allocations = cleaned
	}
	uc.mu.Unlock()

	uc.logger.Info("product deleted", zap.String("id", id))
	return nil
}

// BulkUpsertProducts writes a whole id->product mapping at once. Whether the
// store merges by key or replaces the collection depends on the adapter, so
// memory is refreshed from the store afterwards to match exactly what was
// committed.
func (uc *inventoryUseCase) BulkUpsertProducts(ctx context.Context, products map[string]model.Product) (err error) {
	defer func() { uc.metrics.Observe("bulk_upsert_products", err) }()

	if err = uc.store.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("bulk upsert: %w", err)
	}
	committed, err := uc.store.FetchAllProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh after bulk upsert: %w", err)
	}
	uc.mu.Lock()
	uc.state.Products = committed
	uc.mu.Unlock()
	return nil
}

// AddTransaction appends a ledger entry. It never validates the payload and
// never rolls back stock: the ledger is best-effort telemetry. A storage
// failure is surfaced to the caller and nothing else changes.
func (uc *inventoryUseCase) AddTransaction(ctx context.Context, tx model.Transaction) (err error) {
	defer func() { uc.metrics.Observe("add_transaction", err) }()

	if tx.When.IsZero() {
		tx.When = uc.now()
	}
	if tx.Ref == "" {
		tx.Ref = tx.PONumber
	}
	if err = uc.store.AppendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	uc.mu.Lock()
	uc.state.Transactions = append([]model.Transaction{tx}, uc.state.Transactions...)
	uc.mu.Unlock()
	return nil
}

// ---- snapshot reads ----

func (uc *inventoryUseCase) Products() map[string]model.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make(map[string]model.Product, len(uc.state.Products))
	for id, p := range uc.state.Products {
		out[id] = p
	}
	return out
}

func (uc *inventoryUseCase) Product(id string) (model.Product, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	p, ok := uc.state.Products[id]
	return p, ok
}

func (uc *inventoryUseCase) Transactions(filters dto.TransactionFilters) []model.Transaction {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	po := strings.ToLower(filters.PO)
	mdl := strings.ToLower(filters.Model)
	remark := strings.ToLower(filters.Remark)
	out := make([]model.Transaction, 0, len(uc.state.Transactions))
	for _, tx := range uc.state.Transactions {
		if po != "" &&
			!strings.Contains(strings.ToLower(tx.PONumber), po) &&
			!strings.Contains(strings.ToLower(tx.Ref), po) {
			continue
		}
		if mdl != "" {
			name := tx.DisplayName
			if name == "" {
				name = tx.ProductID
			}
			if !strings.Contains(strings.ToLower(name), mdl) {
				continue
			}
		}
		if remark != "" && !strings.Contains(strings.ToLower(tx.Reason), remark) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (uc *inventoryUseCase) Allocations() model.Allocations {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state.Allocations.Clone()
}

func (uc *inventoryUseCase) Categories() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return append([]string(nil), uc.state.Categories...)
}

func (uc *inventoryUseCase) ProjectNames() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state.ProjectNames()
}

func (uc *inventoryUseCase) TotalProjectQuantity(productID string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state.TotalProjectQuantity(productID)
}

func (uc *inventoryUseCase) PhysicalStock(productID string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state.PhysicalStock(productID)
}
