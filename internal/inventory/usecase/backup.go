package usecase

import (
	"context"
	"fmt"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BackupAll captures the latest durable state, not the in-memory snapshot:
// everything is re-fetched from the store so the file reflects what actually
// committed. The ledger slice is capped at backupTransactionLimit entries.
func (uc *inventoryUseCase) BackupAll(ctx context.Context) (b *model.Backup, err error) {
	defer func() { uc.metrics.Observe("backup", err) }()

	products, err := uc.store.FetchAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup products: %w", err)
	}
	txs, err := uc.store.FetchRecentTransactions(ctx, backupTransactionLimit)
	if err != nil {
		return nil, fmt.Errorf("backup transactions: %w", err)
	}
	categories, err := uc.loadCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup categories: %w", err)
	}
	allocations, err := uc.loadAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup allocations: %w", err)
	}

	return &model.Backup{
		Products:           products,
		Transactions:       txs,
		ProjectAllocations: allocations,
		Categories:         categories,
		BackupDate:         uc.now(),
	}, nil
}

// RestoreAll destructively replaces all four collections from a backup file.
// Products, allocations and categories go out in parallel; the ledger replay
// is capped to the restoreTransactionLimit most recent entries and runs
// sequentially because appends must not be blindly retried or reordered.
func (uc *inventoryUseCase) RestoreAll(ctx context.Context, b *model.Backup) (err error) {
	defer func() { uc.metrics.Observe("restore", err) }()

	products := b.Products
	if products == nil {
		products = map[string]model.Product{}
	}
	allocations := b.ProjectAllocations
	if allocations == nil {
		allocations = model.Allocations{}
	}
	categories := b.Categories
	if len(categories) == 0 {
		categories = model.DefaultCategories()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return uc.store.UpsertProducts(gctx, products) })
	g.Go(func() error { return uc.putAllocations(gctx, allocations) })
	g.Go(func() error { return uc.putCategories(gctx, categories) })
	if err = g.Wait(); err != nil {
		return fmt.Errorf("restore collections: %w", err)
	}

	replay := b.Transactions
	if len(replay) > restoreTransactionLimit {
		replay = replay[:restoreTransactionLimit]
	}
	for _, tx := range replay {
		if err = uc.store.AppendTransaction(ctx, tx); err != nil {
			return fmt.Errorf("restore ledger entry: %w", err)
		}
	}

	uc.mu.Lock()
	uc.state = &inventory.State{
		Products:     products,
		Transactions: append([]model.Transaction(nil), b.Transactions...),
		Allocations:  allocations.Clone(),
		Categories:   append([]string(nil), categories...),
	}
	uc.mu.Unlock()

	uc.logger.Info("restore complete",
		zap.Int("products", len(products)),
		zap.Int("ledger_replayed", len(replay)))
	return nil
}
