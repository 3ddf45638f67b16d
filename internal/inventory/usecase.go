package inventory

import (
	"context"

	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
)

// UseCase is the accounting surface consumed by the presentation layer.
// Mutating operations validate against the in-memory snapshot, mutate it,
// and perform matched writes to the Store. Stock writes are canonical and
// authoritative; ledger entries are advisory and may be lost without rollback.
type UseCase interface {
	// Sync pulls full state from the Store into memory (bootstrap).
	Sync(ctx context.Context) error

	SaveProduct(ctx context.Context, input *dto.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	BulkUpsertProducts(ctx context.Context, products map[string]model.Product) error

	AddTransaction(ctx context.Context, tx model.Transaction) error

	ReserveForProject(ctx context.Context, input *dto.ProjectActionInput) error
	ReleaseFromProject(ctx context.Context, input *dto.ProjectActionInput) error
	// ReturnFromProject is the clamping sibling of ReleaseFromProject: it
	// takes min(qty, current allocation) instead of failing, and reports how
	// much was actually returned.
	ReturnFromProject(ctx context.Context, productID, project string, qty int) (int, error)

	BulkStockIn(ctx context.Context, rows []dto.BulkRow) (int, error)
	BulkStockOut(ctx context.Context, rows []dto.BulkRow) (int, error)

	AddCategory(ctx context.Context, name string) error
	RemoveCategory(ctx context.Context, name string) error
	RenameCategory(ctx context.Context, oldName, newName string) error

	BackupAll(ctx context.Context) (*model.Backup, error)
	RestoreAll(ctx context.Context, b *model.Backup) error

	// Snapshot reads. All return copies safe to hold across operations.
	Products() map[string]model.Product
	Product(id string) (model.Product, bool)
	Transactions(filters dto.TransactionFilters) []model.Transaction
	Allocations() model.Allocations
	Categories() []string
	ProjectNames() []string
	TotalProjectQuantity(productID string) int
	PhysicalStock(productID string) int
}
