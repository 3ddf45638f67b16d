package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupCapturesDurableState(t *testing.T) {
	store := newFakeStore()
	uc := newTestUseCase(t, store)
	seedProduct(t, uc, "WM-100", 10)
	require.NoError(t, uc.AddCategory(context.Background(), "Motors"))
	require.NoError(t, uc.ReserveForProject(context.Background(), &dto.ProjectActionInput{
		ProductID: "WM-100", Project: "Alpha", Quantity: 2,
	}))

	b, err := uc.BackupAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, b.Products, 1)
	assert.Equal(t, 8, b.Products["WM-100"].CurrentQuantity)
	assert.Equal(t, 2, b.ProjectAllocations.Get("WM-100", "Alpha"))
	assert.Equal(t, []string{"Default", "Motors"}, b.Categories)
	assert.Len(t, b.Transactions, 1)
	assert.False(t, b.BackupDate.IsZero())
}

func TestBackupCapsLedgerSlice(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < backupTransactionLimit+100; i++ {
		store.transactions = append(store.transactions, model.Transaction{
			ProductID: "WM-100", StockChange: 1, When: time.Unix(int64(i), 0),
		})
	}
	uc := newTestUseCase(t, store)

	b, err := uc.BackupAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Transactions, backupTransactionLimit)
}

func TestRestoreRoundTrip(t *testing.T) {
	source := newFakeStore()
	uc := newTestUseCase(t, source)
	seedProduct(t, uc, "WM-100", 10)
	require.NoError(t, uc.ReserveForProject(context.Background(), &dto.ProjectActionInput{
		ProductID: "WM-100", Project: "Alpha", Quantity: 2,
	}))
	b, err := uc.BackupAll(context.Background())
	require.NoError(t, err)

	target := newFakeStore()
	uc2 := newTestUseCase(t, target)
	require.NoError(t, uc2.RestoreAll(context.Background(), b))

	p, ok := uc2.Product("WM-100")
	require.True(t, ok)
	assert.Equal(t, 8, p.CurrentQuantity)
	assert.Equal(t, 2, uc2.Allocations().Get("WM-100", "Alpha"))
	assert.Equal(t, b.Categories, uc2.Categories())
	assert.Len(t, target.transactions, 1, "ledger replayed into the target store")
}

func TestRestoreCapsLedgerReplay(t *testing.T) {
	var txs []model.Transaction
	for i := 0; i < restoreTransactionLimit+30; i++ {
		txs = append(txs, model.Transaction{
			ProductID: fmt.Sprintf("p-%d", i), StockChange: 1, When: time.Unix(int64(i), 0),
		})
	}
	b := &model.Backup{Transactions: txs}

	store := newFakeStore()
	uc := newTestUseCase(t, store)
	require.NoError(t, uc.RestoreAll(context.Background(), b))

	assert.Len(t, store.transactions, restoreTransactionLimit,
		"only the most recent slice is replayed")
	// the in-memory history still holds the whole file
	assert.Len(t, uc.Transactions(dto.TransactionFilters{}), len(txs))
}

func TestRestoreNilCollections(t *testing.T) {
	store := newFakeStore()
	uc := newTestUseCase(t, store)

	require.NoError(t, uc.RestoreAll(context.Background(), &model.Backup{}))
	assert.Empty(t, uc.Products())
	assert.Equal(t, model.DefaultCategories(), uc.Categories())
	assert.Empty(t, uc.Allocations())
}
