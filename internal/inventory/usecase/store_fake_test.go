package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/model"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Store with per-method failure injection.
type fakeStore struct {
	mu           sync.Mutex
	products     map[string]model.Product
	transactions []model.Transaction // append order; reads reverse it
	settings     map[string]json.RawMessage

	upsertErr      error
	upsertErrAfter int // fail once this many upserts succeeded; -1 disables
	upsertCalls    int
	deleteErr      error
	appendErr      error
	putSettingErr  error
	fetchErr       error
}

var _ inventory.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:       map[string]model.Product{},
		settings:       map[string]json.RawMessage{},
		upsertErrAfter: -1,
	}
}

func (f *fakeStore) FetchAllProducts(ctx context.Context) (map[string]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make(map[string]model.Product, len(f.products))
	for id, p := range f.products {
		out[id] = p
	}
	return out, nil
}

func (f *fakeStore) UpsertProduct(ctx context.Context, id string, p model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.upsertErrAfter >= 0 && f.upsertCalls >= f.upsertErrAfter {
		return errFakeStorage
	}
	f.upsertCalls++
	f.products[id] = p
	return nil
}

func (f *fakeStore) UpsertProducts(ctx context.Context, products map[string]model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for id, p := range products {
		f.products[id] = p
	}
	return nil
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.products, id)
	return nil
}

func (f *fakeStore) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakeStore) FetchRecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]model.Transaction, 0, len(f.transactions))
	for i := len(f.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.transactions[i])
	}
	return out, nil
}

func (f *fakeStore) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.settings[key]
	return raw, ok, nil
}

func (f *fakeStore) PutSetting(ctx context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putSettingErr != nil {
		return f.putSettingErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.settings[key] = raw
	return nil
}

func (f *fakeStore) storedAllocations(t *testing.T) model.Allocations {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.settings[inventory.SettingProjectAllocations]
	if !ok {
		return model.Allocations{}
	}
	var a model.Allocations
	if err := json.Unmarshal(raw, &a); err != nil {
		t.Fatalf("decode stored allocations: %v", err)
	}
	return a
}

var errFakeStorage = &storageFailure{}

type storageFailure struct{}

func (*storageFailure) Error() string { return "storage unavailable" }

// newTestUseCase builds a usecase over the fake store with a fixed clock.
func newTestUseCase(t *testing.T, store *fakeStore) *inventoryUseCase {
	t.Helper()
	uc := NewInventoryUseCase(store, zap.NewNop(), nil).(*inventoryUseCase)
	uc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	if err := uc.Sync(context.Background()); err != nil {
		t.Fatalf("initial sync: %v", err)
	}
	return uc
}
