package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/model"
	"go.uber.org/zap"
)

func (uc *inventoryUseCase) loadCategories(ctx context.Context) ([]string, error) {
	raw, found, err := uc.store.GetSetting(ctx, inventory.SettingCategories)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.DefaultCategories(), nil
	}
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("decode categories blob: %w", err)
	}
	if len(categories) == 0 {
		return model.DefaultCategories(), nil
	}
	return categories, nil
}

func (uc *inventoryUseCase) loadAllocations(ctx context.Context) (model.Allocations, error) {
	raw, found, err := uc.store.GetSetting(ctx, inventory.SettingProjectAllocations)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.Allocations{}, nil
	}
	var allocations model.Allocations
	if err := json.Unmarshal(raw, &allocations); err != nil {
		return nil, fmt.Errorf("decode allocations blob: %w", err)
	}
	if allocations == nil {
		allocations = model.Allocations{}
	}
	return allocations, nil
}

// saveAllocations persists the current in-memory allocation map wholesale.
// The snapshot is taken while holding settingsMu so that two concurrent
// operations cannot persist their blobs out of order.
func (uc *inventoryUseCase) saveAllocations(ctx context.Context) error {
	uc.settingsMu.Lock()
	defer uc.settingsMu.Unlock()

	uc.mu.RLock()
	snapshot := uc.state.Allocations.Clone()
	uc.mu.RUnlock()

	return uc.store.PutSetting(ctx, inventory.SettingProjectAllocations, snapshot)
}

// putAllocations persists an explicit allocation map (rename migration,
// delete cleanup) before it is applied to memory.
func (uc *inventoryUseCase) putAllocations(ctx context.Context, allocations model.Allocations) error {
	uc.settingsMu.Lock()
	defer uc.settingsMu.Unlock()
	return uc.store.PutSetting(ctx, inventory.SettingProjectAllocations, allocations)
}

// AddCategory appends to the controlled vocabulary. Duplicates are ignored;
// the blob is replaced wholesale and memory updated only on success.
func (uc *inventoryUseCase) AddCategory(ctx context.Context, name string) (err error) {
	defer func() { uc.metrics.Observe("add_category", err) }()

	if name == "" {
		return &inventory.ValidationError{Field: "category", Message: "is required"}
	}

	uc.mu.RLock()
	updated := append([]string(nil), uc.state.Categories...)
	uc.mu.RUnlock()
	for _, c := range updated {
		if c == name {
			return nil
		}
	}
	updated = append(updated, name)

	if err = uc.putCategories(ctx, updated); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	uc.mu.Lock()
	uc.state.Categories = updated
	uc.mu.Unlock()
	return nil
}

// RemoveCategory deletes a name from the vocabulary. Products referencing it
// keep the now-orphaned string: category deletion never cascades.
func (uc *inventoryUseCase) RemoveCategory(ctx context.Context, name string) (err error) {
	defer func() { uc.metrics.Observe("remove_category", err) }()

	uc.mu.RLock()
	updated := make([]string, 0, len(uc.state.Categories))
	for _, c := range uc.state.Categories {
		if c != name {
			updated = append(updated, c)
		}
	}
	uc.mu.RUnlock()

	if err = uc.putCategories(ctx, updated); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	uc.mu.Lock()
	uc.state.Categories = updated
	uc.mu.Unlock()
	uc.logger.Info("category removed", zap.String("name", name))
	return nil
}

// RenameCategory replaces a vocabulary entry in place. Like RemoveCategory
// it does not touch products: their category strings are free-floating.
func (uc *inventoryUseCase) RenameCategory(ctx context.Context, oldName, newName string) (err error) {
	defer func() { uc.metrics.Observe("rename_category", err) }()

	if newName == "" {
		return &inventory.ValidationError{Field: "category", Message: "new name is required"}
	}

	uc.mu.RLock()
	updated := append([]string(nil), uc.state.Categories...)
	uc.mu.RUnlock()

	idx := -1
	for i, c := range updated {
		if c == newName {
			return &inventory.ValidationError{Field: "category", Message: "name already exists"}
		}
		if c == oldName {
			idx = i
		}
	}
	if idx < 0 {
		return &inventory.ValidationError{Field: "category", Message: "not found"}
	}
	updated[idx] = newName

	if err = uc.putCategories(ctx, updated); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	uc.mu.Lock()
	uc.state.Categories = updated
	uc.mu.Unlock()
	return nil
}

func (uc *inventoryUseCase) putCategories(ctx context.Context, categories []string) error {
	uc.settingsMu.Lock()
	defer uc.settingsMu.Unlock()
	return uc.store.PutSetting(ctx, inventory.SettingCategories, categories)
}
