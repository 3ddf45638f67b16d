package usecase

import (
	"context"
	"fmt"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReserveForProject moves qty units from on-hand stock into a project
// allocation. Memory is mutated optimistically; the three storage writes
// (product, allocations blob, ledger entry) fan out concurrently since they
// touch disjoint collections. On any write failure the in-memory mutation is
// rolled back and one aggregate error is returned — successful sibling writes
// stay applied in storage and the caller reconciles by re-syncing.
func (uc *inventoryUseCase) ReserveForProject(ctx context.Context, input *dto.ProjectActionInput) (err error) {
	defer func() { uc.metrics.Observe("reserve", err) }()

	if input.Quantity <= 0 {
		return &inventory.ValidationError{Field: "quantity", Message: "must be greater than 0"}
	}
	if input.Project == "" {
		return &inventory.ValidationError{Field: "project", Message: "is required"}
	}

	uc.locks.lock(input.ProductID)
	defer uc.locks.unlock(input.ProductID)

	uc.mu.Lock()
	p, ok := uc.state.Products[input.ProductID]
	if !ok {
		uc.mu.Unlock()
		return &inventory.ValidationError{Field: "productId", Message: "unknown product"}
	}
	if input.Quantity > p.CurrentQuantity {
		available := p.CurrentQuantity
		uc.mu.Unlock()
		return &inventory.InsufficientStockError{
			ProductID: input.ProductID,
			Requested: input.Quantity,
			Available: available,
		}
	}
	p.CurrentQuantity -= input.Quantity
	uc.state.Products[input.ProductID] = p
	uc.state.Allocations.Add(input.ProductID, input.Project, input.Quantity)
	uc.mu.Unlock()

	tx := uc.projectTransaction(p, input, -input.Quantity, "reserve",
		fmt.Sprintf("Reserved for %s", input.Project))

	if err = uc.persistProjectMutation(ctx, input.ProductID, p, tx); err != nil {
		uc.mu.Lock()
		p.CurrentQuantity += input.Quantity
		uc.state.Products[input.ProductID] = p
		uc.state.Allocations.Subtract(input.ProductID, input.Project, input.Quantity)
		uc.mu.Unlock()
		return fmt.Errorf("reserve %d of %s for %q: %w", input.Quantity, input.ProductID, input.Project, err)
	}

	uc.recordTransaction(tx)
	return nil
}

// ReleaseFromProject is the strict inverse of ReserveForProject: releasing
// more than the existing allocation fails with OverReleaseError.
func (uc *inventoryUseCase) ReleaseFromProject(ctx context.Context, input *dto.ProjectActionInput) (err error) {
	defer func() { uc.metrics.Observe("release", err) }()

	if input.Quantity <= 0 {
		return &inventory.ValidationError{Field: "quantity", Message: "must be greater than 0"}
	}
	if input.Project == "" {
		return &inventory.ValidationError{Field: "project", Message: "is required"}
	}

	uc.locks.lock(input.ProductID)
	defer uc.locks.unlock(input.ProductID)

	uc.mu.Lock()
	allocated := uc.state.Allocations.Get(input.ProductID, input.Project)
	if input.Quantity > allocated {
		uc.mu.Unlock()
		return &inventory.OverReleaseError{
			ProductID: input.ProductID,
			Project:   input.Project,
			Requested: input.Quantity,
			Allocated: allocated,
		}
	}
	p, ok := uc.state.Products[input.ProductID]
	if !ok {
		uc.mu.Unlock()
		return &inventory.ValidationError{Field: "productId", Message: "unknown product"}
	}
	uc.state.Allocations.Subtract(input.ProductID, input.Project, input.Quantity)
	p.CurrentQuantity += input.Quantity
	uc.state.Products[input.ProductID] = p
	uc.mu.Unlock()

	tx := uc.projectTransaction(p, input, input.Quantity, "release",
		fmt.Sprintf("Returned from %s", input.Project))

	if err = uc.persistProjectMutation(ctx, input.ProductID, p, tx); err != nil {
		uc.mu.Lock()
		p.CurrentQuantity -= input.Quantity
		uc.state.Products[input.ProductID] = p
		uc.state.Allocations.Add(input.ProductID, input.Project, input.Quantity)
		uc.mu.Unlock()
		return fmt.Errorf("release %d of %s from %q: %w", input.Quantity, input.ProductID, input.Project, err)
	}

	uc.recordTransaction(tx)
	return nil
}

// ReturnFromProject is the lenient sibling used by the project overview:
// instead of failing it clamps to the current allocation and reports how many
// units actually moved back. It tolerates a product that was deleted while
// still allocated — the allocation is cleaned up and the stock write skipped.
func (uc *inventoryUseCase) ReturnFromProject(ctx context.Context, productID, project string, qty int) (taken int, err error) {
	defer func() { uc.metrics.Observe("return", err) }()

	uc.locks.lock(productID)
	defer uc.locks.unlock(productID)

	uc.mu.Lock()
	allocated := uc.state.Allocations.Get(productID, project)
	take := qty
	if take > allocated {
		take = allocated
	}
	if take <= 0 {
		uc.mu.Unlock()
		return 0, nil
	}
	uc.state.Allocations.Subtract(productID, project, take)
	p, exists := uc.state.Products[productID]
	if exists {
		p.CurrentQuantity += take
		uc.state.Products[productID] = p
	}
	uc.mu.Unlock()

	stockAfter := p.CurrentQuantity
	display := p.DisplayName()
	if !exists {
		display = productID
	}
	tx := model.Transaction{
		ProductID:     productID,
		StockChange:   take,
		Reason:        fmt.Sprintf("Returned %d from project: %s", take, project),
		Ref:           project,
		When:          uc.now(),
		DisplayName:   display,
		StockAfter:    &stockAfter,
		Project:       project,
		ProjectAction: "return",
	}

	g, gctx := errgroup.WithContext(ctx)
	if exists {
		g.Go(func() error { return uc.store.UpsertProduct(gctx, productID, p) })
	}
	g.Go(func() error { return uc.saveAllocations(gctx) })
	g.Go(func() error { return uc.store.AppendTransaction(gctx, tx) })
	if err = g.Wait(); err != nil {
		uc.mu.Lock()
		uc.state.Allocations.Add(productID, project, take)
		if exists {
			p.CurrentQuantity -= take
			uc.state.Products[productID] = p
		}
		uc.mu.Unlock()
		return 0, fmt.Errorf("return %d of %s from %q: %w", take, productID, project, err)
	}

	uc.recordTransaction(tx)
	uc.logger.Info("stock returned from project",
		zap.String("id", productID), zap.String("project", project), zap.Int("qty", take))
	return take, nil
}

func (uc *inventoryUseCase) projectTransaction(p model.Product, input *dto.ProjectActionInput, change int, action, defaultReason string) model.Transaction {
	reason := input.Reason
	if reason == "" {
		reason = defaultReason
	}
	ref := input.PONumber
	if ref == "" {
		ref = input.Project
	}
	when := input.When
	if when.IsZero() {
		when = uc.now()
	}
	stockAfter := p.CurrentQuantity
	return model.Transaction{
		ProductID:     input.ProductID,
		StockChange:   change,
		Reason:        reason,
		Ref:           ref,
		PONumber:      input.PONumber,
		When:          when,
		DisplayName:   p.DisplayName(),
		StockAfter:    &stockAfter,
		Project:       input.Project,
		ProjectAction: action,
	}
}

// persistProjectMutation issues the product/allocations/ledger triple
// concurrently. The three writes hit disjoint collections so ordering does
// not matter; the first error cancels the rest and is surfaced once.
func (uc *inventoryUseCase) persistProjectMutation(ctx context.Context, id string, p model.Product, tx model.Transaction) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return uc.store.UpsertProduct(gctx, id, p) })
	g.Go(func() error { return uc.saveAllocations(gctx) })
	g.Go(func() error { return uc.store.AppendTransaction(gctx, tx) })
	return g.Wait()
}

// recordTransaction mirrors a successfully persisted ledger entry into the
// in-memory history, newest first.
func (uc *inventoryUseCase) recordTransaction(tx model.Transaction) {
	uc.mu.Lock()
	uc.state.Transactions = append([]model.Transaction{tx}, uc.state.Transactions...)
	uc.mu.Unlock()
}
