package usecase

import (
	"context"
	"fmt"

	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/inventory/dto"
	"github.com/danisworo/stockpile/internal/model"
	"go.uber.org/zap"
)

// BulkStockIn commits a sheet of stock-in rows. Validation runs over the
// whole batch first with zero mutation; the commit loop is sequential so a
// persistence failure stops cleanly at row N.
func (uc *inventoryUseCase) BulkStockIn(ctx context.Context, rows []dto.BulkRow) (int, error) {
	return uc.bulkCommit(ctx, rows, true)
}

// BulkStockOut is the outbound counterpart. A row requesting more than the
// product's current on-hand quantity rejects the entire batch.
func (uc *inventoryUseCase) BulkStockOut(ctx context.Context, rows []dto.BulkRow) (int, error) {
	return uc.bulkCommit(ctx, rows, false)
}

// validateBulk checks every row against the in-memory snapshot. Any offence
// aborts the whole batch: rows are never partially applied by validation.
func (uc *inventoryUseCase) validateBulk(rows []dto.BulkRow, stockIn bool) error {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	var rowErrs []inventory.RowError
	for i, r := range rows {
		if r.ID() == "" {
			rowErrs = append(rowErrs, inventory.RowError{Row: i + 1, Message: "model is required"})
			continue
		}
		if r.Quantity <= 0 {
			rowErrs = append(rowErrs, inventory.RowError{Row: i + 1, Message: "quantity must be greater than 0"})
			continue
		}
		if !stockIn {
			p, ok := uc.state.Products[r.ID()]
			if !ok {
				rowErrs = append(rowErrs, inventory.RowError{Row: i + 1,
					Message: fmt.Sprintf("unknown product %s", r.ID())})
				continue
			}
			if r.Quantity > p.CurrentQuantity {
				rowErrs = append(rowErrs, inventory.RowError{Row: i + 1,
					Message: fmt.Sprintf("only %d available", p.CurrentQuantity)})
			}
		}
	}
	if len(rowErrs) > 0 {
		return &inventory.BatchValidationError{Rows: rowErrs}
	}
	return nil
}

func (uc *inventoryUseCase) bulkCommit(ctx context.Context, rows []dto.BulkRow, stockIn bool) (committed int, err error) {
	op := "bulk_stock_out"
	direction := "out"
	if stockIn {
		op = "bulk_stock_in"
		direction = "in"
	}
	defer func() { uc.metrics.Observe(op, err) }()

	if len(rows) == 0 {
		return 0, &inventory.ValidationError{Field: "rows", Message: "at least one row is required"}
	}
	if err = uc.validateBulk(rows, stockIn); err != nil {
		return 0, err
	}

	for i, r := range rows {
		id := r.ID()
		uc.locks.lock(id)

		uc.mu.RLock()
		p, exists := uc.state.Products[id]
		uc.mu.RUnlock()

		if !exists {
			// Stock-out against a missing product was rejected in validation;
			// only stock-in creates on the fly.
			barcode := r.Barcode
			if barcode == "" {
				barcode = id
			}
			p = model.Product{
				ModelNumber:  r.ModelNumber,
				Suffix:       r.Suffix,
				Category:     r.Category,
				Location:     r.Location,
				BarcodeValue: barcode,
			}
		}

		if stockIn {
			p.CurrentQuantity += r.Quantity
		} else {
			p.CurrentQuantity -= r.Quantity
		}
		if p.CurrentQuantity < 0 {
			// The snapshot the batch validated against went stale mid-commit.
			insufficient := &inventory.InsufficientStockError{
				ProductID: id, Requested: r.Quantity, Available: p.CurrentQuantity + r.Quantity,
			}
			uc.locks.unlock(id)
			return committed, &inventory.PartialBatchFailure{Committed: committed, Total: len(rows), Err: insufficient}
		}

		if perr := uc.store.UpsertProduct(ctx, id, p); perr != nil {
			uc.locks.unlock(id)
			return committed, &inventory.PartialBatchFailure{
				Committed: committed,
				Total:     len(rows),
				Err:       fmt.Errorf("row %d (%s): %w", i+1, id, perr),
			}
		}

		uc.mu.Lock()
		uc.state.Products[id] = p
		uc.mu.Unlock()
		committed++

		change := r.Quantity
		reason := r.Remark
		if reason == "" {
			reason = fmt.Sprintf("Bulk %s", direction)
		}
		if !stockIn {
			change = -r.Quantity
		}
		when := r.Date
		if when.IsZero() {
			when = uc.now()
		}
		stockAfter := p.CurrentQuantity
		tx := model.Transaction{
			ProductID:   id,
			StockChange: change,
			Reason:      reason,
			Ref:         r.PONumber,
			PONumber:    r.PONumber,
			When:        when,
			DisplayName: p.DisplayName(),
			StockAfter:  &stockAfter,
		}
		// Ledger is advisory: the stock change above is already canonical, so
		// an append failure is logged and the batch keeps going.
		if terr := uc.store.AppendTransaction(ctx, tx); terr != nil {
			uc.logger.Warn("ledger append failed; stock change already applied",
				zap.String("id", id), zap.Int("change", change), zap.Error(terr))
		}
		uc.recordTransaction(tx)

		uc.locks.unlock(id)
	}

	uc.logger.Info("bulk batch committed",
		zap.String("direction", direction), zap.Int("rows", committed))
	return committed, nil
}
