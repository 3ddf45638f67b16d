package inventory

import (
	"fmt"
	"strings"
)

// ValidationError rejects an operation before any mutation or write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// InsufficientStockError rejects a reservation or stock-out exceeding the
// on-hand quantity at the time of the check. No state was changed.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// OverReleaseError rejects a strict release exceeding the existing allocation.
type OverReleaseError struct {
	ProductID string
	Project   string
	Requested int
	Allocated int
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("over-release for %s in project %q: requested %d, allocated %d",
		e.ProductID, e.Project, e.Requested, e.Allocated)
}

// RowError locates one invalid row inside a bulk batch.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// BatchValidationError rejects an entire bulk batch; nothing was committed.
type BatchValidationError struct {
	Rows []RowError
}

func (e *BatchValidationError) Error() string {
	parts := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		parts[i] = r.String()
	}
	return "batch validation failed: " + strings.Join(parts, "; ")
}

// PartialBatchFailure reports a persistence failure mid-batch. The first
// Committed rows stay applied; there is no rollback. Callers must re-read
// current state to reconcile.
type PartialBatchFailure struct {
	Committed int
	Total     int
	Err       error
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("batch stopped after %d/%d rows: %v", e.Committed, e.Total, e.Err)
}

func (e *PartialBatchFailure) Unwrap() error { return e.Err }
