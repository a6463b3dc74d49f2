/*
errors.go - Centralized error types for the inventory engine

PURPOSE:
  Every failure of the engine is a typed result surfaced to the caller.
  Presentation (a blocking notice, an HTTP status) is the caller's job.

ERROR CATEGORIES:
  1. Validation errors - Unparseable or missing input, detected before
     any state is touched
  2. Inventory errors - A sale larger than the stock on hand, detected by
     the costing preview before any consumption
  3. Ledger/journal errors - Sequence or replay inconsistencies

USAGE:
  if errors.Is(err, inventory.ErrInsufficientInventory) {
      var short *inventory.InsufficientInventoryError
      errors.As(err, &short)
  }

SEE ALSO:
  - engine.go: Produces these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when caller input cannot be accepted.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientInventory is returned when a sale exceeds the quantity
	// held across all layers.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrSequenceMismatch is returned when an entry is appended out of order.
	ErrSequenceMismatch = errors.New("sequence mismatch")

	// ErrEntryNotFound is returned when no entry carries the requested sequence.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrJournalMismatch is returned when a replayed entry does not reproduce
	// the entry that was journaled.
	ErrJournalMismatch = errors.New("journal replay mismatch")

	// ErrNotEmpty is returned when restoring into an engine that already
	// holds entries.
	ErrNotEmpty = errors.New("engine already holds entries")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the rejected field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InsufficientInventoryError provides details about a stock shortage.
type InsufficientInventoryError struct {
	Requested int64
	Available int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if resubmitting corrected input could succeed.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientInventory)
}
