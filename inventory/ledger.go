/*
ledger.go - Append-only entry log

PURPOSE:
  The Ledger is the ordered record of every purchase and sale the engine
  accepted. It owns the sequence counter and the running cost totals.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete.
  2. ORDERED: Entry i carries sequence i+1. The counter starts at 1 and moves
     exactly once per appended entry, so a rejected entry never burns a
     sequence number.
  3. COPY-OUT: Readers receive copies; stored entries cannot be altered.

SEE ALSO:
  - engine.go: The only writer
  - history.go: Indexed 1:1 with the ledger
*/
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	entries []Entry
	next    int64

	purchaseCost decimal.Decimal
	saleCost     decimal.Decimal
}

func NewLedger() *Ledger {
	return &Ledger{
		next:         1,
		purchaseCost: decimal.Zero,
		saleCost:     decimal.Zero,
	}
}

// Next returns the sequence the next appended entry must carry.
func (l *Ledger) Next() int64 {
	return l.next
}

// Append adds entry to the tail and advances the sequence counter.
// This is the ONLY write operation.
func (l *Ledger) Append(entry Entry) error {
	if entry.Sequence != l.next {
		return fmt.Errorf("%w: got %d, want %d", ErrSequenceMismatch, entry.Sequence, l.next)
	}
	if !entry.Kind.Valid() {
		return &ValidationError{Field: "kind", Value: string(entry.Kind), Reason: "unknown entry kind"}
	}

	l.entries = append(l.entries, entry)
	l.next++

	switch entry.Kind {
	case Purchase:
		l.purchaseCost = l.purchaseCost.Add(entry.TotalCost)
	case Sale:
		l.saleCost = l.saleCost.Add(entry.TotalCost)
	}
	return nil
}

// Entries returns all entries ordered by sequence.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Entry returns the entry carrying sequence.
func (l *Ledger) Entry(sequence int64) (Entry, error) {
	if sequence < 1 || sequence > int64(len(l.entries)) {
		return Entry{}, fmt.Errorf("%w: sequence %d", ErrEntryNotFound, sequence)
	}
	return l.entries[sequence-1], nil
}

// ByKind returns the entries of one kind, ordered by sequence.
func (l *Ledger) ByKind(kind EntryKind) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) TotalPurchaseCost() decimal.Decimal {
	return l.purchaseCost
}

func (l *Ledger) TotalSaleCost() decimal.Decimal {
	return l.saleCost
}

// PurchasedQuantity and SoldQuantity are used by conservation checks.
func (l *Ledger) PurchasedQuantity() int64 { return l.sumQuantity(Purchase) }
func (l *Ledger) SoldQuantity() int64      { return l.sumQuantity(Sale) }

func (l *Ledger) sumQuantity(kind EntryKind) int64 {
	var total int64
	for _, e := range l.entries {
		if e.Kind == kind {
			total += e.Quantity
		}
	}
	return total
}
