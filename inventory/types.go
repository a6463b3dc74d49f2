/*
Package inventory provides the FIFO cost-layer valuation engine.

PURPOSE:
  Tracks inventory cost lot-by-lot over time. Every purchase opens or extends
  a cost layer, every sale consumes the oldest lots first and reports the
  resulting unit and total cost. The engine keeps an append-only ledger of
  entries and a point-in-time copy of the layers after each entry, so any
  row of the ledger can be rendered together with the balance it left behind.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: An immutable ledger row (purchase or sale)
  - Lot: Quantity acquired at one unit price
  - Layer: All lots acquired under one date token, in arrival order
  - Totals: Aggregate figures exposed to renderers

DESIGN PRINCIPLES:
  1. Immutability: Entries are never modified or removed
  2. Precision: Uses decimal.Decimal for every price and cost
  3. Arrival order: Consumption order is purchase arrival order, never
     calendar order. Dates are opaque tokens compared by exact equality.

USAGE:
  engine := inventory.NewEngine(nil, zerolog.Nop())
  entry, err := engine.RecordEntry(ctx, inventory.Purchase, "D1", "10", "2.00")

SEE ALSO:
  - layers.go: Layer store insertion and FIFO consumption
  - costing.go: Non-mutating sale cost preview
  - ledger.go: Append-only entry log and running totals
  - history.go: Per-entry snapshots
  - engine.go: The RecordEntry orchestrator
*/
package inventory

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY - One recorded transaction
// =============================================================================

type EntryKind string

const (
	Purchase EntryKind = "purchase"
	Sale     EntryKind = "sale"
)

func (k EntryKind) Valid() bool {
	return k == Purchase || k == Sale
}

// Entry is a ledger row. For purchases UnitCost is the caller's price; for
// sales it is derived from the layers the sale consumed.
type Entry struct {
	Sequence  int64
	Kind      EntryKind
	Date      string
	Quantity  int64
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
}

func newEntry(seq int64, kind EntryKind, date string, qty int64, unitCost decimal.Decimal) Entry {
	return Entry{
		Sequence:  seq,
		Kind:      kind,
		Date:      date,
		Quantity:  qty,
		UnitCost:  unitCost,
		TotalCost: unitCost.Mul(decimal.NewFromInt(qty)),
	}
}

// =============================================================================
// LOT / LAYER - Cost layering
// =============================================================================

// Lot is the smallest consumable unit: a quantity held at one price.
type Lot struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

func (l Lot) Value() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Layer groups the lots purchased under one date token.
type Layer struct {
	Date string
	Lots []Lot
}

func (l Layer) clone() Layer {
	lots := make([]Lot, len(l.Lots))
	copy(lots, l.Lots)
	return Layer{Date: l.Date, Lots: lots}
}

// Layers is an ordered set of layers, oldest first.
type Layers []Layer

// Clone returns a deep copy sharing no backing arrays with l.
func (ls Layers) Clone() Layers {
	if ls == nil {
		return Layers{}
	}
	out := make(Layers, len(ls))
	for i, layer := range ls {
		out[i] = layer.clone()
	}
	return out
}

func (ls Layers) TotalQuantity() int64 {
	var total int64
	for _, layer := range ls {
		for _, lot := range layer.Lots {
			total += lot.Quantity
		}
	}
	return total
}

func (ls Layers) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, layer := range ls {
		for _, lot := range layer.Lots {
			total = total.Add(lot.Value())
		}
	}
	return total
}

// =============================================================================
// TOTALS - Aggregates for renderers
// =============================================================================

type Totals struct {
	PurchaseCost   decimal.Decimal
	SaleCost       decimal.Decimal
	OnHandQuantity int64
	OnHandValue    decimal.Decimal
}
