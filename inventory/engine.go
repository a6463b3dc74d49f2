/*
engine.go - The entry orchestrator

PURPOSE:
  Engine is the owning aggregate for the layer store, the ledger and the
  snapshot history. RecordEntry is the only way any of them changes.

RECORD FLOW (strictly ordered, abort at any gate):
  1. Validating:   quantity is a positive integer; a purchase carries a
                   non-negative price; a sale carries no price
  2. Costing:      sales only, Quote must cover the full quantity at a
                   non-zero unit cost
  3. Journaling:   the built entry is handed to the Journal, if any
  4. Mutating:     Insert (purchase) or Consume (sale)
  5. Recording:    Ledger append
  6. Snapshotting: History append

  Nothing is mutated before step 4, so every rejection leaves the ledger,
  the layers and the history exactly as they were. Consume is only reached
  once Quote has proven the stock is there.

CONCURRENCY:
  One entry is processed start-to-finish before another begins. A single
  mutex serializes writers and readers.

SEE ALSO:
  - layers.go, costing.go, ledger.go, history.go
  - journal.go: Optional durability and Restore
*/
package inventory

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	mu      sync.Mutex
	state   *state
	journal Journal
	log     zerolog.Logger
}

// NewEngine creates an empty engine. journal may be nil, in which case the
// engine is purely in-memory.
func NewEngine(journal Journal, log zerolog.Logger) *Engine {
	return &Engine{
		state:   newState(),
		journal: journal,
		log:     log.With().Str("component", "inventory").Logger(),
	}
}

type state struct {
	layers  *LayerStore
	ledger  *Ledger
	history *History
}

func newState() *state {
	return &state{
		layers:  NewLayerStore(),
		ledger:  NewLedger(),
		history: NewHistory(),
	}
}

// apply runs the mutating steps for an entry that has passed every gate.
func (s *state) apply(entry Entry) error {
	switch entry.Kind {
	case Purchase:
		s.layers.Insert(entry.Date, entry.Quantity, entry.UnitCost)
	case Sale:
		if err := s.layers.Consume(entry.Quantity); err != nil {
			return err
		}
	}
	if err := s.ledger.Append(entry); err != nil {
		return err
	}
	return s.history.Record(entry, s.layers)
}

// cost runs the gates for a validated request and returns the unit cost the
// entry will be booked at.
func (s *state) cost(kind EntryKind, qty int64, price decimal.Decimal) (decimal.Decimal, error) {
	if kind == Purchase {
		if qty > math.MaxInt64-s.layers.TotalQuantity() {
			return decimal.Zero, &ValidationError{
				Field:  "quantity",
				Value:  strconv.FormatInt(qty, 10),
				Reason: "on-hand quantity would overflow",
			}
		}
		return price, nil
	}
	q := s.layers.Quote(qty)
	if !q.Valid() {
		return decimal.Zero, &InsufficientInventoryError{Requested: qty, Available: s.layers.TotalQuantity()}
	}
	return q.UnitCost, nil
}

// =============================================================================
// RECORD
// =============================================================================

// RecordEntry validates, costs and records one purchase or sale from raw
// caller input. On error nothing has changed.
func (e *Engine) RecordEntry(ctx context.Context, kind EntryKind, date, quantity, price string) (Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	qty, unitPrice, err := validate(kind, quantity, price)
	if err != nil {
		e.log.Warn().Err(err).Str("kind", string(kind)).Str("date", date).Msg("entry rejected")
		return Entry{}, err
	}

	unitCost, err := e.state.cost(kind, qty, unitPrice)
	if err != nil {
		e.log.Warn().Err(err).Str("kind", string(kind)).Int64("quantity", qty).Msg("entry rejected")
		return Entry{}, err
	}

	entry := newEntry(e.state.ledger.Next(), kind, date, qty, unitCost)

	if e.journal != nil {
		if err := e.journal.Append(ctx, entry); err != nil {
			return Entry{}, fmt.Errorf("journal entry %d: %w", entry.Sequence, err)
		}
	}

	if err := e.state.apply(entry); err != nil {
		return Entry{}, err
	}

	e.log.Info().
		Int64("sequence", entry.Sequence).
		Str("kind", string(entry.Kind)).
		Str("date", entry.Date).
		Int64("quantity", entry.Quantity).
		Str("unit_cost", entry.UnitCost.String()).
		Str("total_cost", entry.TotalCost.String()).
		Msg("entry recorded")
	return entry, nil
}

// Restore rebuilds the engine by replaying its journal. Every entry goes
// through the same gates as RecordEntry; a sale must derive the unit cost it
// was journaled with. On error the engine stays empty.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.journal == nil {
		return 0, nil
	}
	if e.state.ledger.Len() > 0 {
		return 0, ErrNotEmpty
	}

	entries, err := e.journal.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load journal: %w", err)
	}

	s := newState()
	for _, je := range entries {
		if je.Sequence != s.ledger.Next() {
			return 0, fmt.Errorf("%w: entry %d found where %d was expected", ErrJournalMismatch, je.Sequence, s.ledger.Next())
		}
		if !je.Kind.Valid() || je.Quantity <= 0 {
			return 0, fmt.Errorf("%w: entry %d is malformed", ErrJournalMismatch, je.Sequence)
		}
		if je.Kind == Purchase {
			if verr := checkPrice(je.UnitCost); verr != nil {
				return 0, fmt.Errorf("%w: entry %d: %v", ErrJournalMismatch, je.Sequence, verr)
			}
		}
		unitCost, err := s.cost(je.Kind, je.Quantity, je.UnitCost)
		if err != nil {
			return 0, fmt.Errorf("%w: entry %d: %v", ErrJournalMismatch, je.Sequence, err)
		}
		if !unitCost.Equal(je.UnitCost) {
			return 0, fmt.Errorf("%w: entry %d costs %s on replay, journaled %s",
				ErrJournalMismatch, je.Sequence, unitCost, je.UnitCost)
		}
		entry := newEntry(je.Sequence, je.Kind, je.Date, je.Quantity, unitCost)
		if !entry.TotalCost.Equal(je.TotalCost) {
			return 0, fmt.Errorf("%w: entry %d totals %s on replay, journaled %s",
				ErrJournalMismatch, je.Sequence, entry.TotalCost, je.TotalCost)
		}
		if err := s.apply(entry); err != nil {
			return 0, fmt.Errorf("%w: entry %d: %v", ErrJournalMismatch, je.Sequence, err)
		}
	}

	e.state = s
	e.log.Info().Int("entries", len(entries)).Msg("journal restored")
	return len(entries), nil
}

// =============================================================================
// READ SIDE
// =============================================================================

// Quote previews the cost of selling quantity without recording anything.
func (e *Engine) Quote(quantity string) (Quote, error) {
	qty, err := parseQuantity(quantity)
	if err != nil {
		return Quote{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.layers.Quote(qty), nil
}

// Entries returns the ledger ordered by sequence.
func (e *Engine) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ledger.Entries()
}

func (e *Engine) Entry(sequence int64) (Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ledger.Entry(sequence)
}

// Row pairs an entry with the snapshot taken right after it.
type Row struct {
	Entry   Entry
	Balance Snapshot
}

// Rows returns every entry with its balance, taken under one lock so the
// two halves always agree.
func (e *Engine) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.state.ledger.Entries()
	snapshots := e.state.history.All()
	rows := make([]Row, len(entries))
	for i := range entries {
		rows[i] = Row{Entry: entries[i], Balance: snapshots[i]}
	}
	return rows
}

// Row returns one entry with its balance.
func (e *Engine) Row(sequence int64) (Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.state.ledger.Entry(sequence)
	if err != nil {
		return Row{}, err
	}
	snap, err := e.state.history.At(sequence)
	if err != nil {
		return Row{}, err
	}
	return Row{Entry: entry, Balance: snap}, nil
}

// SnapshotAt returns the layers as they stood right after entry sequence.
func (e *Engine) SnapshotAt(sequence int64) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.history.At(sequence)
}

func (e *Engine) History() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.history.All()
}

// Layers returns a copy of the live layer store.
func (e *Engine) Layers() Layers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.layers.Clone()
}

func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Totals{
		PurchaseCost:   e.state.ledger.TotalPurchaseCost(),
		SaleCost:       e.state.ledger.TotalSaleCost(),
		OnHandQuantity: e.state.layers.TotalQuantity(),
		OnHandValue:    e.state.layers.TotalValue(),
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func validate(kind EntryKind, quantity, price string) (int64, decimal.Decimal, error) {
	if !kind.Valid() {
		return 0, decimal.Zero, &ValidationError{Field: "kind", Value: string(kind), Reason: "must be purchase or sale"}
	}

	qty, err := parseQuantity(quantity)
	if err != nil {
		return 0, decimal.Zero, err
	}

	price = strings.TrimSpace(price)
	switch kind {
	case Sale:
		if price != "" {
			return 0, decimal.Zero, &ValidationError{Field: "price", Value: price, Reason: "a sale is costed from inventory and takes no price"}
		}
		return qty, decimal.Zero, nil
	default:
		if price == "" {
			return 0, decimal.Zero, &ValidationError{Field: "price", Value: price, Reason: "a purchase requires a price"}
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return 0, decimal.Zero, &ValidationError{Field: "price", Value: price, Reason: "not a decimal number"}
		}
		if err := checkPrice(p); err != nil {
			err.Value = price
			return 0, decimal.Zero, err
		}
		return qty, p, nil
	}
}

// Prices are bounded so formatting and arithmetic on them stay cheap.
const (
	maxPriceExponent = 28
	maxPriceDigits   = 38
)

func checkPrice(p decimal.Decimal) *ValidationError {
	if p.IsNegative() {
		return &ValidationError{Field: "price", Value: p.String(), Reason: "must not be negative"}
	}
	if exp := p.Exponent(); exp > maxPriceExponent || exp < -maxPriceExponent {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("exponent must be within ±%d", maxPriceExponent)}
	}
	if p.NumDigits() > maxPriceDigits {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("more than %d significant digits", maxPriceDigits)}
	}
	return nil
}

func parseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "quantity", Value: s, Reason: "required"}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Value: s, Reason: "not an integer"}
	}
	if n <= 0 {
		return 0, &ValidationError{Field: "quantity", Value: s, Reason: "must be positive"}
	}
	return n, nil
}
