/*
Package sqlite provides a SQLite-backed inventory.Journal.

PURPOSE:
  Keeps every entry the engine accepted in an append-only table so that a
  restarted process can rebuild its layers, ledger and history with
  Engine.Restore. The engine itself stays in-memory; this store is only the
  durable copy of its input.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the entries table
  - No DELETE statements on the entries table
  - sequence is the primary key, so a replayed or duplicated write fails

KEY TABLES:
  entries: One row per accepted purchase or sale

DECIMALS:
  unit_cost and total_cost are stored as TEXT in decimal.Decimal's string
  form so no precision is lost through REAL.

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := inventory.NewEngine(store, logger)
  engine.Restore(ctx)

SEE ALSO:
  - inventory/journal.go: Interface definition
  - inventory/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/inventory"
)

// Store implements inventory.Journal using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Entries (append-only journal)
	CREATE TABLE IF NOT EXISTS entries (
		sequence INTEGER PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('purchase', 'sale')),
		date TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_cost TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_kind
		ON entries(kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// JOURNAL (inventory.Journal interface)
// =============================================================================

// Append adds an entry to the journal.
func (s *Store) Append(ctx context.Context, entry inventory.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO entries
		(sequence, kind, date, quantity, unit_cost, total_cost, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.Sequence,
		string(entry.Kind),
		entry.Date,
		entry.Quantity,
		entry.UnitCost.String(),
		entry.TotalCost.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: sequence %d already journaled", inventory.ErrSequenceMismatch, entry.Sequence)
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// Load returns every entry ordered by sequence.
func (s *Store) Load(ctx context.Context) ([]inventory.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, kind, date, quantity, unit_cost, total_cost
		FROM entries
		ORDER BY sequence ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []inventory.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (inventory.Entry, error) {
	var (
		entry     inventory.Entry
		kind      string
		unitCost  string
		totalCost string
	)
	if err := rows.Scan(&entry.Sequence, &kind, &entry.Date, &entry.Quantity, &unitCost, &totalCost); err != nil {
		return inventory.Entry{}, fmt.Errorf("failed to scan entry: %w", err)
	}
	entry.Kind = inventory.EntryKind(kind)

	var err error
	if entry.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
		return inventory.Entry{}, fmt.Errorf("entry %d: bad unit_cost %q: %w", entry.Sequence, unitCost, err)
	}
	if entry.TotalCost, err = decimal.NewFromString(totalCost); err != nil {
		return inventory.Entry{}, fmt.Errorf("entry %d: bad total_cost %q: %w", entry.Sequence, totalCost, err)
	}
	return entry, nil
}

// Count returns the number of journaled entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY")
}
