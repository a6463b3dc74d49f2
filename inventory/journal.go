/*
journal.go - Persistence boundary for recorded entries

PURPOSE:
  The engine's state is volatile: ledger, layers and history live in memory
  and are rebuilt from nothing at process start. A Journal is an optional
  collaborator that durably keeps the accepted entries so the engine can be
  rebuilt by replaying them (see Engine.Restore).

APPEND-ONLY CONTRACT:
  - Append(): Single entry write, called before the engine mutates anything
  - Load(): All entries, ordered by sequence
  - NO Update() or Delete() methods exist

IMPLEMENTATIONS:
  - inventory/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite file

SEE ALSO:
  - engine.go: RecordEntry journals, Restore replays
*/
package inventory

import "context"

// Journal persists accepted entries. IMPORTANT: Journal is APPEND-ONLY.
type Journal interface {
	// Append persists one entry. A failure must leave nothing persisted.
	Append(ctx context.Context, entry Entry) error

	// Load returns every persisted entry ordered by sequence.
	Load(ctx context.Context) ([]Entry, error)
}
