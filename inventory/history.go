package inventory

import "fmt"

// =============================================================================
// SNAPSHOT HISTORY - Layer state after every entry
// =============================================================================

// Snapshot captures the layers immediately after the entry with Sequence was
// recorded. Layers shares nothing with the live store.
type Snapshot struct {
	Sequence int64
	Date     string
	Layers   Layers
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{Sequence: s.Sequence, Date: s.Date, Layers: s.Layers.Clone()}
}

// History is indexed 1:1 with the Ledger: snapshots[i] belongs to the entry
// with sequence i+1.
type History struct {
	snapshots []Snapshot
}

func NewHistory() *History {
	return &History{}
}

// Record appends a deep copy of store taken for entry.
func (h *History) Record(entry Entry, store *LayerStore) error {
	if want := int64(len(h.snapshots)) + 1; entry.Sequence != want {
		return fmt.Errorf("%w: snapshot for %d, want %d", ErrSequenceMismatch, entry.Sequence, want)
	}
	h.snapshots = append(h.snapshots, Snapshot{
		Sequence: entry.Sequence,
		Date:     entry.Date,
		Layers:   store.Clone(),
	})
	return nil
}

// At returns a copy of the snapshot taken after entry sequence.
func (h *History) At(sequence int64) (Snapshot, error) {
	if sequence < 1 || sequence > int64(len(h.snapshots)) {
		return Snapshot{}, fmt.Errorf("%w: sequence %d", ErrEntryNotFound, sequence)
	}
	return h.snapshots[sequence-1].clone(), nil
}

// All returns copies of every snapshot in sequence order.
func (h *History) All() []Snapshot {
	out := make([]Snapshot, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = s.clone()
	}
	return out
}

func (h *History) Len() int {
	return len(h.snapshots)
}
