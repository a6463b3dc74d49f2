// Package store provides Journal implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// MEMORY JOURNAL - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries []inventory.Entry

	// FailWith, when set, is returned by the next Append instead of writing.
	FailWith error
}

func NewMemory() *Memory {
	return &Memory{}
}

// Append adds a single entry. Append-only.
func (m *Memory) Append(_ context.Context, entry inventory.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		err := m.FailWith
		m.FailWith = nil
		return err
	}

	if n := len(m.entries); n > 0 && m.entries[n-1].Sequence >= entry.Sequence {
		return fmt.Errorf("%w: %d after %d", inventory.ErrSequenceMismatch, entry.Sequence, m.entries[n-1].Sequence)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) Load(_ context.Context) ([]inventory.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.Entry, len(m.entries))
	copy(result, m.entries)
	return result, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
