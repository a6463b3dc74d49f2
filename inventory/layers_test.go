package inventory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// render flattens layers to "D1[10@2.00 5@3.00] D2[...]" for compact asserts.
func render(ls Layers) string {
	parts := make([]string, 0, len(ls))
	for _, layer := range ls {
		lots := make([]string, 0, len(layer.Lots))
		for _, lot := range layer.Lots {
			lots = append(lots, fmt.Sprintf("%d@%s", lot.Quantity, lot.UnitPrice.StringFixed(2)))
		}
		parts = append(parts, layer.Date+"["+strings.Join(lots, " ")+"]")
	}
	return strings.Join(parts, " ")
}

type buy struct {
	date  string
	qty   int64
	price string
}

func storeWith(purchases ...buy) *LayerStore {
	s := NewLayerStore()
	for _, p := range purchases {
		s.Insert(p.date, p.qty, dec(p.price))
	}
	return s
}

// =============================================================================
// INSERT
// =============================================================================

func TestLayerStore_Insert_NewDateAppendsLayer(t *testing.T) {
	s := storeWith(buy{"D1", 10, "2.00"}, buy{"D2", 5, "3.00"})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "D1[10@2.00] D2[5@3.00]", render(s.Clone()))
}

func TestLayerStore_Insert_SameDateMergesIntoExistingLayer(t *testing.T) {
	// GIVEN: Layers D1, D2
	// WHEN: Another purchase on D1 arrives after D2
	// THEN: The lot joins D1 in place; D1 stays ahead of D2
	s := storeWith(buy{"D1", 10, "2.00"}, buy{"D2", 5, "3.00"}, buy{"D1", 4, "2.50"})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "D1[10@2.00 4@2.50] D2[5@3.00]", render(s.Clone()))
}

func TestLayerStore_Insert_DateIsOpaqueToken(t *testing.T) {
	// Calendar-equal but textually different dates do not merge.
	s := storeWith(buy{"2024-01-05", 1, "1"}, buy{"2024-1-5", 1, "1"})

	assert.Equal(t, 2, s.Len())
}

func TestLayerStore_Insert_ArrivalOrderNotCalendarOrder(t *testing.T) {
	s := storeWith(buy{"2024-03-01", 1, "5"}, buy{"2024-01-01", 1, "1"})

	require.NoError(t, s.Consume(1))
	assert.Equal(t, "2024-01-01[1@1.00]", render(s.Clone()))
}

// =============================================================================
// CONSUME
// =============================================================================

func TestLayerStore_Consume_ExactFirstLayerRemovesIt(t *testing.T) {
	s := storeWith(buy{"D1", 10, "2.00"}, buy{"D2", 5, "3.00"})

	require.NoError(t, s.Consume(10))

	assert.Equal(t, "D2[5@3.00]", render(s.Clone()))
}

func TestLayerStore_Consume_SpansLayers(t *testing.T) {
	s := storeWith(buy{"D1", 10, "2.00"}, buy{"D2", 5, "3.00"})

	require.NoError(t, s.Consume(12))

	assert.Equal(t, "D2[3@3.00]", render(s.Clone()))
	assert.Equal(t, int64(3), s.TotalQuantity())
}

func TestLayerStore_Consume_DropsExhaustedLotsKeepsOrder(t *testing.T) {
	s := storeWith(buy{"D1", 2, "1"}, buy{"D1", 3, "2"}, buy{"D1", 4, "3"})

	require.NoError(t, s.Consume(5))

	assert.Equal(t, "D1[4@3.00]", render(s.Clone()))
}

func TestLayerStore_Consume_ShortfallDrainsEverything(t *testing.T) {
	// Consume reports a shortfall only after draining what it could.
	s := storeWith(buy{"D1", 3, "1"})

	err := s.Consume(5)

	var short *InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, int64(5), short.Requested)
	assert.Equal(t, int64(3), short.Available)
	assert.Equal(t, 0, s.Len())
}

func TestLayerStore_Consume_EmptyStore(t *testing.T) {
	s := NewLayerStore()

	err := s.Consume(1)

	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestLayerStore_Consume_NonPositiveQuantityIsNoop(t *testing.T) {
	s := storeWith(buy{"D1", 3, "1"})

	require.NoError(t, s.Consume(0))
	require.NoError(t, s.Consume(-1))

	assert.Equal(t, "D1[3@1.00]", render(s.Clone()))
}

// =============================================================================
// CLONE
// =============================================================================

func TestLayerStore_Clone_IsIndependent(t *testing.T) {
	s := storeWith(buy{"D1", 10, "2.00"})
	snap := s.Clone()

	s.Insert("D1", 1, dec("9"))
	require.NoError(t, s.Consume(10))
	snap[0].Lots[0].Quantity = 99

	assert.Equal(t, "D1[99@2.00]", render(snap))
	assert.Equal(t, "D1[1@9.00]", render(s.Clone()))
}

func TestLayers_Totals(t *testing.T) {
	s := storeWith(buy{"D1", 10, "2.00"}, buy{"D2", 5, "3.50"})

	assert.Equal(t, int64(15), s.TotalQuantity())
	assert.True(t, dec("37.50").Equal(s.TotalValue()), "got %s", s.TotalValue())
}

func TestLayers_CloneNil(t *testing.T) {
	var ls Layers
	assert.NotNil(t, ls.Clone())
	assert.Empty(t, ls.Clone())
}
