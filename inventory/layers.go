package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// LAYER STORE - Open cost layers, FIFO by arrival
// =============================================================================

// LayerStore holds the open cost layers. It knows nothing about the ledger.
//
// INVARIANTS:
//   - Layer order is the order in which each date token was first purchased.
//   - No layer with zero lots and no lot with zero quantity survives a
//     consumption pass.
//
// Not safe for concurrent use; Engine serializes access.
type LayerStore struct {
	layers Layers
}

func NewLayerStore() *LayerStore {
	return &LayerStore{}
}

// Insert records a purchase. The first layer whose date equals date (exact
// string match) receives a new lot; otherwise a new layer is appended.
func (s *LayerStore) Insert(date string, quantity int64, unitPrice decimal.Decimal) {
	lot := Lot{Quantity: quantity, UnitPrice: unitPrice}
	for i := range s.layers {
		if s.layers[i].Date == date {
			s.layers[i].Lots = append(s.layers[i].Lots, lot)
			return
		}
	}
	s.layers = append(s.layers, Layer{Date: date, Lots: []Lot{lot}})
}

// Consume depletes quantity from the oldest lots first.
//
// Lots are decremented as they are reached, so a shortfall is only detected
// after every available lot has been drained. Callers must confirm coverage
// with Quote before calling Consume.
func (s *LayerStore) Consume(quantity int64) error {
	if quantity <= 0 {
		return nil
	}
	requested := quantity
	available := s.layers.TotalQuantity()

	for i := range s.layers {
		lots := s.layers[i].Lots
		for j := range lots {
			if quantity == 0 {
				break
			}
			if lots[j].Quantity <= 0 {
				continue
			}
			use := min(lots[j].Quantity, quantity)
			lots[j].Quantity -= use
			quantity -= use
		}
	}
	s.compact()

	if quantity > 0 {
		return &InsufficientInventoryError{Requested: requested, Available: available}
	}
	return nil
}

// compact drops exhausted lots, then empty layers, keeping survivor order.
func (s *LayerStore) compact() {
	layers := s.layers[:0]
	for _, layer := range s.layers {
		lots := layer.Lots[:0]
		for _, lot := range layer.Lots {
			if lot.Quantity > 0 {
				lots = append(lots, lot)
			}
		}
		if len(lots) == 0 {
			continue
		}
		layer.Lots = lots
		layers = append(layers, layer)
	}
	// Zero the tail so dropped layers do not pin their lot arrays.
	for i := len(layers); i < len(s.layers); i++ {
		s.layers[i] = Layer{}
	}
	s.layers = layers
}

// Clone returns an independent deep copy of the current layers.
func (s *LayerStore) Clone() Layers {
	return s.layers.Clone()
}

func (s *LayerStore) Len() int {
	return len(s.layers)
}

func (s *LayerStore) TotalQuantity() int64 {
	return s.layers.TotalQuantity()
}

func (s *LayerStore) TotalValue() decimal.Decimal {
	return s.layers.TotalValue()
}
