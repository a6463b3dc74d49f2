package inventory

import "github.com/shopspring/decimal"

// Quote is the result of previewing a sale against the layer store.
type Quote struct {
	Requested int64
	Covered   int64
	Shortfall int64

	// UnitCost is the unit price of the last lot that contributed to the
	// sale. It is not an average of the lots consumed.
	UnitCost decimal.Decimal
}

// Valid reports whether the sale can be fully satisfied at a non-zero cost.
func (q Quote) Valid() bool {
	return q.Shortfall == 0 && q.UnitCost.IsPositive()
}

func (q Quote) TotalCost() decimal.Decimal {
	return q.UnitCost.Mul(decimal.NewFromInt(q.Requested))
}

// Quote walks the layers in consumption order without mutating them and
// reports the unit cost a sale of quantity would be booked at.
func (s *LayerStore) Quote(quantity int64) Quote {
	if quantity <= 0 {
		return Quote{UnitCost: decimal.Zero}
	}
	q := Quote{Requested: quantity, UnitCost: decimal.Zero}
	remaining := quantity

scan:
	for _, layer := range s.layers {
		for _, lot := range layer.Lots {
			if remaining == 0 {
				break scan
			}
			if lot.Quantity <= 0 {
				continue
			}
			use := min(lot.Quantity, remaining)
			q.UnitCost = lot.UnitPrice
			remaining -= use
		}
	}

	q.Covered = quantity - remaining
	q.Shortfall = remaining
	return q
}
