/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money is rendered as a
  fixed two-decimal string; quantities as integers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Entries:  RecordEntryRequest, EntryDTO, EntryRowDTO
  Balance:  BalanceDTO, LayerDTO, LotDTO
  Totals:   TotalsDTO
  Quote:    QuoteDTO

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RecordEntryRequest carries raw form fields. Quantity and price stay strings
// so that parsing and validation happen in the engine.
type RecordEntryRequest struct {
	Kind     string `json:"kind"`
	Date     string `json:"date"`
	Quantity string `json:"quantity"`
	Price    string `json:"price,omitempty"`
}

// EntryDTO represents one ledger entry.
type EntryDTO struct {
	Sequence  int64  `json:"sequence"`
	Kind      string `json:"kind"`
	Date      string `json:"date"`
	Quantity  int64  `json:"quantity"`
	UnitCost  string `json:"unit_cost"`
	TotalCost string `json:"total_cost"`
}

// EntryRowDTO is one row of the inventory card: the entry plus the balance it
// left behind.
type EntryRowDTO struct {
	EntryDTO
	Balance BalanceDTO `json:"balance"`
}

type LotDTO struct {
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Value     string `json:"value"`
}

type LayerDTO struct {
	Date string   `json:"date"`
	Lots []LotDTO `json:"lots"`
}

// BalanceDTO is a set of layers with their totals.
type BalanceDTO struct {
	Sequence *int64     `json:"sequence,omitempty"`
	Layers   []LayerDTO `json:"layers"`
	Quantity int64      `json:"quantity"`
	Value    string     `json:"value"`
}

type TotalsDTO struct {
	PurchaseCost   string `json:"purchase_cost"`
	SaleCost       string `json:"sale_cost"`
	OnHandQuantity int64  `json:"on_hand_quantity"`
	OnHandValue    string `json:"on_hand_value"`
}

type QuoteDTO struct {
	Quantity  int64  `json:"quantity"`
	Covered   int64  `json:"covered"`
	Shortfall int64  `json:"shortfall"`
	UnitCost  string `json:"unit_cost"`
	TotalCost string `json:"total_cost"`
	Valid     bool   `json:"valid"`
}

type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toEntryDTO(e inventory.Entry) EntryDTO {
	return EntryDTO{
		Sequence:  e.Sequence,
		Kind:      string(e.Kind),
		Date:      e.Date,
		Quantity:  e.Quantity,
		UnitCost:  money(e.UnitCost),
		TotalCost: money(e.TotalCost),
	}
}

func toBalanceDTO(layers inventory.Layers) BalanceDTO {
	dto := BalanceDTO{
		Layers:   make([]LayerDTO, 0, len(layers)),
		Quantity: layers.TotalQuantity(),
		Value:    money(layers.TotalValue()),
	}
	for _, layer := range layers {
		l := LayerDTO{Date: layer.Date, Lots: make([]LotDTO, 0, len(layer.Lots))}
		for _, lot := range layer.Lots {
			l.Lots = append(l.Lots, LotDTO{
				Quantity:  lot.Quantity,
				UnitPrice: money(lot.UnitPrice),
				Value:     money(lot.Value()),
			})
		}
		dto.Layers = append(dto.Layers, l)
	}
	return dto
}

func toSnapshotDTO(s inventory.Snapshot) BalanceDTO {
	dto := toBalanceDTO(s.Layers)
	seq := s.Sequence
	dto.Sequence = &seq
	return dto
}

func toEntryRowDTO(row inventory.Row) EntryRowDTO {
	return EntryRowDTO{EntryDTO: toEntryDTO(row.Entry), Balance: toSnapshotDTO(row.Balance)}
}

func toTotalsDTO(t inventory.Totals) TotalsDTO {
	return TotalsDTO{
		PurchaseCost:   money(t.PurchaseCost),
		SaleCost:       money(t.SaleCost),
		OnHandQuantity: t.OnHandQuantity,
		OnHandValue:    money(t.OnHandValue),
	}
}

func toQuoteDTO(q inventory.Quote) QuoteDTO {
	return QuoteDTO{
		Quantity:  q.Requested,
		Covered:   q.Covered,
		Shortfall: q.Shortfall,
		UnitCost:  money(q.UnitCost),
		TotalCost: money(q.TotalCost()),
		Valid:     q.Valid(),
	}
}
