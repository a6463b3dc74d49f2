/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Recording entries (201 / 400 / 409)
- Ledger rows with balances
- Per-entry balance lookups (404 on unknown sequence)
- Layers, totals and quote endpoints
- Journal failures surfacing as 500
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/inventory/store"
)

func newTestServer(journal inventory.Journal) (*httptest.Server, *inventory.Engine) {
	engine := inventory.NewEngine(journal, zerolog.Nop())
	router := NewRouter(NewHandler(engine, zerolog.Nop()), RouterOptions{})
	return httptest.NewServer(router), engine
}

func postEntry(t *testing.T, srv *httptest.Server, req RecordEntryRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/entries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// seed records the two opening purchases and the 12-unit sale.
func seed(t *testing.T, srv *httptest.Server) {
	t.Helper()
	for _, req := range []RecordEntryRequest{
		{Kind: "purchase", Date: "D1", Quantity: "10", Price: "2.00"},
		{Kind: "purchase", Date: "D2", Quantity: "5", Price: "3.00"},
		{Kind: "sale", Date: "D3", Quantity: "12"},
	} {
		resp := postEntry(t, srv, req)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

// =============================================================================
// POST /api/entries
// =============================================================================

func TestRecordEntry_Created(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()

	resp := postEntry(t, srv, RecordEntryRequest{Kind: "purchase", Date: "D1", Quantity: "10", Price: "2"})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decode[EntryDTO](t, resp)
	assert.Equal(t, EntryDTO{
		Sequence:  1,
		Kind:      "purchase",
		Date:      "D1",
		Quantity:  10,
		UnitCost:  "2.00",
		TotalCost: "20.00",
	}, got)
}

func TestRecordEntry_SaleUsesLastLotPrice(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	postEntry(t, srv, RecordEntryRequest{Kind: "purchase", Date: "D1", Quantity: "10", Price: "2.00"})
	postEntry(t, srv, RecordEntryRequest{Kind: "purchase", Date: "D2", Quantity: "5", Price: "3.00"})

	resp := postEntry(t, srv, RecordEntryRequest{Kind: "sale", Date: "D3", Quantity: "12"})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decode[EntryDTO](t, resp)
	assert.Equal(t, int64(3), got.Sequence)
	assert.Equal(t, "3.00", got.UnitCost)
	assert.Equal(t, "36.00", got.TotalCost)
}

func TestRecordEntry_ValidationError(t *testing.T) {
	srv, engine := newTestServer(nil)
	defer srv.Close()

	resp := postEntry(t, srv, RecordEntryRequest{Kind: "purchase", Date: "D1", Quantity: "abc", Price: "1"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	got := decode[ErrorDTO](t, resp)
	assert.Equal(t, "quantity", got.Field)
	assert.Empty(t, engine.Entries())
}

func TestRecordEntry_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/entries", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordEntry_InsufficientInventory(t *testing.T) {
	srv, engine := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)

	resp := postEntry(t, srv, RecordEntryRequest{Kind: "sale", Date: "D4", Quantity: "100"})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	got := decode[ErrorDTO](t, resp)
	assert.Equal(t, "Insufficient inventory", got.Error)
	assert.Len(t, engine.Entries(), 3)
}

func TestRecordEntry_JournalFailureIsInternalError(t *testing.T) {
	journal := store.NewMemory()
	journal.FailWith = errors.New("disk full")
	srv, engine := newTestServer(journal)
	defer srv.Close()

	resp := postEntry(t, srv, RecordEntryRequest{Kind: "purchase", Date: "D1", Quantity: "1", Price: "1"})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, engine.Entries())
}

// =============================================================================
// GET /api/entries
// =============================================================================

func TestListEntries_RowsCarryBalances(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)

	var rows []EntryRowDTO
	status := getJSON(t, srv, "/api/entries", &rows)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.NotNil(t, row.Balance.Sequence)
		assert.Equal(t, int64(i+1), *row.Balance.Sequence)
	}
	assert.Equal(t, int64(10), rows[0].Balance.Quantity)
	assert.Equal(t, "20.00", rows[0].Balance.Value)
	assert.Equal(t, int64(15), rows[1].Balance.Quantity)
	assert.Equal(t, "sale", rows[2].Kind)
	require.Len(t, rows[2].Balance.Layers, 1)
	assert.Equal(t, "D2", rows[2].Balance.Layers[0].Date)
	assert.Equal(t, []LotDTO{{Quantity: 3, UnitPrice: "3.00", Value: "9.00"}}, rows[2].Balance.Layers[0].Lots)
}

func TestListEntries_EmptyLedger(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()

	var rows []EntryRowDTO
	status := getJSON(t, srv, "/api/entries", &rows)

	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetEntry(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)

	var row EntryRowDTO
	status := getJSON(t, srv, "/api/entries/2", &row)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), row.Sequence)
	assert.Equal(t, "D2", row.Date)
	assert.Len(t, row.Balance.Layers, 2)
}

func TestGetEntry_NotFoundAndInvalid(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/entries/4", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/entries/zero", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/entries/0", nil))
}

func TestGetBalance(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)

	var balance BalanceDTO
	status := getJSON(t, srv, "/api/entries/1/balance", &balance)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, balance.Sequence)
	assert.Equal(t, int64(1), *balance.Sequence)
	assert.Equal(t, int64(10), balance.Quantity)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/entries/9/balance", nil))
}

// =============================================================================
// LAYERS / TOTALS / QUOTE
// =============================================================================

func TestGetLayers(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)
	postEntry(t, srv, RecordEntryRequest{Kind: "purchase", Date: "D2", Quantity: "7", Price: "4.00"})

	var balance BalanceDTO
	status := getJSON(t, srv, "/api/layers", &balance)

	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, balance.Sequence)
	require.Len(t, balance.Layers, 1)
	assert.Len(t, balance.Layers[0].Lots, 2)
	assert.Equal(t, int64(10), balance.Quantity)
	assert.Equal(t, "37.00", balance.Value)
}

func TestGetTotals(t *testing.T) {
	srv, _ := newTestServer(nil)
	defer srv.Close()
	seed(t, srv)

	var totals TotalsDTO
	status := getJSON(t, srv, "/api/totals", &totals)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, TotalsDTO{
		PurchaseCost:   "35.00",
		SaleCost:       "36.00",
		OnHandQuantity: 3,
		OnHandValue:    "9.00",
	}, totals)
}

func TestGetQuote(t *testing.T) {
	srv, engine := newTestServer(nil)
	defer srv.Close()
	_, err := engine.RecordEntry(context.Background(), inventory.Purchase, "D1", "10", "2.00")
	require.NoError(t, err)

	var q QuoteDTO
	status := getJSON(t, srv, "/api/quote?quantity=4", &q)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, QuoteDTO{Quantity: 4, Covered: 4, UnitCost: "2.00", TotalCost: "8.00", Valid: true}, q)

	status = getJSON(t, srv, "/api/quote?quantity=11", &q)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, q.Valid)
	assert.Equal(t, int64(1), q.Shortfall)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/quote", nil))
	assert.Len(t, engine.Entries(), 1)
}
