/*
handlers.go - HTTP API handlers for the inventory engine

PURPOSE:
  Exposes the engine via a JSON API. Handles HTTP request/response and
  delegates every decision to inventory.Engine. This layer captures input
  and presents errors; it never touches layers or the ledger directly.

ENDPOINTS:
  Entries:
    POST   /api/entries                     Record a purchase or sale
    GET    /api/entries                     Ledger rows with per-row balance
    GET    /api/entries/{sequence}          One ledger row
    GET    /api/entries/{sequence}/balance  Layers right after that entry

  Inventory:
    GET    /api/layers                      Live layer store
    GET    /api/totals                      Purchase/sale cost totals, on hand
    GET    /api/quote?quantity=N            Preview a sale without recording

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown sequence
  - 409: Insufficient inventory
  - 500: Internal errors (journal failures)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *inventory.Engine
	log    zerolog.Logger
}

// NewHandler creates a new handler for the given engine.
func NewHandler(engine *inventory.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		Engine: engine,
		log:    log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// RecordEntry records a purchase or a sale.
func (h *Handler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	var req RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Engine.RecordEntry(r.Context(), inventory.EntryKind(req.Kind), req.Date, req.Quantity, req.Price)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// ListEntries returns every ledger row with the balance it left behind.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	rows := h.Engine.Rows()

	dtos := make([]EntryRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toEntryRowDTO(row)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEntry returns a single ledger row.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceParam(w, r)
	if !ok {
		return
	}

	row, err := h.Engine.Row(seq)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryRowDTO(row))
}

// GetBalance returns the layers as they stood right after an entry.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceParam(w, r)
	if !ok {
		return
	}

	snap, err := h.Engine.SnapshotAt(seq)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// =============================================================================
// INVENTORY HANDLERS
// =============================================================================

// GetLayers returns the live layer store.
func (h *Handler) GetLayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toBalanceDTO(h.Engine.Layers()))
}

// GetTotals returns the ledger's cost totals and the stock on hand.
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toTotalsDTO(h.Engine.Totals()))
}

// GetQuote previews the cost of a sale.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Engine.Quote(r.URL.Query().Get("quantity"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(q))
}

// =============================================================================
// HELPERS
// =============================================================================

func sequenceParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "sequence")
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq < 1 {
		writeError(w, http.StatusBadRequest, "Invalid sequence", err)
		return 0, false
	}
	return seq, true
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "Validation failed", Details: verr.Error(), Field: verr.Field})
	case errors.Is(err, inventory.ErrInsufficientInventory):
		writeError(w, http.StatusConflict, "Insufficient inventory", err)
	case errors.Is(err, inventory.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "Entry not found", err)
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorDTO{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
