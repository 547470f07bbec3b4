package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
)

// BookHandler handles HTTP requests for the order book snapshot.
type BookHandler struct {
	book *engine.Orderbook
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(book *engine.Orderbook) *BookHandler {
	return &BookHandler{book: book}
}

// levelResponse is a single price level in the book response.
type levelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /book.
type bookResponse struct {
	Bids          []levelResponse `json:"bids"`
	Asks          []levelResponse `json:"asks"`
	RestingOrders int             `json:"resting_orders"`
	Spread        *float64        `json:"spread"`
	SnapshotAt    string          `json:"snapshot_at"`
}

// GetBook handles GET /book. Levels are returned best-first, prices
// rendered as dollars.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	// Parse depth query param (default 10, max 50).
	depth := 10
	if d := r.URL.Query().Get("depth"); d != "" {
		var err error
		depth, err = strconv.Atoi(d)
		if err != nil || depth <= 0 {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a positive integer")
			return
		}
	}
	if depth > 50 {
		depth = 50
	}

	bids, asks := h.book.Levels()
	size := h.book.Size()

	resp := bookResponse{
		Bids:          renderLevels(bids, depth),
		Asks:          renderLevels(asks, depth),
		RestingOrders: size,
		SnapshotAt:    time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}

	if len(bids) > 0 && len(asks) > 0 {
		spread := domain.CentsToDollars(asks[0].Price - bids[0].Price)
		resp.Spread = &spread
	}

	WriteJSON(w, http.StatusOK, resp)
}

func renderLevels(levels []domain.LevelInfo, depth int) []levelResponse {
	if len(levels) > depth {
		levels = levels[:depth]
	}
	out := make([]levelResponse, len(levels))
	for i, lvl := range levels {
		out[i] = levelResponse{
			Price:         domain.CentsToDollars(lvl.Price),
			TotalQuantity: lvl.Quantity,
			OrderCount:    lvl.OrderCount,
		}
	}
	return out
}
