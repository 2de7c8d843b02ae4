package api

import (
	"net/http"

	"github.com/newthinker/insight/internal/api/response"
)

// WatchlistApp defines the interface needed from app.App.
type WatchlistApp interface {
	Watchlist() []string
}

// WatchlistHandler exposes the configured watchlist.
type WatchlistHandler struct {
	app WatchlistApp
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(app WatchlistApp) *WatchlistHandler {
	return &WatchlistHandler{app: app}
}

// List returns the configured watchlist tickers.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	tickers := h.app.Watchlist()
	response.JSON(w, http.StatusOK, map[string]any{
		"tickers": tickers,
		"count":   len(tickers),
	})
}
