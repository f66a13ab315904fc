package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
)

type WatchlistHandler struct {
	svc *service.WatchlistService
}

func NewWatchlistHandler(s *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{svc: s}
}

// @Summary Agregar una película a mi watchlist
// @Tags watchlist
// @Accept json
// @Produce json
// @Param body body models.WatchlistAddRequest true "película"
// @Success 200 {object} models.WatchlistEntry
// @Security BearerAuth
// @Router /me/watchlist [post]
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())

	var req models.WatchlistAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", 400)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	entry, err := h.svc.Add(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(entry)
}

// @Summary Sacar una película de mi watchlist
// @Tags watchlist
// @Param movieId path int true "movieId"
// @Success 204
// @Security BearerAuth
// @Router /me/watchlist/{movieId} [delete]
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))

	if err := h.svc.Remove(r.Context(), userID, movieID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Mi watchlist (más recientes primero)
// @Tags watchlist
// @Produce json
// @Success 200 {array} models.WatchlistEntry
// @Security BearerAuth
// @Router /me/watchlist [get]
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())

	list := h.svc.List(r.Context(), userID)
	if list == nil {
		list = []models.WatchlistEntry{}
	}
	_ = json.NewEncoder(w).Encode(list)
}

// @Summary ¿Está la película en mi watchlist?
// @Tags watchlist
// @Produce json
// @Param movieId path int true "movieId"
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /me/watchlist/{movieId} [get]
func (h *WatchlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))

	_ = json.NewEncoder(w).Encode(map[string]bool{
		"inWatchlist": h.svc.Contains(r.Context(), userID, movieID),
	})
}
