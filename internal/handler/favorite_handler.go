package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
)

type FavoriteHandler struct {
	svc *service.FavoriteService
}

func NewFavoriteHandler(s *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: s}
}

// @Summary Marcar/desmarcar una película como favorita
// @Tags favorites
// @Produce json
// @Param movieId path int true "movieId"
// @Success 200 {object} models.RatingDoc
// @Security BearerAuth
// @Router /me/favorites/{movieId}/toggle [post]
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))

	doc, err := h.svc.Toggle(r.Context(), userID, movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(doc)
}

// @Summary Mis películas favoritas (más recientes primero)
// @Tags favorites
// @Produce json
// @Success 200 {array} models.RatingDoc
// @Security BearerAuth
// @Router /me/favorites [get]
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())

	list := h.svc.List(r.Context(), userID)
	if list == nil {
		list = []models.RatingDoc{}
	}
	_ = json.NewEncoder(w).Encode(list)
}
