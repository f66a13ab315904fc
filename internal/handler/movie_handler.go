package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler { return &MovieHandler{svc: s} }

// @Summary Obtener película (caché → catálogo)
// @Tags movies
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {object} models.CachedMovie
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	m, err := h.svc.GetMovie(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if m == nil {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(m)
}

// @Summary Buscar películas (catálogo con write-through; degrada a caché)
// @Tags movies
// @Produce json
// @Param q query string true "texto de búsqueda"
// @Param limit query int false "límite (default 10)"
// @Success 200 {array} models.CachedMovie
// @Router /movies/search [get]
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		http.Error(w, "q es requerido", 400)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results := h.svc.Search(r.Context(), q, limit)
	_ = json.NewEncoder(w).Encode(results)
}

// @Summary Buscar solo dentro del caché (sugerencias instantáneas)
// @Tags movies
// @Produce json
// @Param q query string true "texto de búsqueda"
// @Param limit query int false "límite (default 10)"
// @Success 200 {array} models.CachedMovie
// @Router /movies/search-cached [get]
func (h *MovieHandler) SearchCached(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		http.Error(w, "q es requerido", 400)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results := h.svc.SearchCached(r.Context(), q, limit)
	_ = json.NewEncoder(w).Encode(results)
}

// @Summary Resolver varias películas por id
// @Tags movies
// @Produce json
// @Param ids query string true "ids separados por coma, p.e. 301,302,326"
// @Success 200 {object} map[int]models.CachedMovie
// @Router /movies/batch [get]
func (h *MovieHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ids := parseIDList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "ids es requerido", 400)
		return
	}

	result := h.svc.GetBatch(r.Context(), ids)
	_ = json.NewEncoder(w).Encode(result)
}

// parseIDList convierte "1,2,3" en ints, ignorando basura.
func parseIDList(raw string) []int {
	if raw == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}
