package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
)

// AdminMaintenanceHandler expone endpoints de mantenimiento del caché.
type AdminMaintenanceHandler struct {
	svc     *service.AdminMaintenanceService
	ratings *service.RatingService
}

// NewAdminMaintenanceHandler crea el handler.
func NewAdminMaintenanceHandler(svc *service.AdminMaintenanceService, ratings *service.RatingService) *AdminMaintenanceHandler {
	return &AdminMaintenanceHandler{svc: svc, ratings: ratings}
}

// @Summary Resumen de estado del caché de metadata
// @Description Devuelve conteos de entradas totales, vencidas y calificadas.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.CacheStats
// @Failure 500 {string} string "error interno"
// @Router /admin/maintenance/cache/summary [get]
// GET /admin/maintenance/cache/summary
func (h *AdminMaintenanceHandler) GetCacheSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CacheSummary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// @Summary Barrer entradas vencidas del caché
// @Description Borra del caché remoto (y del tier local) las entradas más viejas que el TTL.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {string} string "error interno"
// @Router /admin/maintenance/cache/cleanup-expired [post]
// POST /admin/maintenance/cache/cleanup-expired
func (h *AdminMaintenanceHandler) PostCleanupExpired(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.CleanupExpired(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// @Summary Borrar del caché los títulos que nadie calificó
// @Description Compara el caché contra los movieId presentes en ratings y borra el resto.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {string} string "error interno"
// @Router /admin/maintenance/cache/cleanup-unrated [post]
// POST /admin/maintenance/cache/cleanup-unrated
func (h *AdminMaintenanceHandler) PostCleanupUnrated(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.CleanupUnrated(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// @Summary Borrar en cascada todos los ratings de un usuario
// @Description Mantenimiento administrativo: elimina todos los ratings del usuario indicado.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} map[string]int64
// @Failure 500 {string} string "error interno"
// @Router /admin/maintenance/users/{id}/ratings [delete]
// DELETE /admin/maintenance/users/{id}/ratings
func (h *AdminMaintenanceHandler) DeleteUserRatings(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))

	n, err := h.ratings.DeleteAllByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Utilidad pequeña para respuestas JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Helper para montar rutas en main.go
func MountAdminMaintenanceRoutes(r chi.Router, h *AdminMaintenanceHandler) {
	r.Route("/admin/maintenance", func(r chi.Router) {
		r.Get("/cache/summary", h.GetCacheSummary)
		r.Post("/cache/cleanup-expired", h.PostCleanupExpired)
		r.Post("/cache/cleanup-unrated", h.PostCleanupUnrated)
		r.Delete("/users/{id}/ratings", h.DeleteUserRatings)
	})
}
