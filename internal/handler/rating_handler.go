package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingHandler struct {
	svc  *service.RatingService
	auth *service.AuthService
}

func NewRatingHandler(s *service.RatingService, auth *service.AuthService) *RatingHandler {
	return &RatingHandler{svc: s, auth: auth}
}

// ====== mutaciones ======

// @Summary Crear o actualizar mi rating de una película
// @Tags ratings
// @Accept json
// @Produce json
// @Param body body models.RatingUpsertRequest true "rating"
// @Success 200 {object} models.RatingDoc
// @Security BearerAuth
// @Router /me/ratings [post]
func (h *RatingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())

	var req models.RatingUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", 400)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	// nombre y foto desnormalizados salen del perfil, no del payload
	userName, userPhoto := "", ""
	if u, err := h.auth.GetUserByID(r.Context(), userID); err == nil && u != nil {
		userName = service.DisplayName(u)
		userPhoto = u.Photo
	}

	doc, err := h.svc.AddOrUpdate(r.Context(), userID, userName, userPhoto, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(doc)
}

// @Summary Borrar mi rating de una película
// @Tags ratings
// @Param movieId path int true "movieId"
// @Success 204
// @Security BearerAuth
// @Router /me/ratings/{movieId} [delete]
func (h *RatingHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieId"))

	if err := h.svc.Delete(r.Context(), userID, movieID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Borrar un rating del feed por id (dueño o admin)
// @Tags ratings
// @Param id path string true "id del rating"
// @Success 204
// @Security BearerAuth
// @Router /ratings/{id} [delete]
func (h *RatingHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "id inválido", 400)
		return
	}

	if err := h.svc.DeleteByID(r.Context(), id, userID, IsAdmin(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ====== lecturas ======

// @Summary Mis ratings
// @Tags ratings
// @Produce json
// @Success 200 {array} models.RatingDoc
// @Security BearerAuth
// @Router /me/ratings [get]
func (h *RatingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())

	list := h.svc.GetByUser(r.Context(), userID)
	if list == nil {
		list = []models.RatingDoc{}
	}
	_ = json.NewEncoder(w).Encode(list)
}

// @Summary Ratings de una película (más nuevos primero)
// @Tags ratings
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {array} models.RatingDoc
// @Router /movies/{id}/ratings [get]
func (h *RatingHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	movieID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	list := h.svc.GetByMovie(r.Context(), movieID)
	if list == nil {
		list = []models.RatingDoc{}
	}
	_ = json.NewEncoder(w).Encode(list)
}

// @Summary Promedio y cantidad de ratings de una película
// @Tags ratings
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {object} models.MovieRatingSummary
// @Router /movies/{id}/ratings/summary [get]
func (h *RatingHandler) MovieSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	movieID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	_ = json.NewEncoder(w).Encode(h.svc.GetMovieAverage(r.Context(), movieID))
}

// @Summary Promedios de varias películas en una sola llamada
// @Tags ratings
// @Produce json
// @Param ids query string true "ids separados por coma"
// @Success 200 {object} map[int]models.MovieRatingSummary
// @Router /ratings/batch-summary [get]
func (h *RatingHandler) BatchSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ids := parseIDList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "ids es requerido", 400)
		return
	}
	_ = json.NewEncoder(w).Encode(h.svc.GetBatchMovieAverages(r.Context(), ids))
}

// @Summary Estadísticas de rating de un usuario
// @Tags ratings
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} models.UserRatingStats
// @Router /users/{id}/rating-stats [get]
func (h *RatingHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	_ = json.NewEncoder(w).Encode(h.svc.GetUserStats(r.Context(), userID))
}

// @Summary Feed global de ratings con cursor
// @Tags ratings
// @Produce json
// @Param limit query int false "tamaño de página (default 20, máx 100)"
// @Param cursor query string false "cursor opaco de la página anterior"
// @Success 200 {object} models.RatingsPage
// @Router /ratings/feed [get]
func (h *RatingHandler) Feed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := h.svc.GetAllRatings(r.Context(), limit, cursor)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if page.Items == nil {
		page.Items = []models.RatingDoc{}
	}
	_ = json.NewEncoder(w).Encode(page)
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsFeedRequest es lo que manda el cliente para pedir la siguiente página.
type wsFeedRequest struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

// @Summary Feed de ratings por WebSocket (paginación interactiva)
// @Tags ratings
// @Produce json
// @Param limit query int false "tamaño de página (default 20, máx 100)"
// @Success 200 {object} map[string]interface{}
// @Router /ws/ratings/feed [get]
func (h *RatingHandler) FeedWS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "No se pudo abrir WebSocket", 400)
		return
	}
	defer conn.Close()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	// Primera página apenas se abre la conexión
	page, err := h.svc.GetAllRatings(r.Context(), limit, "")
	if err != nil {
		conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
		return
	}
	conn.WriteJSON(map[string]any{"type": "page", "page": page})

	// El cliente pide más páginas mandando {"cursor": "...", "limit": n}
	for {
		var req wsFeedRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		page, err := h.svc.GetAllRatings(r.Context(), req.Limit, req.Cursor)
		if err != nil {
			conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
			continue
		}
		conn.WriteJSON(map[string]any{"type": "page", "page": page})
		if !page.HasMore {
			conn.WriteJSON(map[string]any{"type": "end"})
			return
		}
	}
}
