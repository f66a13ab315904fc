package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username" validate:"omitempty,min=3,max=30"`
	Photo     string `json:"photo"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// @Summary Registrar usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "datos"
// @Success 201 {object} models.UserDoc
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	u, err := h.auth.Register(r.Context(), service.RegisterUserData{
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Photo:     req.Photo,
	})
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credenciales"
// @Success 200 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	token, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  u,
	})
}

// @Summary Perfil propio
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserDoc
// @Router /me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())
	u, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if u == nil {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(u)
}

// @Summary Actualizar perfil propio
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.ProfileUpdateRequest true "campos a actualizar"
// @Success 200 {object} models.UserDoc
// @Router /me [put]
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body inválido", 400)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), UserIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(u)
}

// @Summary Stats del perfil propio (ratings, favoritas, watchlist)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserStats
// @Router /me/stats [get]
func (h *AuthHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	stats := h.users.Stats(r.Context(), UserIDFromContext(r.Context()))
	_ = json.NewEncoder(w).Encode(stats)
}

// @Summary Obtener usuario por id (admin)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} models.UserDoc
// @Router /users/{id} [get]
func (h *AuthHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	u, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if u == nil {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(u)
}
