package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrUserNotFound  = errors.New("usuario no encontrado")
	ErrUsernameTaken = errors.New("ese username ya está en uso")
)

type profileStore interface {
	FindByID(ctx context.Context, userID int) (*models.UserDoc, error)
	FindByUsernameLower(ctx context.Context, usernameLower string) (*models.UserDoc, error)
	UpdateByID(ctx context.Context, userID int, update bson.M) error
}

type ratingProfileStore interface {
	CountByUser(ctx context.Context, userID int) (int64, error)
	CountFavorites(ctx context.Context, userID int) (int64, error)
	UpdateUserInfo(ctx context.Context, userID int, userName, userPhoto string) (int64, error)
}

type watchlistCounter interface {
	CountByUser(ctx context.Context, userID int) (int64, error)
}

// UserService maneja el perfil de aplicación (separado de la identidad):
// actualización con invariante usernameLower, refresh bulk de los campos
// desnormalizados en ratings, y stats agregadas en paralelo.
type UserService struct {
	users     profileStore
	ratings   ratingProfileStore
	watchlist watchlistCounter
	queue     *WriteQueue
	now       func() time.Time
}

func NewUserService(users profileStore, ratings ratingProfileStore, watchlist watchlistCounter, queue *WriteQueue) *UserService {
	return &UserService{
		users:     users,
		ratings:   ratings,
		watchlist: watchlist,
		queue:     queue,
		now:       time.Now,
	}
}

// UpdateProfile aplica una actualización parcial. usernameLower se mantiene
// siempre igual a lower(username); la disponibilidad se chequea con un
// lookup previo (no atómico, la carrera se asume). Si cambió el nombre
// visible o la foto, se refrescan los ratings desnormalizados del usuario.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req models.ProfileUpdateRequest) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer el perfil: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	update := bson.M{}

	if req.Username != nil && *req.Username != u.Username {
		lower := strings.ToLower(*req.Username)
		existing, err := s.users.FindByUsernameLower(ctx, lower)
		if err != nil {
			return nil, fmt.Errorf("no se pudo chequear el username: %w", err)
		}
		if existing != nil && existing.UserID != userID {
			return nil, ErrUsernameTaken
		}
		update["username"] = *req.Username
		update["usernameLower"] = lower
		u.Username = *req.Username
		u.UsernameLower = lower
	}
	if req.FirstName != nil {
		update["firstName"] = *req.FirstName
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		update["lastName"] = *req.LastName
		u.LastName = *req.LastName
	}
	if req.Photo != nil {
		update["photo"] = *req.Photo
		u.Photo = *req.Photo
	}
	if req.About != nil {
		update["about"] = *req.About
		u.About = *req.About
	}
	if req.PreferredGenres != nil {
		update["preferredGenres"] = *req.PreferredGenres
		u.PreferredGenres = *req.PreferredGenres
	}
	if req.Links != nil {
		update["links"] = req.Links
		u.Links = req.Links
	}

	if len(update) == 0 {
		return nil, fmt.Errorf("no hay campos para actualizar")
	}

	nowStr := s.now().UTC().Format(time.RFC3339)
	update["updatedAt"] = nowStr
	u.UpdatedAt = nowStr

	if err := s.users.UpdateByID(ctx, userID, update); err != nil {
		return nil, fmt.Errorf("no se pudo actualizar el perfil: %w", err)
	}

	// refresh bulk de nombre/foto desnormalizados en los ratings
	if req.Username != nil || req.Photo != nil || req.FirstName != nil || req.LastName != nil {
		name := DisplayName(u)
		photo := u.Photo
		uid := userID
		s.queue.Enqueue("refresh-ratings-userinfo", func(ctx context.Context) error {
			n, err := s.ratings.UpdateUserInfo(ctx, uid, name, photo)
			if err == nil && n > 0 {
				log.Printf("[user] refrescados %d ratings del usuario %d", n, uid)
			}
			return err
		})
	}

	return u, nil
}

// Stats junta los tres contadores del perfil en paralelo (cada sub-query es
// independiente, solo importa el wall-clock). Cualquier error degrada ese
// contador a cero; el resultado se persiste fuera de banda en el documento
// del usuario.
func (s *UserService) Stats(ctx context.Context, userID int) models.UserStats {
	var (
		wg        sync.WaitGroup
		ratings   int64
		favorites int64
		watch     int64
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		n, err := s.ratings.CountByUser(ctx, userID)
		if err != nil {
			log.Printf("[user] count de ratings falló para %d: %v", userID, err)
			return
		}
		ratings = n
	}()
	go func() {
		defer wg.Done()
		n, err := s.ratings.CountFavorites(ctx, userID)
		if err != nil {
			log.Printf("[user] count de favoritas falló para %d: %v", userID, err)
			return
		}
		favorites = n
	}()
	go func() {
		defer wg.Done()
		n, err := s.watchlist.CountByUser(ctx, userID)
		if err != nil {
			log.Printf("[user] count de watchlist falló para %d: %v", userID, err)
			return
		}
		watch = n
	}()
	wg.Wait()

	stats := models.UserStats{
		RatingsCount:   int(ratings),
		FavoritesCount: int(favorites),
		WatchlistCount: int(watch),
		UpdatedAt:      s.now().UTC().Format(time.RFC3339),
	}

	// contadores desnormalizados: se actualizan fuera de banda, sin
	// transacción con las colecciones fuente
	uid := userID
	snapshot := stats
	s.queue.Enqueue("persist-user-stats", func(ctx context.Context) error {
		return s.users.UpdateByID(ctx, uid, bson.M{"stats": snapshot})
	})

	return stats
}

// DisplayName resuelve el nombre visible del usuario: username, nombre
// completo o email, en ese orden.
func DisplayName(u *models.UserDoc) string {
	if u.Username != "" {
		return u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}
