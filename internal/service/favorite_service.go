package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotRated       = errors.New("solo se puede marcar como favorita una película ya calificada")
	ErrFavoritesLimit = errors.New("alcanzaste el límite de 50 favoritas")
)

// tope de favoritas por usuario; el pre-check no es atómico, dos pestañas
// concurrentes pueden pasarse transitoriamente (consistencia eventual)
const maxFavorites = 50

type favoriteStore interface {
	FindOne(ctx context.Context, userID, movieID int) (*models.RatingDoc, error)
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	CountFavorites(ctx context.Context, userID int) (int64, error)
	FindFavoritesSorted(ctx context.Context, userID int) ([]models.RatingDoc, error)
	FindFavorites(ctx context.Context, userID int) ([]models.RatingDoc, error)
}

// FavoriteService: vista de subconjunto con flag sobre la colección de
// ratings. El toggle siempre escribe (sin short-circuit de no-op).
type FavoriteService struct {
	ratings favoriteStore
	now     func() time.Time
}

func NewFavoriteService(ratings favoriteStore) *FavoriteService {
	return &FavoriteService{ratings: ratings, now: time.Now}
}

// Toggle invierte el flag de favorito del rating (userId, movieId).
// favoritedAt queda no-nulo si y solo si isFavorite es true. Dos toggles
// seguidos vuelven al estado observable original.
func (s *FavoriteService) Toggle(ctx context.Context, userID, movieID int) (*models.RatingDoc, error) {
	doc, err := s.ratings.FindOne(ctx, userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("no se pudo consultar el rating: %w", err)
	}
	if doc == nil {
		return nil, ErrNotRated
	}

	newVal := !doc.IsFavorite
	now := s.now().UTC()

	update := bson.M{
		"isFavorite": newVal,
		"updatedAt":  now,
	}
	var favoritedAt *time.Time
	if newVal {
		// pre-check del tope antes de insertar el flag
		count, err := s.ratings.CountFavorites(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("no se pudo contar favoritas: %w", err)
		}
		if count >= maxFavorites {
			return nil, ErrFavoritesLimit
		}
		favoritedAt = &now
		update["favoritedAt"] = now
	} else {
		update["favoritedAt"] = nil
	}

	if err := s.ratings.Update(ctx, doc.ID, update); err != nil {
		return nil, fmt.Errorf("no se pudo actualizar la favorita: %w", err)
	}

	doc.IsFavorite = newVal
	doc.FavoritedAt = favoritedAt
	doc.UpdatedAt = now
	return doc, nil
}

// List devuelve las favoritas del usuario, más recientes primero. Sin el
// índice compuesto cae a fetch completo + sort estable en memoria, con el
// mismo resultado.
func (s *FavoriteService) List(ctx context.Context, userID int) []models.RatingDoc {
	list, err := s.ratings.FindFavoritesSorted(ctx, userID)
	if err == nil {
		return list
	}
	log.Printf("[favorite] query indexada falló para usuario %d, usando fallback: %v", userID, err)

	list, err = s.ratings.FindFavorites(ctx, userID)
	if err != nil {
		log.Printf("[favorite] fallback también falló para usuario %d: %v", userID, err)
		return nil
	}
	sort.SliceStable(list, func(i, j int) bool {
		ti, tj := list[i].FavoritedAt, list[j].FavoritedAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
	return list
}
