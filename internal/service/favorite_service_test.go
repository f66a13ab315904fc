package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeFavoriteRepo reutiliza fakeRatingRepo y agrega la vista de favoritas.
type fakeFavoriteRepo struct {
	fakeRatingRepo
	failSortedFavs bool
}

func (f *fakeFavoriteRepo) CountFavorites(_ context.Context, userID int) (int64, error) {
	var n int64
	for _, d := range f.docs {
		if d.UserID == userID && d.IsFavorite {
			n++
		}
	}
	return n, nil
}

func (f *fakeFavoriteRepo) FindFavorites(_ context.Context, userID int) ([]models.RatingDoc, error) {
	var out []models.RatingDoc
	for _, d := range f.docs {
		if d.UserID == userID && d.IsFavorite {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeFavoriteRepo) FindFavoritesSorted(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	if f.failSortedFavs {
		return nil, errDown
	}
	list, _ := f.FindFavorites(ctx, userID)
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].FavoritedAt != nil && (list[i].FavoritedAt == nil || list[j].FavoritedAt.After(*list[i].FavoritedAt)) {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
	return list, nil
}

func (f *fakeFavoriteRepo) seedRating(userID, movieID, rating int) primitive.ObjectID {
	doc := models.RatingDoc{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		MovieID:   movieID,
		Rating:    rating,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	f.docs = append(f.docs, doc)
	return doc.ID
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("solo películas calificadas pueden ser favoritas", func(t *testing.T) {
		repo := &fakeFavoriteRepo{}
		svc := NewFavoriteService(repo)

		_, err := svc.Toggle(ctx, 1, 999)
		if !errors.Is(err, ErrNotRated) {
			t.Fatalf("got %v, want ErrNotRated", err)
		}
	})

	t.Run("toggle enciende y doble toggle vuelve al estado original", func(t *testing.T) {
		repo := &fakeFavoriteRepo{}
		svc := NewFavoriteService(repo)
		svc.now = func() time.Time { return testNow }
		repo.seedRating(1, 42, 8)

		on, err := svc.Toggle(ctx, 1, 42)
		if err != nil {
			t.Fatal(err)
		}
		if !on.IsFavorite || on.FavoritedAt == nil {
			t.Fatalf("got %+v, want favorito con favoritedAt", on)
		}

		off, err := svc.Toggle(ctx, 1, 42)
		if err != nil {
			t.Fatal(err)
		}
		if off.IsFavorite || off.FavoritedAt != nil {
			t.Fatalf("got %+v, want no-favorito con favoritedAt nulo", off)
		}
		// el rating en sí no se toca
		if off.Rating != 8 {
			t.Fatalf("rating = %d, want 8", off.Rating)
		}
	})

	t.Run("el tope de 50 favoritas corta el toggle-on", func(t *testing.T) {
		repo := &fakeFavoriteRepo{}
		svc := NewFavoriteService(repo)
		svc.now = func() time.Time { return testNow }

		for i := 1; i <= maxFavorites; i++ {
			id := repo.seedRating(1, i, 5)
			_ = repo.Update(ctx, id, bson.M{"isFavorite": true, "favoritedAt": testNow})
		}
		repo.seedRating(1, 51, 5)

		_, err := svc.Toggle(ctx, 1, 51)
		if !errors.Is(err, ErrFavoritesLimit) {
			t.Fatalf("got %v, want ErrFavoritesLimit", err)
		}

		// toggle-off sigue permitido en el tope
		if _, err := svc.Toggle(ctx, 1, 50); err != nil {
			t.Fatalf("toggle-off no debe chequear el tope: %v", err)
		}
	})
}

func TestListFavorites(t *testing.T) {
	ctx := context.Background()
	repo := &fakeFavoriteRepo{}
	svc := NewFavoriteService(repo)

	for i := 1; i <= 3; i++ {
		id := repo.seedRating(1, i, 5)
		at := testNow.Add(time.Duration(i) * time.Minute)
		_ = repo.Update(ctx, id, bson.M{"isFavorite": true, "favoritedAt": at})
	}
	repo.seedRating(1, 4, 7) // calificada pero no favorita
	repo.seedRating(2, 1, 9) // otro usuario

	t.Run("más recientes primero", func(t *testing.T) {
		list := svc.List(ctx, 1)
		if len(list) != 3 {
			t.Fatalf("len = %d, want 3", len(list))
		}
		if list[0].MovieID != 3 || list[2].MovieID != 1 {
			t.Fatalf("orden inesperado: %d..%d", list[0].MovieID, list[2].MovieID)
		}
	})

	t.Run("fallback sin índice produce el mismo orden", func(t *testing.T) {
		indexed := svc.List(ctx, 1)
		repo.failSortedFavs = true
		fallback := svc.List(ctx, 1)
		repo.failSortedFavs = false

		if len(indexed) != len(fallback) {
			t.Fatalf("len %d vs %d", len(indexed), len(fallback))
		}
		for i := range indexed {
			if indexed[i].ID != fallback[i].ID {
				t.Fatalf("posición %d difiere entre paths", i)
			}
		}
	})
}
