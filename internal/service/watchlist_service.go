package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

var ErrMovieNotFound = errors.New("película no encontrada en el catálogo")

type watchlistStore interface {
	Upsert(ctx context.Context, e *models.WatchlistEntry) error
	Delete(ctx context.Context, userID, movieID int) error
	FindOne(ctx context.Context, userID, movieID int) (*models.WatchlistEntry, error)
	FindByUserSorted(ctx context.Context, userID int) ([]models.WatchlistEntry, error)
	FindByUser(ctx context.Context, userID int) ([]models.WatchlistEntry, error)
}

type watchlistMovieSource interface {
	GetMovie(ctx context.Context, movieID int) (*models.CachedMovie, error)
}

// WatchlistService: películas por ver, con snapshot desnormalizado del
// título al momento de agregarlo.
type WatchlistService struct {
	watchlist watchlistStore
	movies    watchlistMovieSource
	now       func() time.Time
}

func NewWatchlistService(watchlist watchlistStore, movies watchlistMovieSource) *WatchlistService {
	return &WatchlistService{watchlist: watchlist, movies: movies, now: time.Now}
}

// Add agrega (o re-agrega) la película a la watchlist. La clave compuesta
// determinística hace que dos adds del mismo par sobrescriban en vez de
// duplicar.
func (s *WatchlistService) Add(ctx context.Context, userID int, req models.WatchlistAddRequest) (*models.WatchlistEntry, error) {
	if len([]rune(req.Notes)) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	movie, err := s.movies.GetMovie(ctx, req.MovieID)
	if err != nil {
		return nil, fmt.Errorf("no se pudo resolver la película %d: %w", req.MovieID, err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	entry := &models.WatchlistEntry{
		UserID:    userID,
		MovieID:   req.MovieID,
		Title:     movie.Name,
		AltTitle:  movie.AltName,
		PosterURL: movie.PosterURL,
		Year:      movie.Year,
		Genres:    movie.Genres,
		AvgRating: movie.RatingKP,
		Notes:     req.Notes,
		AddedAt:   s.now().UTC(),
	}
	if err := s.watchlist.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("no se pudo agregar a la watchlist: %w", err)
	}
	return entry, nil
}

// Remove saca la película de la watchlist; sacar algo que no está no es error.
func (s *WatchlistService) Remove(ctx context.Context, userID, movieID int) error {
	if err := s.watchlist.Delete(ctx, userID, movieID); err != nil {
		return fmt.Errorf("no se pudo sacar de la watchlist: %w", err)
	}
	return nil
}

// List devuelve la watchlist del más reciente al más viejo; sin índice
// compuesto cae al sort en memoria con idéntico resultado.
func (s *WatchlistService) List(ctx context.Context, userID int) []models.WatchlistEntry {
	list, err := s.watchlist.FindByUserSorted(ctx, userID)
	if err == nil {
		return list
	}
	log.Printf("[watchlist] query indexada falló para usuario %d, usando fallback: %v", userID, err)

	list, err = s.watchlist.FindByUser(ctx, userID)
	if err != nil {
		log.Printf("[watchlist] fallback también falló para usuario %d: %v", userID, err)
		return nil
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].AddedAt.After(list[j].AddedAt)
	})
	return list
}

// Contains dice si la película está en la watchlist del usuario (lectura,
// degrada a false).
func (s *WatchlistService) Contains(ctx context.Context, userID, movieID int) bool {
	e, err := s.watchlist.FindOne(ctx, userID, movieID)
	if err != nil {
		log.Printf("[watchlist] lookup falló para %d/%d: %v", userID, movieID, err)
		return false
	}
	return e != nil
}
