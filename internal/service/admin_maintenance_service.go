package service

import (
	"context"
	"log"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

type cacheMaintainer interface {
	CleanupExpiredCache(ctx context.Context) (int, error)
	CleanupUnratedMovies(ctx context.Context, ratedIDs []int) (int, error)
	Stats(ctx context.Context) (*models.CacheStats, error)
}

type ratedIDLister interface {
	DistinctMovieIDs(ctx context.Context) ([]int, error)
}

// AdminMaintenanceService orquesta el mantenimiento del caché de metadata
// detrás de las rutas admin.
type AdminMaintenanceService struct {
	cache   cacheMaintainer
	ratings ratedIDLister
}

func NewAdminMaintenanceService(cache cacheMaintainer, ratings ratedIDLister) *AdminMaintenanceService {
	return &AdminMaintenanceService{cache: cache, ratings: ratings}
}

// CacheSummary devuelve el estado del caché (entradas, vencidas, calificadas).
func (s *AdminMaintenanceService) CacheSummary(ctx context.Context) (*models.CacheStats, error) {
	return s.cache.Stats(ctx)
}

// CleanupExpired corre el sweep de expiración. Idempotente: correrlo dos
// veces seguidas sin escrituras en el medio borra solo la primera vez.
func (s *AdminMaintenanceService) CleanupExpired(ctx context.Context) (int, error) {
	removed, err := s.cache.CleanupExpiredCache(ctx)
	if err != nil {
		return removed, err
	}
	log.Printf("[admin-maint] sweep de expiración: %d entradas borradas", removed)
	return removed, nil
}

// CleanupUnrated borra del caché los títulos que nadie calificó, para
// acotar el crecimiento del storage.
func (s *AdminMaintenanceService) CleanupUnrated(ctx context.Context) (int, error) {
	ratedIDs, err := s.ratings.DistinctMovieIDs(ctx)
	if err != nil {
		return 0, err
	}
	removed, err := s.cache.CleanupUnratedMovies(ctx, ratedIDs)
	if err != nil {
		return removed, err
	}
	log.Printf("[admin-maint] cleanup de no calificadas: %d entradas borradas (quedan %d calificadas)", removed, len(ratedIDs))
	return removed, nil
}
