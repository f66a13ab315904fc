package service

import (
	"context"
	"fmt"
	"log"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

// catalogClient es el API externo de catálogo visto desde el servicio.
type catalogClient interface {
	SearchMovies(ctx context.Context, query string, limit int) ([]models.CachedMovie, error)
	GetMovieByID(ctx context.Context, id int) (*models.CachedMovie, error)
}

// MovieService implementa el cache-aside completo: caché de dos tiers
// primero, catálogo externo en el miss, write-through al volver.
type MovieService struct {
	cache   *MovieCacheService
	catalog catalogClient
}

func NewMovieService(cache *MovieCacheService, catalog catalogClient) *MovieService {
	return &MovieService{cache: cache, catalog: catalog}
}

// GetMovie resuelve un título: caché → catálogo → write-through.
func (s *MovieService) GetMovie(ctx context.Context, movieID int) (*models.CachedMovie, error) {
	if m := s.cache.GetCachedMovie(ctx, movieID); m != nil {
		return m, nil
	}

	fetched, err := s.catalog.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("no se pudo obtener la película %d del catálogo: %w", movieID, err)
	}
	if fetched == nil {
		return nil, nil
	}

	s.cache.CacheMovie(ctx, *fetched, false)
	return fetched, nil
}

// GetBatch resuelve varios ids; los ausentes del caché se completan uno a
// uno contra el catálogo (y se cachean).
func (s *MovieService) GetBatch(ctx context.Context, movieIDs []int) map[int]models.CachedMovie {
	result := s.cache.GetBatchCachedMovies(ctx, movieIDs)

	for _, id := range movieIDs {
		if _, ok := result[id]; ok {
			continue
		}
		fetched, err := s.catalog.GetMovieByID(ctx, id)
		if err != nil {
			log.Printf("[movie] catálogo falló para %d: %v", id, err)
			continue
		}
		if fetched == nil {
			continue
		}
		s.cache.CacheMovie(ctx, *fetched, false)
		result[id] = *fetched
	}
	return result
}

// Search busca en el catálogo con write-through de cada resultado; si el
// catálogo no responde degrada a buscar solo dentro del caché.
func (s *MovieService) Search(ctx context.Context, query string, limit int) []models.CachedMovie {
	if limit <= 0 {
		limit = 10
	}

	results, err := s.catalog.SearchMovies(ctx, query, limit)
	if err != nil {
		log.Printf("[movie] búsqueda en catálogo falló, usando caché: %v", err)
		return s.cache.SearchCachedMovies(ctx, query, limit)
	}

	for i := range results {
		s.cache.CacheMovie(ctx, results[i], false)
	}

	rankByRelevance(query, results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SearchCached expone la búsqueda solo-caché (el popup la usa para
// sugerencias instantáneas sin gastar cuota del API).
func (s *MovieService) SearchCached(ctx context.Context, query string, limit int) []models.CachedMovie {
	return s.cache.SearchCachedMovies(ctx, query, limit)
}

// MarkRated re-cachea el título con hasRatings=true (write-through al crear
// el primer rating).
func (s *MovieService) MarkRated(ctx context.Context, movieID int) {
	m, err := s.GetMovie(ctx, movieID)
	if err != nil || m == nil {
		log.Printf("[movie] no se pudo marcar %d como calificada: %v", movieID, err)
		return
	}
	s.cache.CacheMovie(ctx, *m, true)
}
