package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/cache"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

const (
	// ventana de frescura del caché de metadata
	cacheTTL = 24 * time.Hour
	// tope de ids por operador $in del tier remoto
	batchChunkSize = 10
	// tamaño de página del sweep de expiración
	cleanupPageSize = 100
	// tope de operaciones por escritura batch
	maxBulkWrite = 500
	// cuántos candidatos se traen por cada resultado pedido en búsqueda
	searchCandidateFactor = 3

	localKeyPrefix = "moviecache:"
)

// movieCacheStore es el tier remoto visto desde el servicio.
type movieCacheStore interface {
	FindByID(ctx context.Context, movieID int) (*models.CachedMovie, error)
	FindByIDs(ctx context.Context, ids []int) ([]models.CachedMovie, error)
	Upsert(ctx context.Context, m *models.CachedMovie) error
	DeleteByID(ctx context.Context, movieID int) error
	DeleteByIDs(ctx context.Context, ids []int) (int64, error)
	FindExpiredIDs(ctx context.Context, before time.Time, limit int64) ([]int, error)
	AllIDs(ctx context.Context) ([]int, error)
	Candidates(ctx context.Context, limit int64) ([]models.CachedMovie, error)
	Count(ctx context.Context) (int64, error)
	CountExpired(ctx context.Context, before time.Time) (int64, error)
	CountRated(ctx context.Context) (int64, error)
}

// MovieCacheService orquesta los dos tiers del caché de metadata: el tier
// rápido (cache.Store) se confía sin re-chequear frescura, el remoto es
// autoritativo con TTL. Las lecturas degradan a ausente ante cualquier error
// (miss y caché roto son la misma señal para el caller); las operaciones de
// mantenimiento sí propagan.
type MovieCacheService struct {
	local  cache.Store
	remote movieCacheStore
	queue  *WriteQueue
	// inyectable en tests
	now func() time.Time
}

func NewMovieCacheService(local cache.Store, remote movieCacheStore, queue *WriteQueue) *MovieCacheService {
	return &MovieCacheService{
		local:  local,
		remote: remote,
		queue:  queue,
		now:    time.Now,
	}
}

func localKey(movieID int) string {
	return fmt.Sprintf("%s%d", localKeyPrefix, movieID)
}

// IsStale: una entrada está vencida cuando now - lastUpdated >= TTL.
func (s *MovieCacheService) IsStale(m *models.CachedMovie) bool {
	return s.now().Sub(m.LastUpdated) >= cacheTTL
}

// GetCachedMovie resuelve un título desde el caché. Hit local se devuelve
// directo; miss local consulta el remoto: fresco → backfill local y listo,
// vencido → se borra el documento remoto y se reporta ausente.
func (s *MovieCacheService) GetCachedMovie(ctx context.Context, movieID int) *models.CachedMovie {
	m, err := s.lookup(ctx, movieID)
	if err != nil {
		log.Printf("[movie-cache] lookup de %d falló: %v", movieID, err)
		return nil
	}
	return m
}

func (s *MovieCacheService) lookup(ctx context.Context, movieID int) (*models.CachedMovie, error) {
	var m models.CachedMovie
	ok, err := s.local.GetJSON(ctx, localKey(movieID), &m)
	if err != nil {
		return nil, fmt.Errorf("tier local: %w", err)
	}
	if ok {
		return &m, nil
	}

	remote, err := s.remote.FindByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("tier remoto: %w", err)
	}
	if remote == nil {
		return nil, nil
	}
	if s.IsStale(remote) {
		if err := s.remote.DeleteByID(ctx, movieID); err != nil {
			log.Printf("[movie-cache] delete de entrada vencida %d falló: %v", movieID, err)
		}
		return nil, nil
	}

	s.backfillLocal(ctx, remote)
	return remote, nil
}

// GetBatchCachedMovies resuelve varios ids de una: primero particiona entre
// lo que ya está en el tier local y el resto, y el resto va al remoto en
// queries $in de a batchChunkSize. Hits remotos vencidos se borran en
// segundo plano y no entran al mapa. El caller resuelve los ausentes contra
// el catálogo.
func (s *MovieCacheService) GetBatchCachedMovies(ctx context.Context, movieIDs []int) map[int]models.CachedMovie {
	result := make(map[int]models.CachedMovie, len(movieIDs))

	var missing []int
	for _, id := range movieIDs {
		if _, seen := result[id]; seen {
			continue
		}
		var m models.CachedMovie
		ok, err := s.local.GetJSON(ctx, localKey(id), &m)
		if err != nil {
			log.Printf("[movie-cache] tier local falló para %d: %v", id, err)
			ok = false
		}
		if ok {
			result[id] = m
		} else {
			missing = append(missing, id)
		}
	}

	for _, chunk := range chunkInts(missing, batchChunkSize) {
		found, err := s.remote.FindByIDs(ctx, chunk)
		if err != nil {
			log.Printf("[movie-cache] batch remoto falló (%d ids): %v", len(chunk), err)
			continue
		}
		for i := range found {
			m := found[i]
			if s.IsStale(&m) {
				id := m.MovieID
				s.queue.Enqueue("delete-expirado", func(ctx context.Context) error {
					return s.remote.DeleteByID(ctx, id)
				})
				continue
			}
			s.backfillLocal(ctx, &m)
			result[m.MovieID] = m
		}
	}
	return result
}

// CacheMovie es el write-through: el tier local se escribe antes de retornar,
// el remoto va fire-and-forget por la cola. lastUpdated avanza siempre.
func (s *MovieCacheService) CacheMovie(ctx context.Context, m models.CachedMovie, hasRatings bool) {
	m.LastUpdated = s.now().UTC()
	// se cachea todo lo consultado; hasRatings es solo dato
	m.HasRatings = hasRatings

	if err := s.local.SetJSON(ctx, localKey(m.MovieID), &m, cacheTTL); err != nil {
		log.Printf("[movie-cache] write local de %d falló: %v", m.MovieID, err)
	}

	s.queue.Enqueue("upsert-remoto", func(ctx context.Context) error {
		return s.remote.Upsert(ctx, &m)
	})
}

// CleanupExpiredCache barre el tier remoto en páginas de cleanupPageSize y
// borra cada página con una sola escritura. Devuelve cuántas entradas sacó.
func (s *MovieCacheService) CleanupExpiredCache(ctx context.Context) (int, error) {
	before := s.now().UTC().Add(-cacheTTL)
	removed := 0

	for {
		ids, err := s.remote.FindExpiredIDs(ctx, before, cleanupPageSize)
		if err != nil {
			return removed, fmt.Errorf("buscando entradas vencidas: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		n, err := s.remote.DeleteByIDs(ctx, ids)
		if err != nil {
			return removed, fmt.Errorf("borrando página de vencidos: %w", err)
		}
		removed += int(n)
		s.dropLocal(ctx, ids)

		if len(ids) < cleanupPageSize {
			break
		}
	}
	return removed, nil
}

// CleanupUnratedMovies borra del caché todo título cuyo id no está en
// ratedIDs: solo las películas calificadas ameritan retención indefinida.
func (s *MovieCacheService) CleanupUnratedMovies(ctx context.Context, ratedIDs []int) (int, error) {
	rated := make(map[int]struct{}, len(ratedIDs))
	for _, id := range ratedIDs {
		rated[id] = struct{}{}
	}

	all, err := s.remote.AllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listando ids cacheados: %w", err)
	}

	var toDelete []int
	for _, id := range all {
		if _, ok := rated[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}

	removed := 0
	for _, chunk := range chunkInts(toDelete, maxBulkWrite) {
		n, err := s.remote.DeleteByIDs(ctx, chunk)
		if err != nil {
			return removed, fmt.Errorf("borrando no calificadas: %w", err)
		}
		removed += int(n)
		s.dropLocal(ctx, chunk)
	}
	return removed, nil
}

// SearchCachedMovies busca solo dentro del caché: trae hasta 3×limit
// candidatos (no hay índice full-text), filtra por substring sobre nombre
// primario/alterno y rankea por relevancia.
func (s *MovieCacheService) SearchCachedMovies(ctx context.Context, query string, limit int) []models.CachedMovie {
	if limit <= 0 {
		limit = 10
	}
	candidates, err := s.remote.Candidates(ctx, int64(limit*searchCandidateFactor))
	if err != nil {
		log.Printf("[movie-cache] búsqueda en caché falló: %v", err)
		return nil
	}

	q := normalizeQuery(query)
	var matched []models.CachedMovie
	for i := range candidates {
		if matchesQuery(q, &candidates[i]) {
			matched = append(matched, candidates[i])
		}
	}

	rankByRelevance(query, matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// Stats resume el estado del tier remoto para el panel admin.
func (s *MovieCacheService) Stats(ctx context.Context) (*models.CacheStats, error) {
	total, err := s.remote.Count(ctx)
	if err != nil {
		return nil, err
	}
	expired, err := s.remote.CountExpired(ctx, s.now().UTC().Add(-cacheTTL))
	if err != nil {
		return nil, err
	}
	rated, err := s.remote.CountRated(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CacheStats{
		RemoteEntries:  total,
		ExpiredEntries: expired,
		RatedEntries:   rated,
	}, nil
}

func (s *MovieCacheService) backfillLocal(ctx context.Context, m *models.CachedMovie) {
	if err := s.local.SetJSON(ctx, localKey(m.MovieID), m, cacheTTL); err != nil {
		log.Printf("[movie-cache] backfill local de %d falló: %v", m.MovieID, err)
	}
}

func (s *MovieCacheService) dropLocal(ctx context.Context, ids []int) {
	for _, id := range ids {
		if err := s.local.Delete(ctx, localKey(id)); err != nil {
			log.Printf("[movie-cache] delete local de %d falló: %v", id, err)
		}
	}
}

func chunkInts(ids []int, size int) [][]int {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]int
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
