package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/cache"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

// fakeCacheRepo implementa el tier remoto en memoria para los tests.
type fakeCacheRepo struct {
	mu      sync.Mutex
	docs    map[int]models.CachedMovie
	failAll bool
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{docs: make(map[int]models.CachedMovie)}
}

var errRepoDown = context.DeadlineExceeded

func (f *fakeCacheRepo) FindByID(_ context.Context, movieID int) (*models.CachedMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errRepoDown
	}
	if m, ok := f.docs[movieID]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeCacheRepo) FindByIDs(_ context.Context, ids []int) ([]models.CachedMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errRepoDown
	}
	var out []models.CachedMovie
	for _, id := range ids {
		if m, ok := f.docs[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCacheRepo) Upsert(_ context.Context, m *models.CachedMovie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRepoDown
	}
	f.docs[m.MovieID] = *m
	return nil
}

func (f *fakeCacheRepo) DeleteByID(_ context.Context, movieID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, movieID)
	return nil
}

func (f *fakeCacheRepo) DeleteByIDs(_ context.Context, ids []int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := f.docs[id]; ok {
			delete(f.docs, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCacheRepo) FindExpiredIDs(_ context.Context, before time.Time, limit int64) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int
	for id, m := range f.docs {
		if !m.LastUpdated.After(before) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeCacheRepo) AllIDs(_ context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (f *fakeCacheRepo) Candidates(_ context.Context, limit int64) ([]models.CachedMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CachedMovie
	for _, m := range f.docs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VotesKP > out[j].VotesKP })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCacheRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

func (f *fakeCacheRepo) CountExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.docs {
		if !m.LastUpdated.After(before) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCacheRepo) CountRated(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.docs {
		if m.HasRatings {
			n++
		}
	}
	return n, nil
}

func (f *fakeCacheRepo) put(m models.CachedMovie) {
	f.mu.Lock()
	f.docs[m.MovieID] = m
	f.mu.Unlock()
}

func (f *fakeCacheRepo) has(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}

func newCacheServiceForTest(t *testing.T) (*MovieCacheService, *cache.Memory, *fakeCacheRepo, *WriteQueue) {
	t.Helper()
	local := cache.NewMemory()
	remote := newFakeCacheRepo()
	queue := NewWriteQueue(16)
	svc := NewMovieCacheService(local, remote, queue)
	return svc, local, remote, queue
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestGetCachedMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("hit local se devuelve sin tocar el remoto", func(t *testing.T) {
		svc, local, remote, queue := newCacheServiceForTest(t)
		defer queue.Close()
		svc.now = func() time.Time { return testNow }

		m := models.CachedMovie{MovieID: 301, Name: "The Matrix", LastUpdated: testNow}
		if err := local.SetJSON(ctx, "moviecache:301", &m, time.Hour); err != nil {
			t.Fatal(err)
		}
		remote.failAll = true // si el servicio llega al remoto, explota

		got := svc.GetCachedMovie(ctx, 301)
		if got == nil || got.Name != "The Matrix" {
			t.Fatalf("got %+v, want hit local", got)
		}
	})

	t.Run("hit remoto fresco hace backfill del tier local", func(t *testing.T) {
		svc, local, remote, queue := newCacheServiceForTest(t)
		defer queue.Close()
		svc.now = func() time.Time { return testNow }

		remote.put(models.CachedMovie{MovieID: 302, Name: "Dune", LastUpdated: testNow.Add(-time.Hour)})

		got := svc.GetCachedMovie(ctx, 302)
		if got == nil || got.Name != "Dune" {
			t.Fatalf("got %+v, want hit remoto", got)
		}

		var backfilled models.CachedMovie
		ok, err := local.GetJSON(ctx, "moviecache:302", &backfilled)
		if err != nil || !ok {
			t.Fatalf("esperaba backfill local (ok=%v err=%v)", ok, err)
		}
	})

	t.Run("entrada remota vencida se borra y cuenta como miss", func(t *testing.T) {
		svc, _, remote, queue := newCacheServiceForTest(t)
		defer queue.Close()
		svc.now = func() time.Time { return testNow }

		remote.put(models.CachedMovie{MovieID: 303, Name: "Old", LastUpdated: testNow.Add(-25 * time.Hour)})

		if got := svc.GetCachedMovie(ctx, 303); got != nil {
			t.Fatalf("got %+v, want miss por expiración", got)
		}
		if remote.has(303) {
			t.Fatal("la entrada vencida debió borrarse del remoto")
		}
	})

	t.Run("entrada con edad exactamente TTL ya está vencida", func(t *testing.T) {
		svc, _, remote, queue := newCacheServiceForTest(t)
		defer queue.Close()
		svc.now = func() time.Time { return testNow }

		remote.put(models.CachedMovie{MovieID: 304, LastUpdated: testNow.Add(-cacheTTL)})

		if got := svc.GetCachedMovie(ctx, 304); got != nil {
			t.Fatalf("got %+v, want miss (edad == TTL)", got)
		}
	})

	t.Run("error de infraestructura degrada a miss", func(t *testing.T) {
		svc, _, remote, queue := newCacheServiceForTest(t)
		defer queue.Close()
		remote.failAll = true

		if got := svc.GetCachedMovie(ctx, 305); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})
}

func TestCacheMovieWriteThrough(t *testing.T) {
	ctx := context.Background()
	svc, local, remote, queue := newCacheServiceForTest(t)
	svc.now = func() time.Time { return testNow }

	svc.CacheMovie(ctx, models.CachedMovie{MovieID: 310, Name: "Arrival"}, true)

	// el tier local se escribe antes de retornar
	var m models.CachedMovie
	ok, err := local.GetJSON(ctx, "moviecache:310", &m)
	if err != nil || !ok {
		t.Fatalf("esperaba write local inmediato (ok=%v err=%v)", ok, err)
	}
	if !m.HasRatings {
		t.Fatal("hasRatings debió quedar en true")
	}
	if !m.LastUpdated.Equal(testNow) {
		t.Fatalf("lastUpdated = %v, want %v", m.LastUpdated, testNow)
	}

	// el remoto va por la cola; Close drena
	queue.Close()
	if !remote.has(310) {
		t.Fatal("esperaba upsert remoto tras drenar la cola")
	}
}

func TestGetBatchCachedMovies(t *testing.T) {
	ctx := context.Background()
	svc, local, remote, queue := newCacheServiceForTest(t)
	svc.now = func() time.Time { return testNow }

	// 1 en local, 2 frescas en remoto, 1 vencida, 1 inexistente
	fresh := testNow.Add(-time.Hour)
	if err := local.SetJSON(ctx, "moviecache:1", &models.CachedMovie{MovieID: 1, Name: "local"}, time.Hour); err != nil {
		t.Fatal(err)
	}
	remote.put(models.CachedMovie{MovieID: 2, Name: "remota-a", LastUpdated: fresh})
	remote.put(models.CachedMovie{MovieID: 3, Name: "remota-b", LastUpdated: fresh})
	remote.put(models.CachedMovie{MovieID: 4, Name: "vencida", LastUpdated: testNow.Add(-48 * time.Hour)})

	got := svc.GetBatchCachedMovies(ctx, []int{1, 2, 3, 4, 5})

	if len(got) != 3 {
		t.Fatalf("got %d entradas, want 3 (%v)", len(got), got)
	}
	for _, id := range []int{1, 2, 3} {
		if _, ok := got[id]; !ok {
			t.Fatalf("falta el id %d en el resultado", id)
		}
	}
	if _, ok := got[4]; ok {
		t.Fatal("la entrada vencida no debió entrar al resultado")
	}

	// el delete de la vencida corre por la cola
	queue.Close()
	if remote.has(4) {
		t.Fatal("la entrada vencida debió borrarse del remoto en segundo plano")
	}
}

func TestCleanupExpiredCache(t *testing.T) {
	ctx := context.Background()
	svc, local, remote, queue := newCacheServiceForTest(t)
	defer queue.Close()
	svc.now = func() time.Time { return testNow }

	// más de una página de vencidas, más algunas frescas
	for i := 1; i <= cleanupPageSize+20; i++ {
		remote.put(models.CachedMovie{MovieID: i, LastUpdated: testNow.Add(-30 * time.Hour)})
		_ = local.SetJSON(ctx, localKey(i), &models.CachedMovie{MovieID: i}, time.Hour)
	}
	remote.put(models.CachedMovie{MovieID: 9001, LastUpdated: testNow})
	remote.put(models.CachedMovie{MovieID: 9002, LastUpdated: testNow.Add(-time.Hour)})

	removed, err := svc.CleanupExpiredCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != cleanupPageSize+20 {
		t.Fatalf("removed = %d, want %d", removed, cleanupPageSize+20)
	}
	if !remote.has(9001) || !remote.has(9002) {
		t.Fatal("las entradas frescas no debían tocarse")
	}
	if local.Len() != 0 {
		t.Fatalf("el tier local debió vaciarse, quedan %d", local.Len())
	}

	// idempotente: segunda pasada sin escrituras en el medio no borra nada
	removed, err = svc.CleanupExpiredCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Fatalf("segunda pasada removed = %d, want 0", removed)
	}
}

func TestCleanupUnratedMovies(t *testing.T) {
	ctx := context.Background()
	svc, _, remote, queue := newCacheServiceForTest(t)
	defer queue.Close()
	svc.now = func() time.Time { return testNow }

	for i := 1; i <= 10; i++ {
		remote.put(models.CachedMovie{MovieID: i, LastUpdated: testNow})
	}

	removed, err := svc.CleanupUnratedMovies(ctx, []int{2, 4, 6})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 7 {
		t.Fatalf("removed = %d, want 7", removed)
	}
	for _, id := range []int{2, 4, 6} {
		if !remote.has(id) {
			t.Fatalf("la película calificada %d no debió borrarse", id)
		}
	}
}

func TestSearchCachedMovies(t *testing.T) {
	ctx := context.Background()
	svc, _, remote, queue := newCacheServiceForTest(t)
	defer queue.Close()
	svc.now = func() time.Time { return testNow }

	remote.put(models.CachedMovie{MovieID: 1, Name: "Matrix", VotesKP: 100, LastUpdated: testNow})
	remote.put(models.CachedMovie{MovieID: 2, Name: "Matrix Revolutions", VotesKP: 900, LastUpdated: testNow})
	remote.put(models.CachedMovie{MovieID: 3, Name: "Inception", VotesKP: 5000, LastUpdated: testNow})

	got := svc.SearchCachedMovies(ctx, "matrix", 10)
	if len(got) != 2 {
		t.Fatalf("got %d resultados, want 2", len(got))
	}
	if got[0].MovieID != 1 {
		t.Fatalf("primer resultado = %d, want 1 (match exacto)", got[0].MovieID)
	}

	if got := svc.SearchCachedMovies(ctx, "nada", 10); len(got) != 0 {
		t.Fatalf("got %d resultados, want 0", len(got))
	}
}

func TestCacheStats(t *testing.T) {
	ctx := context.Background()
	svc, _, remote, queue := newCacheServiceForTest(t)
	defer queue.Close()
	svc.now = func() time.Time { return testNow }

	remote.put(models.CachedMovie{MovieID: 1, LastUpdated: testNow, HasRatings: true})
	remote.put(models.CachedMovie{MovieID: 2, LastUpdated: testNow.Add(-30 * time.Hour)})
	remote.put(models.CachedMovie{MovieID: 3, LastUpdated: testNow})

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.RemoteEntries != 3 || stats.ExpiredEntries != 1 || stats.RatedEntries != 1 {
		t.Fatalf("stats = %+v, want 3/1/1", stats)
	}
}

func TestChunkInts(t *testing.T) {
	if got := chunkInts(nil, 10); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
	chunks := chunkInts([]int{1, 2, 3, 4, 5}, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 {
		t.Fatalf("got %v, want [[1 2] [3 4] [5]]", chunks)
	}
}
