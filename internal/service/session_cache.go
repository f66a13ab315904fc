package service

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

// sessionAvgCache memoiza los promedios batch por lo que dure el proceso.
// La key es la lista de ids ordenada y unida por coma: match exacto, sin
// más normalización que sort+join.
type sessionAvgCache struct {
	mu      sync.RWMutex
	entries map[string]map[int]models.MovieRatingSummary
}

func newSessionAvgCache() *sessionAvgCache {
	return &sessionAvgCache{entries: make(map[string]map[int]models.MovieRatingSummary)}
}

func batchKey(movieIDs []int) string {
	ids := make([]int, len(movieIDs))
	copy(ids, movieIDs)
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func (c *sessionAvgCache) get(key string) (map[int]models.MovieRatingSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *sessionAvgCache) set(key string, v map[int]models.MovieRatingSummary) {
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
}

// invalidate vacía el memo; se llama cuando entra o cambia un rating.
func (c *sessionAvgCache) invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]map[int]models.MovieRatingSummary)
	c.mu.Unlock()
}
