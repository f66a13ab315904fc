package service

import (
	"sort"
	"strings"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

// rankByRelevance ordena candidatos in-place con cuatro niveles de desempate,
// cada uno consultado solo si el anterior empata:
//  1. match exacto del nombre (case-insensitive)
//  2. el nombre empieza con la query
//  3. el nombre contiene la query
//  4. votos descendente (proxy de popularidad)
// Sort estable para que la paginación sea reproducible.
func rankByRelevance(query string, movies []models.CachedMovie) {
	q := normalizeQuery(query)
	sort.SliceStable(movies, func(i, j int) bool {
		ti, tj := relevanceTier(q, &movies[i]), relevanceTier(q, &movies[j])
		if ti != tj {
			return ti < tj
		}
		return movies[i].VotesKP > movies[j].VotesKP
	})
}

// relevanceTier: 0 exacto, 1 empieza-con, 2 contiene, 3 nada. Se evalúa
// sobre el mejor de nombre primario y alterno.
func relevanceTier(q string, m *models.CachedMovie) int {
	best := nameTier(q, strings.ToLower(m.Name))
	if alt := nameTier(q, strings.ToLower(m.AltName)); alt < best {
		best = alt
	}
	return best
}

func nameTier(q, name string) int {
	if name == "" {
		return 3
	}
	switch {
	case name == q:
		return 0
	case strings.HasPrefix(name, q):
		return 1
	case strings.Contains(name, q):
		return 2
	default:
		return 3
	}
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// matchesQuery filtra por substring en nombre primario o alterno.
func matchesQuery(q string, m *models.CachedMovie) bool {
	return strings.Contains(strings.ToLower(m.Name), q) ||
		strings.Contains(strings.ToLower(m.AltName), q)
}
