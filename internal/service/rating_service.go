package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidRating  = errors.New("el rating debe ser un entero entre 1 y 10")
	ErrCommentTooLong = errors.New("el comentario no puede superar los 500 caracteres")
	ErrRatingNotFound = errors.New("rating no encontrado")
	ErrForbidden      = errors.New("no puedes modificar ratings de otro usuario")
)

const (
	minRating        = 1
	maxRating        = 10
	maxCommentLength = 500

	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// ratingStore es la colección de ratings vista desde el servicio.
type ratingStore interface {
	FindOne(ctx context.Context, userID, movieID int) (*models.RatingDoc, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.RatingDoc, error)
	Insert(ctx context.Context, doc *models.RatingDoc) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID int) (int64, error)
	FindByMovie(ctx context.Context, movieID int) ([]models.RatingDoc, error)
	FindByMovieSorted(ctx context.Context, movieID int) ([]models.RatingDoc, error)
	FindByMovieIDs(ctx context.Context, movieIDs []int) ([]models.RatingDoc, error)
	FindByUser(ctx context.Context, userID int) ([]models.RatingDoc, error)
	FindPage(ctx context.Context, limit int64, after *primitive.ObjectID) ([]models.RatingDoc, error)
}

type watchlistRemover interface {
	Delete(ctx context.Context, userID, movieID int) error
}

type ratedMovieMarker interface {
	MarkRated(ctx context.Context, movieID int)
}

// RatingService: CRUD de ratings más la capa de agregación/estadísticas.
// Las mutaciones propagan errores (re-envueltos con mensaje legible); las
// lecturas y agregados degradan a defaults en cero para no bloquear la UI.
type RatingService struct {
	ratings   ratingStore
	watchlist watchlistRemover
	movies    ratedMovieMarker
	memo      *sessionAvgCache
	now       func() time.Time
}

func NewRatingService(ratings ratingStore, watchlist watchlistRemover, movies ratedMovieMarker) *RatingService {
	return &RatingService{
		ratings:   ratings,
		watchlist: watchlist,
		movies:    movies,
		memo:      newSessionAvgCache(),
		now:       time.Now,
	}
}

// ====== mutaciones ======

// AddOrUpdate crea o actualiza el rating (userId, movieId). La validación
// corre antes de cualquier I/O. En el primer rating de una película se
// dispara el write-through de metadata y se saca la película de la
// watchlist del usuario; en updates se preserva createdAt y el estado de
// favorito.
func (s *RatingService) AddOrUpdate(ctx context.Context, userID int, userName, userPhoto string, req models.RatingUpsertRequest) (*models.RatingDoc, error) {
	if req.Rating < minRating || req.Rating > maxRating {
		return nil, ErrInvalidRating
	}
	if len([]rune(req.Comment)) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	prev, err := s.ratings.FindOne(ctx, userID, req.MovieID)
	if err != nil {
		return nil, fmt.Errorf("no se pudo consultar el rating previo: %w", err)
	}

	now := s.now().UTC()

	if prev == nil {
		doc := &models.RatingDoc{
			UserID:    userID,
			UserName:  userName,
			UserPhoto: userPhoto,
			MovieID:   req.MovieID,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.ratings.Insert(ctx, doc); err != nil {
			return nil, fmt.Errorf("no se pudo guardar el rating: %w", err)
		}

		// metadata del título pasa a retención larga
		s.movies.MarkRated(ctx, req.MovieID)

		// ya la vio: fuera de la watchlist
		if err := s.watchlist.Delete(ctx, userID, req.MovieID); err != nil {
			log.Printf("[rating] no se pudo sacar %d de la watchlist de %d: %v", req.MovieID, userID, err)
		}

		s.memo.invalidate()
		return doc, nil
	}

	update := bson.M{
		"rating":    req.Rating,
		"comment":   req.Comment,
		"userName":  userName,
		"userPhoto": userPhoto,
		"updatedAt": now,
	}
	if err := s.ratings.Update(ctx, prev.ID, update); err != nil {
		return nil, fmt.Errorf("no se pudo actualizar el rating: %w", err)
	}

	prev.Rating = req.Rating
	prev.Comment = req.Comment
	prev.UserName = userName
	prev.UserPhoto = userPhoto
	prev.UpdatedAt = now

	s.memo.invalidate()
	return prev, nil
}

// Delete borra el rating propio del usuario para una película.
func (s *RatingService) Delete(ctx context.Context, userID, movieID int) error {
	doc, err := s.ratings.FindOne(ctx, userID, movieID)
	if err != nil {
		return fmt.Errorf("no se pudo consultar el rating: %w", err)
	}
	if doc == nil {
		return ErrRatingNotFound
	}
	if err := s.ratings.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("no se pudo borrar el rating: %w", err)
	}
	s.memo.invalidate()
	return nil
}

// DeleteByID borra un rating puntual del feed; el dueño o un admin.
// El chequeo de autorización corre después de leer el documento.
func (s *RatingService) DeleteByID(ctx context.Context, id primitive.ObjectID, requesterID int, isAdmin bool) error {
	doc, err := s.ratings.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("no se pudo consultar el rating: %w", err)
	}
	if doc == nil {
		return ErrRatingNotFound
	}
	if doc.UserID != requesterID && !isAdmin {
		return ErrForbidden
	}
	if err := s.ratings.Delete(ctx, id); err != nil {
		return fmt.Errorf("no se pudo borrar el rating: %w", err)
	}
	s.memo.invalidate()
	return nil
}

// DeleteAllByUser es el cascade administrativo.
func (s *RatingService) DeleteAllByUser(ctx context.Context, userID int) (int64, error) {
	n, err := s.ratings.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("no se pudieron borrar los ratings del usuario %d: %w", userID, err)
	}
	if n > 0 {
		s.memo.invalidate()
	}
	return n, nil
}

// ====== lecturas ======

// GetByUser lista los ratings del usuario (degrada a vacío).
func (s *RatingService) GetByUser(ctx context.Context, userID int) []models.RatingDoc {
	list, err := s.ratings.FindByUser(ctx, userID)
	if err != nil {
		log.Printf("[rating] listado por usuario %d falló: %v", userID, err)
		return nil
	}
	return list
}

// GetByMovie lista los ratings de una película del más nuevo al más viejo.
// Si el índice compuesto no está, cae a fetch completo + sort en memoria;
// ambos paths producen el mismo resultado.
func (s *RatingService) GetByMovie(ctx context.Context, movieID int) []models.RatingDoc {
	list, err := s.ratings.FindByMovieSorted(ctx, movieID)
	if err == nil {
		return list
	}
	log.Printf("[rating] query indexada falló para película %d, usando fallback: %v", movieID, err)

	list, err = s.ratings.FindByMovie(ctx, movieID)
	if err != nil {
		log.Printf("[rating] fallback también falló para película %d: %v", movieID, err)
		return nil
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// GetMovieAverage reduce todos los ratings de la película a {average, count}
// con el promedio redondeado al décimo (half-up). Sin ratings → {0,0};
// cualquier error también, los agregados nunca bloquean la página.
func (s *RatingService) GetMovieAverage(ctx context.Context, movieID int) models.MovieRatingSummary {
	list, err := s.ratings.FindByMovie(ctx, movieID)
	if err != nil {
		log.Printf("[rating] promedio de película %d falló: %v", movieID, err)
		return models.MovieRatingSummary{}
	}
	return summarize(list)
}

// GetBatchMovieAverages agrega varias películas en una sola query $in,
// agrupando client-side. El tope del operador $in corre por cuenta del
// caller (limitación conocida). El resultado queda memoizado por sesión,
// key = lista de ids ordenada y unida.
func (s *RatingService) GetBatchMovieAverages(ctx context.Context, movieIDs []int) map[int]models.MovieRatingSummary {
	if len(movieIDs) == 0 {
		return map[int]models.MovieRatingSummary{}
	}

	key := batchKey(movieIDs)
	if cached, ok := s.memo.get(key); ok {
		return cached
	}

	list, err := s.ratings.FindByMovieIDs(ctx, movieIDs)
	if err != nil {
		log.Printf("[rating] batch de promedios falló (%d ids): %v", len(movieIDs), err)
		return map[int]models.MovieRatingSummary{}
	}

	grouped := make(map[int][]models.RatingDoc)
	for _, doc := range list {
		grouped[doc.MovieID] = append(grouped[doc.MovieID], doc)
	}

	result := make(map[int]models.MovieRatingSummary, len(grouped))
	for id, docs := range grouped {
		result[id] = summarize(docs)
	}

	s.memo.set(key, result)
	return result
}

// GetUserStats: total, promedio redondeado e histograma 1..10. Degrada a
// estadísticas en cero.
func (s *RatingService) GetUserStats(ctx context.Context, userID int) models.UserRatingStats {
	stats := models.UserRatingStats{Distribution: emptyDistribution()}

	list, err := s.ratings.FindByUser(ctx, userID)
	if err != nil {
		log.Printf("[rating] stats de usuario %d fallaron: %v", userID, err)
		return stats
	}

	sum := 0
	for _, doc := range list {
		stats.Total++
		sum += doc.Rating
		if doc.Rating >= minRating && doc.Rating <= maxRating {
			stats.Distribution[doc.Rating]++
		}
	}
	if stats.Total > 0 {
		stats.Average = roundTenthsHalfUp(float64(sum) / float64(stats.Total))
	}
	return stats
}

// GetAllRatings devuelve una página del feed global en orden
// reverse-chronological. El cursor es el id opaco del último documento de
// la página anterior. hasMore es exacto: se piden limit+1 documentos y el
// sobrante solo decide el flag.
func (s *RatingService) GetAllRatings(ctx context.Context, limit int, cursor string) (models.RatingsPage, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	var after *primitive.ObjectID
	if cursor != "" {
		id, err := primitive.ObjectIDFromHex(cursor)
		if err != nil {
			return models.RatingsPage{}, fmt.Errorf("cursor inválido: %w", err)
		}
		after = &id
	}

	list, err := s.ratings.FindPage(ctx, int64(limit+1), after)
	if err != nil {
		log.Printf("[rating] feed falló: %v", err)
		return models.RatingsPage{Items: []models.RatingDoc{}}, nil
	}

	page := models.RatingsPage{HasMore: len(list) > limit}
	if page.HasMore {
		list = list[:limit]
	}
	page.Items = list
	if len(list) > 0 {
		page.NextCursor = list[len(list)-1].ID.Hex()
	}
	return page, nil
}

// ====== helpers de agregación ======

func summarize(list []models.RatingDoc) models.MovieRatingSummary {
	if len(list) == 0 {
		return models.MovieRatingSummary{}
	}
	sum := 0
	for _, doc := range list {
		sum += doc.Rating
	}
	avg := float64(sum) / float64(len(list))
	return models.MovieRatingSummary{
		Average: roundTenthsHalfUp(avg),
		Count:   len(list),
	}
}

// roundTenthsHalfUp redondea al décimo con half-up (7.45 → 7.5).
func roundTenthsHalfUp(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

func emptyDistribution() map[int]int {
	d := make(map[int]int, maxRating)
	for i := minRating; i <= maxRating; i++ {
		d[i] = 0
	}
	return d
}
