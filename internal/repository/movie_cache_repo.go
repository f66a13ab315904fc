package repository

import (
	"context"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/db"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MovieCacheRepository es el tier remoto (autoritativo) del caché de metadata:
// un documento por título en la colección movie_cache.
type MovieCacheRepository struct {
	col *mongo.Collection
}

func NewMovieCacheRepository() *MovieCacheRepository {
	return &MovieCacheRepository{col: db.DB().Collection("movie_cache")}
}

func (r *MovieCacheRepository) FindByID(ctx context.Context, movieID int) (*models.CachedMovie, error) {
	var m models.CachedMovie
	err := r.col.FindOne(ctx, bson.M{"movieId": movieID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &m, err
}

// FindByIDs trae los documentos cuyo movieId está en ids. El chunking a 10
// ids por query lo hace el servicio, acá va un solo $in.
func (r *MovieCacheRepository) FindByIDs(ctx context.Context, ids []int) ([]models.CachedMovie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"movieId": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CachedMovie
	for cur.Next(ctx) {
		var m models.CachedMovie
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (r *MovieCacheRepository) Upsert(ctx context.Context, m *models.CachedMovie) error {
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"movieId": m.MovieID},
		m,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *MovieCacheRepository) DeleteByID(ctx context.Context, movieID int) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"movieId": movieID})
	return err
}

func (r *MovieCacheRepository) DeleteByIDs(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"movieId": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// FindExpiredIDs devuelve hasta limit movieIds con lastUpdated anterior a
// before (una página del sweep de expiración).
func (r *MovieCacheRepository) FindExpiredIDs(ctx context.Context, before time.Time, limit int64) ([]int, error) {
	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{"movieId": 1})

	cur, err := r.col.Find(ctx, bson.M{"lastUpdated": bson.M{"$lte": before}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []int
	for cur.Next(ctx) {
		var doc struct {
			MovieID int `bson:"movieId"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.MovieID)
	}
	return out, cur.Err()
}

// AllIDs lista todos los movieIds cacheados (scan completo, solo admin).
func (r *MovieCacheRepository) AllIDs(ctx context.Context) ([]int, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"movieId": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []int
	for cur.Next(ctx) {
		var doc struct {
			MovieID int `bson:"movieId"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.MovieID)
	}
	return out, cur.Err()
}

// Candidates trae hasta limit documentos ordenados por votos (proxy de
// popularidad) para el filtrado de búsqueda en memoria.
func (r *MovieCacheRepository) Candidates(ctx context.Context, limit int64) ([]models.CachedMovie, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "votesKp", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CachedMovie
	for cur.Next(ctx) {
		var m models.CachedMovie
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (r *MovieCacheRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *MovieCacheRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"lastUpdated": bson.M{"$lte": before}})
}

func (r *MovieCacheRepository) CountRated(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"hasRatings": true})
}
