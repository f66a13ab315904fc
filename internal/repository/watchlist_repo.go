package repository

import (
	"context"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/db"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WatchlistRepository struct {
	col *mongo.Collection
}

func NewWatchlistRepository() *WatchlistRepository {
	return &WatchlistRepository{col: db.DB().Collection("watchlist")}
}

// Upsert escribe la entrada por su _id determinístico "{userId}_{movieId}":
// dos adds del mismo par sobrescriben, nunca duplican.
func (r *WatchlistRepository) Upsert(ctx context.Context, e *models.WatchlistEntry) error {
	e.ID = models.WatchlistKey(e.UserID, e.MovieID)
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": e.ID},
		e,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *WatchlistRepository) Delete(ctx context.Context, userID, movieID int) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": models.WatchlistKey(userID, movieID)})
	return err
}

func (r *WatchlistRepository) FindOne(ctx context.Context, userID, movieID int) (*models.WatchlistEntry, error) {
	var e models.WatchlistEntry
	err := r.col.FindOne(ctx, bson.M{"_id": models.WatchlistKey(userID, movieID)}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &e, err
}

// FindByUserSorted requiere índice compuesto (userId, addedAt).
func (r *WatchlistRepository) FindByUserSorted(ctx context.Context, userID int) ([]models.WatchlistEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "addedAt", Value: -1}}).
		SetAllowDiskUse(false)
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

// FindByUser es el path degradado sin sort.
func (r *WatchlistRepository) FindByUser(ctx context.Context, userID int) ([]models.WatchlistEntry, error) {
	return r.find(ctx, bson.M{"userId": userID}, nil)
}

func (r *WatchlistRepository) CountByUser(ctx context.Context, userID int) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"userId": userID})
}

func (r *WatchlistRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.WatchlistEntry, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, filter, opts)
	} else {
		cur, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.WatchlistEntry
	for cur.Next(ctx) {
		var e models.WatchlistEntry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}
