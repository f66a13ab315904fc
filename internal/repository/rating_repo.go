package repository

import (
	"context"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/db"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{col: db.DB().Collection("ratings")}
}

// FindOne busca el rating por clave lógica (userId, movieId).
func (r *RatingRepository) FindOne(ctx context.Context, userID, movieID int) (*models.RatingDoc, error) {
	var doc models.RatingDoc
	err := r.col.FindOne(ctx, bson.M{"userId": userID, "movieId": movieID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &doc, err
}

func (r *RatingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.RatingDoc, error) {
	var doc models.RatingDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &doc, err
}

func (r *RatingRepository) Insert(ctx context.Context, doc *models.RatingDoc) error {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// Update aplica un $set parcial sobre el documento.
func (r *RatingRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *RatingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByUser borra todos los ratings de un usuario (cascade admin).
func (r *RatingRepository) DeleteByUser(ctx context.Context, userID int) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *RatingRepository) FindByMovie(ctx context.Context, movieID int) ([]models.RatingDoc, error) {
	return r.find(ctx, bson.M{"movieId": movieID}, nil)
}

// FindByMovieIDs trae en una sola query los ratings de varias películas.
// El tope del $in lo maneja el caller.
func (r *RatingRepository) FindByMovieIDs(ctx context.Context, movieIDs []int) ([]models.RatingDoc, error) {
	if len(movieIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"movieId": bson.M{"$in": movieIDs}}, nil)
}

// FindByMovieSorted requiere el índice compuesto (movieId, createdAt). Sin
// el índice Mongo puede rechazar el sort y el servicio cae al path degradado.
func (r *RatingRepository) FindByMovieSorted(ctx context.Context, movieID int) ([]models.RatingDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetAllowDiskUse(false)
	return r.find(ctx, bson.M{"movieId": movieID}, opts)
}

// DistinctMovieIDs lista los movieIds que tienen al menos un rating.
func (r *RatingRepository) DistinctMovieIDs(ctx context.Context) ([]int, error) {
	vals, err := r.col.Distinct(ctx, "movieId", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		switch x := v.(type) {
		case int32:
			out = append(out, int(x))
		case int64:
			out = append(out, int(x))
		case float64:
			out = append(out, int(x))
		case int:
			out = append(out, x)
		}
	}
	return out, nil
}

func (r *RatingRepository) FindByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	return r.find(ctx, bson.M{"userId": userID}, nil)
}

func (r *RatingRepository) CountByUser(ctx context.Context, userID int) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"userId": userID})
}

// FindPage devuelve hasta limit documentos del feed global, del más nuevo al
// más viejo. El cursor es el _id del último documento de la página anterior
// (el ObjectID ordena por creación). El sentinel N+1 lo arma el servicio.
func (r *RatingRepository) FindPage(ctx context.Context, limit int64, after *primitive.ObjectID) ([]models.RatingDoc, error) {
	filter := bson.M{}
	if after != nil {
		filter["_id"] = bson.M{"$lt": *after}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, filter, opts)
}

// ====== subset de favoritos ======

func (r *RatingRepository) CountFavorites(ctx context.Context, userID int) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"userId": userID, "isFavorite": true})
}

// FindFavoritesSorted requiere el índice compuesto (userId, isFavorite,
// favoritedAt). Si el índice no está, Mongo puede rechazar el sort; el
// servicio cae al path sin índice.
func (r *RatingRepository) FindFavoritesSorted(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "favoritedAt", Value: -1}}).
		SetAllowDiskUse(false)
	return r.find(ctx, bson.M{"userId": userID, "isFavorite": true}, opts)
}

// FindFavorites es el path degradado: sin sort, se ordena en memoria.
func (r *RatingRepository) FindFavorites(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	return r.find(ctx, bson.M{"userId": userID, "isFavorite": true}, nil)
}

// UpdateUserInfo refresca nombre y foto desnormalizados en todos los ratings
// del usuario (bulk, cuando cambia el perfil).
func (r *RatingRepository) UpdateUserInfo(ctx context.Context, userID int, userName, userPhoto string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"userName": userName, "userPhoto": userPhoto}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *RatingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.RatingDoc, error) {
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

	var out []models.RatingDoc
	for cur.Next(ctx) {
		var doc models.RatingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}
