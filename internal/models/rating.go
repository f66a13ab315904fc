package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingDoc es el documento de la colección ratings. La clave lógica
// (userId, movieId) es única, garantizada por lookup antes de escribir.
type RatingDoc struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    int                `json:"userId" bson:"userId"`
	UserName  string             `json:"userName,omitempty" bson:"userName,omitempty"`
	UserPhoto string             `json:"userPhoto,omitempty" bson:"userPhoto,omitempty"`
	MovieID   int                `json:"movieId" bson:"movieId"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	// FavoritedAt es no-nulo si y solo si IsFavorite es true.
	IsFavorite  bool       `json:"isFavorite" bson:"isFavorite"`
	FavoritedAt *time.Time `json:"favoritedAt,omitempty" bson:"favoritedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Payload de crear/actualizar rating.
type RatingUpsertRequest struct {
	MovieID int    `json:"movieId" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=10"`
	Comment string `json:"comment" validate:"max=500"`
}

// MovieRatingSummary es el agregado por película: promedio redondeado a un
// decimal y cantidad de ratings.
type MovieRatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// UserRatingStats es el agregado por usuario con histograma 1..10.
type UserRatingStats struct {
	Total        int         `json:"total"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// RatingsPage es una página del feed global (reverse-chronological).
type RatingsPage struct {
	Items      []RatingDoc `json:"items"`
	NextCursor string      `json:"nextCursor,omitempty"`
	HasMore    bool        `json:"hasMore"`
}
