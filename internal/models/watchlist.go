package models

import (
	"fmt"
	"time"
)

// WatchlistEntry es el documento de la colección watchlist. El _id es la
// clave compuesta determinística "{userId}_{movieId}": a lo más una entrada
// por par usuario/película, sin paso de lookup previo.
type WatchlistEntry struct {
	ID      string `json:"id" bson:"_id"`
	UserID  int    `json:"userId" bson:"userId"`
	MovieID int    `json:"movieId" bson:"movieId"`
	// snapshot desnormalizado de la película al momento de agregarla
	Title     string   `json:"title" bson:"title"`
	AltTitle  string   `json:"altTitle,omitempty" bson:"altTitle,omitempty"`
	PosterURL string   `json:"posterUrl,omitempty" bson:"posterUrl,omitempty"`
	Year      int      `json:"year,omitempty" bson:"year,omitempty"`
	Genres    []string `json:"genres,omitempty" bson:"genres,omitempty"`
	AvgRating float64  `json:"avgRating,omitempty" bson:"avgRating,omitempty"`
	Notes     string   `json:"notes,omitempty" bson:"notes,omitempty"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

// WatchlistKey arma el _id compuesto.
func WatchlistKey(userID, movieID int) string {
	return fmt.Sprintf("%d_%d", userID, movieID)
}

// Payload para agregar a watchlist.
type WatchlistAddRequest struct {
	MovieID int    `json:"movieId" validate:"required,gt=0"`
	Notes   string `json:"notes" validate:"max=500"`
}
