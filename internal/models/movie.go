package models

import "time"

// CachedMovie es el documento de la colección movie_cache: metadata del
// catálogo externo para un título, con reloj de frescura lastUpdated.
type CachedMovie struct {
	MovieID     int      `json:"movieId" bson:"movieId"`
	Name        string   `json:"name" bson:"name"`
	AltName     string   `json:"altName,omitempty" bson:"altName,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty" bson:"posterUrl,omitempty"`
	Year        int      `json:"year,omitempty" bson:"year,omitempty"`
	RatingKP    float64  `json:"ratingKp" bson:"ratingKp"`
	RatingIMDB  float64  `json:"ratingImdb" bson:"ratingImdb"`
	VotesKP     int      `json:"votesKp" bson:"votesKp"`
	VotesIMDB   int      `json:"votesImdb" bson:"votesImdb"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Genres      []string `json:"genres,omitempty" bson:"genres,omitempty"`
	Countries   []string `json:"countries,omitempty" bson:"countries,omitempty"`
	// duración en minutos
	MovieLength int    `json:"movieLength,omitempty" bson:"movieLength,omitempty"`
	AgeRating   int    `json:"ageRating,omitempty" bson:"ageRating,omitempty"`
	Type        string `json:"type,omitempty" bson:"type,omitempty"`
	// HasRatings indica si algún usuario ya calificó el título. Se guarda como
	// dato pero no condiciona el cacheo: se cachea todo lo consultado.
	HasRatings  bool      `json:"hasRatings" bson:"hasRatings"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

// CacheStats resume el uso del caché de metadata (para el panel admin).
type CacheStats struct {
	RemoteEntries  int64 `json:"remoteEntries"`
	ExpiredEntries int64 `json:"expiredEntries"`
	RatedEntries   int64 `json:"ratedEntries"`
}
