package models

// SocialLinks son los enlaces sociales del perfil.
type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
	Website   string `json:"website,omitempty" bson:"website,omitempty"`
}

// UserStats son contadores desnormalizados que se refrescan fuera de banda
// (no transaccionales, pueden quedar desfasados un rato).
type UserStats struct {
	RatingsCount   int    `json:"ratingsCount" bson:"ratingsCount"`
	FavoritesCount int    `json:"favoritesCount" bson:"favoritesCount"`
	WatchlistCount int    `json:"watchlistCount" bson:"watchlistCount"`
	UpdatedAt      string `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

type UserDoc struct {
	UserID       int    `json:"userId" bson:"userId"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"passwordHash"`
	Role         string `json:"role" bson:"role"`

	FirstName string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Username  string `json:"username,omitempty" bson:"username,omitempty"`
	// UsernameLower siempre es lower(Username); índice para búsqueda
	// case-insensitive y chequeo de disponibilidad.
	UsernameLower string `json:"-" bson:"usernameLower,omitempty"`
	Photo         string `json:"photo,omitempty" bson:"photo,omitempty"`
	About         string `json:"about,omitempty" bson:"about,omitempty"`

	PreferredGenres []string     `json:"preferredGenres,omitempty" bson:"preferredGenres,omitempty"`
	Links           *SocialLinks `json:"links,omitempty" bson:"links,omitempty"`
	Stats           *UserStats   `json:"stats,omitempty" bson:"stats,omitempty"`

	CreatedAt string `json:"createdAt" bson:"createdAt"`
	UpdatedAt string `json:"updatedAt" bson:"updatedAt"`
}

// Payload de actualización parcial de perfil.
type ProfileUpdateRequest struct {
	FirstName       *string      `json:"firstName,omitempty"`
	LastName        *string      `json:"lastName,omitempty"`
	Username        *string      `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Photo           *string      `json:"photo,omitempty"`
	About           *string      `json:"about,omitempty" validate:"omitempty,max=1000"`
	PreferredGenres *[]string    `json:"preferredGenres,omitempty"`
	Links           *SocialLinks `json:"links,omitempty"`
}
