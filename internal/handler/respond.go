package handler

import (
	"errors"
	"net/http"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-playground/validator/v10"
)

// validate se comparte entre handlers para los payloads con tags validate.
var validate = validator.New()

// writeServiceError mapea los errores sentinela de los servicios a códigos
// HTTP; todo lo demás es 500.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrCommentTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrRatingNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrMovieNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrFavoritesLimit),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrNotRated):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
