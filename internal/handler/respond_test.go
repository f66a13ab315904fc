package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"rating inválido", service.ErrInvalidRating, http.StatusBadRequest},
		{"comentario largo", service.ErrCommentTooLong, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"rating no encontrado", service.ErrRatingNotFound, http.StatusNotFound},
		{"usuario no encontrado", service.ErrUserNotFound, http.StatusNotFound},
		{"película no encontrada", service.ErrMovieNotFound, http.StatusNotFound},
		{"tope de favoritas", service.ErrFavoritesLimit, http.StatusConflict},
		{"username ocupado", service.ErrUsernameTaken, http.StatusConflict},
		{"no calificada", service.ErrNotRated, http.StatusConflict},
		{"error genérico", errors.New("boom"), http.StatusInternalServerError},
		{"sentinela envuelto", fmt.Errorf("contexto: %w", service.ErrNotRated), http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"1,2,3", []int{1, 2, 3}},
		{" 1 , 2 ", []int{1, 2}},
		{"1,x,3", []int{1, 3}},
		{"0,-5", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := parseIDList(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("parseIDList(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("parseIDList(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}
