package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchMovies(t *testing.T) {
	ctx := context.Background()

	t.Run("manda la api key y parsea los docs", func(t *testing.T) {
		var gotKey, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-KEY")
			gotQuery = r.URL.Query().Get("query")
			w.Write([]byte(`{"docs":[
				{"id":301,"name":"Матрица","alternativeName":"The Matrix","year":1999,
				 "rating":{"kp":8.5,"imdb":8.7},"votes":{"kp":500000,"imdb":1700000},
				 "poster":{"url":"https://img/301.jpg"},
				 "genres":[{"name":"фантастика"},{"name":"боевик"}],
				 "countries":[{"name":"США"}]}
			]}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "test-key")
		got, err := c.SearchMovies(ctx, "matrix", 10)
		if err != nil {
			t.Fatal(err)
		}
		if gotKey != "test-key" {
			t.Fatalf("X-API-KEY = %q", gotKey)
		}
		if gotQuery != "matrix" {
			t.Fatalf("query = %q", gotQuery)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		m := got[0]
		if m.MovieID != 301 || m.Name != "Матрица" || m.AltName != "The Matrix" {
			t.Fatalf("got %+v", m)
		}
		if m.RatingKP != 8.5 || m.VotesIMDB != 1700000 {
			t.Fatalf("ratings mal parseados: %+v", m)
		}
		if len(m.Genres) != 2 || m.PosterURL != "https://img/301.jpg" {
			t.Fatalf("got %+v", m)
		}
	})

	t.Run("sin api key no sale a la red", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:0", "")
		if _, err := c.SearchMovies(ctx, "matrix", 10); err == nil {
			t.Fatal("esperaba error por api key faltante")
		}
	})

	t.Run("status no-200 es error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k")
		if _, err := c.SearchMovies(ctx, "matrix", 10); err == nil {
			t.Fatal("esperaba error por status 403")
		}
	})
}

func TestGetMovieByID(t *testing.T) {
	ctx := context.Background()

	t.Run("fallbacks de nombre, descripción, poster y año", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1.4/movie/302" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.Write([]byte(`{"id":302,"enName":"Fallback Title",
				"shortDescription":"corta",
				"poster":{"previewUrl":"https://img/prev.jpg"},
				"premiere":{"world":"2014-11-06T00:00:00.000Z"},
				"rating":{"kp":8.8},"votes":{"kp":900}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k")
		m, err := c.GetMovieByID(ctx, 302)
		if err != nil {
			t.Fatal(err)
		}
		if m == nil {
			t.Fatal("esperaba película")
		}
		if m.Name != "Fallback Title" || m.AltName != "Fallback Title" {
			t.Fatalf("fallback de nombre falló: %+v", m)
		}
		if m.Description != "corta" {
			t.Fatalf("fallback de descripción falló: %q", m.Description)
		}
		if m.PosterURL != "https://img/prev.jpg" {
			t.Fatalf("fallback de poster falló: %q", m.PosterURL)
		}
		if m.Year != 2014 {
			t.Fatalf("año desde premiere = %d, want 2014", m.Year)
		}
	})

	t.Run("404 es ausente, no error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k")
		m, err := c.GetMovieByID(ctx, 999)
		if err != nil {
			t.Fatal(err)
		}
		if m != nil {
			t.Fatalf("got %+v, want nil", m)
		}
	})
}
