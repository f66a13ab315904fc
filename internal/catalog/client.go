package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/F1x-hub/MovieListExtension-sub002/internal/models"
)

// Client es el adaptador del catálogo externo de películas. Dos endpoints:
// búsqueda por texto y fetch por id, ambos GET con api key en header.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ====== formato crudo del catálogo ======
// Los nombres de campo tienen cadenas de fallback porque el API externo ha
// cambiado de esquema más de una vez.

type rawMovie struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	AlternativeName string  `json:"alternativeName"`
	EnName          string  `json:"enName"`
	Year            int     `json:"year"`
	Description     string  `json:"description"`
	ShortDescription string `json:"shortDescription"`
	MovieLength     int     `json:"movieLength"`
	AgeRating       int     `json:"ageRating"`
	Type            string  `json:"type"`
	Rating          struct {
		KP   float64 `json:"kp"`
		IMDB float64 `json:"imdb"`
	} `json:"rating"`
	Votes struct {
		KP   int `json:"kp"`
		IMDB int `json:"imdb"`
	} `json:"votes"`
	Poster struct {
		URL        string `json:"url"`
		PreviewURL string `json:"previewUrl"`
	} `json:"poster"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Countries []struct {
		Name string `json:"name"`
	} `json:"countries"`
	Premiere struct {
		World string `json:"world"`
	} `json:"premiere"`
}

type searchResponse struct {
	Docs []rawMovie `json:"docs"`
}

// SearchMovies busca por texto en el catálogo.
func (c *Client) SearchMovies(ctx context.Context, query string, limit int) ([]models.CachedMovie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("catalog: falta CATALOG_API_KEY")
	}
	if limit <= 0 {
		limit = 10
	}

	u := fmt.Sprintf("%s/v1.4/movie/search?query=%s&limit=%d",
		c.baseURL, url.QueryEscape(query), limit)

	var sr searchResponse
	if err := c.getJSON(ctx, u, &sr); err != nil {
		return nil, err
	}

	out := make([]models.CachedMovie, 0, len(sr.Docs))
	for _, d := range sr.Docs {
		out = append(out, normalize(d))
	}
	return out, nil
}

// GetMovieByID trae un título puntual del catálogo.
func (c *Client) GetMovieByID(ctx context.Context, id int) (*models.CachedMovie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("catalog: falta CATALOG_API_KEY")
	}

	var d rawMovie
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1.4/movie/%d", c.baseURL, id), &d); err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, nil
	}
	m := normalize(d)
	return &m, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: request falló: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// normalize convierte la respuesta cruda al shape CachedMovie, tolerando
// drift de esquema con cadenas de fallback por campo.
func normalize(d rawMovie) models.CachedMovie {
	name := d.Name
	if name == "" {
		name = d.AlternativeName
	}
	if name == "" {
		name = d.EnName
	}

	alt := d.AlternativeName
	if alt == "" {
		alt = d.EnName
	}

	desc := d.Description
	if desc == "" {
		desc = d.ShortDescription
	}

	poster := d.Poster.URL
	if poster == "" {
		poster = d.Poster.PreviewURL
	}

	year := d.Year
	if year == 0 && len(d.Premiere.World) >= 4 {
		if y, err := strconv.Atoi(d.Premiere.World[:4]); err == nil {
			year = y
		}
	}

	return models.CachedMovie{
		MovieID:     d.ID,
		Name:        name,
		AltName:     alt,
		PosterURL:   poster,
		Year:        year,
		RatingKP:    d.Rating.KP,
		RatingIMDB:  d.Rating.IMDB,
		VotesKP:     d.Votes.KP,
		VotesIMDB:   d.Votes.IMDB,
		Description: desc,
		Genres:      names(d.Genres),
		Countries:   names(d.Countries),
		MovieLength: d.MovieLength,
		AgeRating:   d.AgeRating,
		Type:        d.Type,
		LastUpdated: time.Now().UTC(),
	}
}

func names(items []struct {
	Name string `json:"name"`
}) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			out = append(out, it.Name)
		}
	}
	return out
}
