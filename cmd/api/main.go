package main

import (
	"log"
	"net/http"

	_ "github.com/F1x-hub/MovieListExtension-sub002/docs" // swagger docs

	"github.com/F1x-hub/MovieListExtension-sub002/internal/cache"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/catalog"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/config"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/db"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/handler"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/repository"
	"github.com/F1x-hub/MovieListExtension-sub002/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title MovieList Extension API
// @version 1.0
// @description Backend de la extensión: caché de metadata en dos tiers, ratings, favoritas y watchlist
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	// Mongo (tier remoto) y tier rápido local
	db.InitMongo(cfg)

	var localTier cache.Store
	if cfg.UseRedis {
		redisTier, err := cache.NewRedis(cfg)
		if err != nil {
			log.Printf("[main] Redis no disponible, usando tier en memoria: %v", err)
			localTier = cache.NewMemory()
		} else {
			localTier = redisTier
		}
	} else {
		localTier = cache.NewMemory()
	}

	// cola de escrituras fuera de banda (write-through asíncrono)
	queue := service.NewWriteQueue(0)
	defer queue.Close()

	// repos
	userRepo := repository.NewUserRepository()
	movieCacheRepo := repository.NewMovieCacheRepository()
	ratingRepo := repository.NewRatingRepository()
	watchlistRepo := repository.NewWatchlistRepository()

	// catálogo externo
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey)

	// services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	movieCacheSvc := service.NewMovieCacheService(localTier, movieCacheRepo, queue)
	movieSvc := service.NewMovieService(movieCacheSvc, catalogClient)
	ratingSvc := service.NewRatingService(ratingRepo, watchlistRepo, movieSvc)
	favoriteSvc := service.NewFavoriteService(ratingRepo)
	watchlistSvc := service.NewWatchlistService(watchlistRepo, movieSvc)
	userSvc := service.NewUserService(userRepo, ratingRepo, watchlistRepo, queue)
	// servicio de mantenimiento admin
	adminMaintSvc := service.NewAdminMaintenanceService(movieCacheSvc, ratingRepo)

	// handlers
	authH := handler.NewAuthHandler(authSvc, userSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	ratingH := handler.NewRatingHandler(ratingSvc, authSvc)
	favoriteH := handler.NewFavoriteHandler(favoriteSvc)
	watchlistH := handler.NewWatchlistHandler(watchlistSvc)
	adminMaintH := handler.NewAdminMaintenanceHandler(adminMaintSvc, ratingSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", handler.Health)

	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)

	// Películas (públicas)
	r.Get("/movies/search", movieH.Search)
	r.Get("/movies/search-cached", movieH.SearchCached)
	r.Get("/movies/batch", movieH.GetBatch)
	r.Get("/movies/{id}", movieH.GetMovie)
	r.Get("/movies/{id}/ratings", ratingH.ListByMovie)
	r.Get("/movies/{id}/ratings/summary", ratingH.MovieSummary)

	// Ratings (públicas)
	r.Get("/ratings/feed", ratingH.Feed)
	r.Get("/ratings/batch-summary", ratingH.BatchSummary)
	r.Get("/ws/ratings/feed", ratingH.FeedWS)
	r.Get("/users/{id}/rating-stats", ratingH.UserStats)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	authMw := handler.JWTAuth(cfg.JWTSecret)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		// ---- Endpoints /me (USER normal) ----
		r.Route("/me", func(r chi.Router) {
			r.Get("/", authH.Me)
			r.Put("/", authH.UpdateMe)
			r.Get("/stats", authH.MyStats)

			r.Get("/ratings", ratingH.ListMine)
			r.Post("/ratings", ratingH.Upsert)
			r.Delete("/ratings/{movieId}", ratingH.DeleteMine)

			r.Get("/favorites", favoriteH.List)
			r.Post("/favorites/{movieId}/toggle", favoriteH.Toggle)

			r.Get("/watchlist", watchlistH.List)
			r.Post("/watchlist", watchlistH.Add)
			r.Get("/watchlist/{movieId}", watchlistH.Contains)
			r.Delete("/watchlist/{movieId}", watchlistH.Remove)
		})

		// borrar un rating del feed (dueño o admin)
		r.Delete("/ratings/{id}", ratingH.DeleteByID)

		// ---- Endpoints solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(handler.AdminOnly())

			r.Get("/users/{id}", authH.GetUserByID)

			// --- mantenimiento del caché y cascades ---
			handler.MountAdminMaintenanceRoutes(r, adminMaintH)
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
