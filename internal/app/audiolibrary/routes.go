// Package audiolibrary собирает HTTP-приложение аудио-библиотеки.
package audiolibrary

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/auth"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/authors"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/catalog"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/comments"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/engagement"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/health"
	"github.com/magabrotheeeer/audio-library/internal/http/handlers/profile"
	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
)

// formFieldsSize запас на текстовые поля и заголовки частей multipart-формы.
const formFieldsSize = 1 << 20

// AuthService учётные записи и проверка access-токенов.
type AuthService interface {
	auth.Service
	middlewarectx.Authenticator
}

// ProfileService профиль текущего пользователя и публичные данные авторов.
type ProfileService interface {
	profile.Service
	authors.Service
}

// Services сервисы, которые обслуживают маршруты.
type Services struct {
	Auth         AuthService
	Profile      ProfileService
	Relationship authors.Follower
	Catalog      catalog.Service
	Engagement   engagement.Service
	Comment      comments.Service
	DB           health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		handlers.CORS(
			handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Range"}),
			handlers.ExposedHeaders([]string{"Content-Range", "Content-Disposition"}),
		),
	)

	authHandler := auth.New(logger, s.Auth)
	profileHandler := profile.New(logger, s.Profile)
	authorsHandler := authors.New(logger, s.Profile, s.Relationship)
	catalogHandler := catalog.New(logger, s.Catalog)
	engagementHandler := engagement.New(logger, s.Engagement)
	commentsHandler := comments.New(logger, s.Comment)

	limiter := middlewarectx.NewLimiter(cfg.RateLimit.UserRPS, cfg.RateLimit.UserBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Самый большой запрос: аудио и обложка в одной форме
		r.Use(middlewarectx.MaxBodySize(cfg.Upload.AudioMaxSize + cfg.Upload.ImageMaxSize + formFieldsSize))

		// Открытые конечные точки учётных записей, ограничены по IP
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow))
			r.Post("/auth/users", authHandler.Register)
			r.Post("/auth/users/activation", authHandler.Activation)
			r.Post("/auth/users/resend_activation", authHandler.ResendActivation)
			r.Post("/auth/users/reset_password", authHandler.ResetPassword)
			r.Post("/auth/users/reset_password_confirm", authHandler.ResetPasswordConfirm)
			r.Post("/auth/jwt/create", authHandler.CreateJWT)
			r.Post("/auth/jwt/refresh", authHandler.RefreshJWT)
			r.Post("/auth/jwt/verify", authHandler.VerifyJWT)
		})

		// Публичные конечные точки, токен необязателен
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Get("/genres", catalogHandler.ListGenres)
			r.Get("/tracks", catalogHandler.ListTracks)
			r.Get("/tracks/{id}", catalogHandler.GetTrack)
			r.Get("/tracks/{id}/comments", commentsHandler.ListByTrack)
			r.Get("/tracks/{id}/stream", engagementHandler.Stream)
			r.Get("/tracks/{id}/download", engagementHandler.Download)

			r.Get("/authors", authorsHandler.List)
			r.Get("/authors/{id}", authorsHandler.Get)
			r.Get("/authors/{id}/followers", authorsHandler.Followers)
			r.Get("/authors/{id}/following", authorsHandler.Following)
			r.Get("/authors/{id}/tracks", catalogHandler.ListAuthorTracks)
			r.Get("/authors/{id}/albums", catalogHandler.ListAuthorAlbums)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Post("/auth/users/set_password", authHandler.SetPassword)
			r.Delete("/me", authHandler.DeleteMe)

			r.Get("/me/profile", profileHandler.Get)
			r.Put("/me/profile", profileHandler.Update)
			r.Get("/me/social-links", profileHandler.ListSocialLinks)
			r.Post("/me/social-links", profileHandler.CreateSocialLink)
			r.Put("/me/social-links/{id}", profileHandler.UpdateSocialLink)
			r.Delete("/me/social-links/{id}", profileHandler.DeleteSocialLink)
			r.Post("/me/newsletter", profileHandler.Subscribe)
			r.Delete("/me/newsletter", profileHandler.Unsubscribe)

			r.Post("/authors/{id}/follow", authorsHandler.Follow)
			r.Delete("/authors/{id}/follow", authorsHandler.Unfollow)

			r.Get("/me/licenses", catalogHandler.ListLicenses)
			r.Post("/me/licenses", catalogHandler.CreateLicense)
			r.Put("/me/licenses/{id}", catalogHandler.UpdateLicense)
			r.Delete("/me/licenses/{id}", catalogHandler.DeleteLicense)

			r.Get("/me/albums", catalogHandler.ListMyAlbums)
			r.Post("/me/albums", catalogHandler.CreateAlbum)
			r.Put("/me/albums/{id}", catalogHandler.UpdateAlbum)
			r.Delete("/me/albums/{id}", catalogHandler.DeleteAlbum)

			r.Get("/me/tracks", catalogHandler.ListMyTracks)
			r.Post("/me/tracks", catalogHandler.CreateTrack)
			r.Put("/me/tracks/{id}", catalogHandler.UpdateTrack)
			r.Delete("/me/tracks/{id}", catalogHandler.DeleteTrack)
			r.Get("/me/tracks/{id}/stream", engagementHandler.StreamOwn)

			r.Get("/me/playlists", catalogHandler.ListPlaylists)
			r.Post("/me/playlists", catalogHandler.CreatePlaylist)
			r.Put("/me/playlists/{id}", catalogHandler.UpdatePlaylist)
			r.Delete("/me/playlists/{id}", catalogHandler.DeletePlaylist)

			r.Post("/tracks/{id}/like", engagementHandler.Like)
			r.Delete("/tracks/{id}/like", engagementHandler.Unlike)
			r.Get("/me/recently-played", engagementHandler.RecentlyPlayed)

			r.Get("/me/comments", commentsHandler.ListMine)
			r.Post("/me/comments", commentsHandler.Create)
			r.Put("/me/comments/{id}", commentsHandler.Update)
			r.Delete("/me/comments/{id}", commentsHandler.Delete)
		})
	})

	r.Handle("/health", health.New(logger, s.DB))
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
