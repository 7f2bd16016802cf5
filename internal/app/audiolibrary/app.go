package audiolibrary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/audio-library/internal/cache"
	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/jwt"
	"github.com/magabrotheeeer/audio-library/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/migrations"
	authservice "github.com/magabrotheeeer/audio-library/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/audio-library/internal/services/catalog"
	commentservice "github.com/magabrotheeeer/audio-library/internal/services/comment"
	engagementservice "github.com/magabrotheeeer/audio-library/internal/services/engagement"
	notifyservice "github.com/magabrotheeeer/audio-library/internal/services/notify"
	profileservice "github.com/magabrotheeeer/audio-library/internal/services/profile"
	relationshipservice "github.com/magabrotheeeer/audio-library/internal/services/relationship"
	"github.com/magabrotheeeer/audio-library/internal/storage/files"
	"github.com/magabrotheeeer/audio-library/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер аудио-библиотеки со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилища и брокер, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	fileStorage, err := files.New(ctx, cfg.FileStorage)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailQueues(cfg.TaskRetryDelay))
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	notifier := notifyservice.New(ch, logger)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTTL, cfg.RefreshTTL)

	services := Services{
		Auth:         authservice.NewAuthService(db, cacheRedis, notifier, fileStorage, jwtMaker, cfg, logger),
		Profile:      profileservice.NewProfileService(db, fileStorage, cfg, logger),
		Relationship: relationshipservice.NewRelationshipService(db, logger),
		Catalog:      catalogservice.NewCatalogService(db, cacheRedis, fileStorage, cfg, logger),
		Engagement:   engagementservice.NewEngagementService(db, fileStorage, cfg, logger),
		Comment:      commentservice.NewCommentService(db, cfg, logger),
		DB:           db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services)

	srv := &http.Server{
		Addr:    cfg.AddressHTTP,
		Handler: router,
		// WriteTimeout не задан: стриминг длинных треков не должен обрываться
		ReadTimeout: cfg.TimeoutHTTP,
		IdleTimeout: cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает сервер и останавливает его после отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
