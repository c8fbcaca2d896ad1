package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"communication/docs"
	"communication/internal/cache"
	"communication/internal/config"
	"communication/internal/db"
	"communication/internal/handler"
	"communication/internal/logging"
	"communication/internal/metrics"
	"communication/internal/repository"
	"communication/internal/router"
	"communication/internal/service"
)

var log = logrus.WithField("logger", "main")

// @title Communication API
// @version 1.0
// @description User directory and file storage API backed by MongoDB.
// @host localhost:8000
// @BasePath /
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var secrets db.PasswordSource
	if cfg.MongoPasswordSecretARN != "" {
		sc, err := db.NewSecretsClient(cfg.AWSRegion)
		if err != nil {
			log.WithError(err).Fatal("secrets manager init")
		}
		secrets = sc
	}
	mongoOpts, err := db.MongoOptionsFromConfig(cfg, secrets)
	if err != nil {
		log.WithError(err).Fatal("mongo options")
	}
	client, database, err := db.NewMongo(ctx, mongoOpts)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect")
		}
	}()

	if err := repository.EnsureUserIndexes(ctx, database); err != nil {
		log.WithError(err).Fatal("ensure indexes")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	fileRepo, fileCheck, err := newFileRepository(ctx, cfg, database)
	if err != nil {
		log.WithError(err).Fatal("file backend init")
	}

	userRepo := repository.NewUserRepository(database)

	userService := service.NewUserService(userRepo, cacheClient, cfg.BcryptCost)
	authService := service.NewAuthService(userRepo)
	fileService := service.NewFileService(fileRepo)

	checks := map[string]handler.HealthCheck{
		"mongo": mongoCheck(client),
		"files": fileCheck,
	}
	if cacheClient != nil {
		checks["redis"] = cacheClient.Ping
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, metrics.New(), router.Handlers{
		Health: handler.NewHealthHandler(checks),
		User:   handler.NewUserHandler(userService),
		Auth:   handler.NewAuthHandler(authService),
		File:   handler.NewFileHandler(fileService),
	})

	docs.SwaggerInfo.Host = swaggerHost(cfg)
	log.Infof("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	go func() {
		addr := ":" + cfg.ServerPort
		log.WithField("addr", addr).WithField("file_backend", cfg.FileBackend).Info("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}

// newFileRepository builds the configured file backend and a health check for it.
func newFileRepository(ctx context.Context, cfg *config.Config, database *mongo.Database) (repository.FileRepository, handler.HealthCheck, error) {
	if cfg.FileBackend == config.FileBackendMinIO {
		mc, err := repository.NewMinIOClient(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewMinIOFileRepository(ctx, mc, cfg.MinIO.Bucket)
		if err != nil {
			return nil, nil, err
		}
		check := func(ctx context.Context) error {
			_, err := mc.BucketExists(ctx, cfg.MinIO.Bucket)
			return err
		}
		return repo, check, nil
	}

	repo, err := repository.NewGridFSFileRepository(database)
	if err != nil {
		return nil, nil, err
	}
	return repo, mongoCheck(database.Client()), nil
}

func mongoCheck(client *mongo.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// swaggerHost is the host:port advertised in the API docs, without scheme.
func swaggerHost(cfg *config.Config) string {
	if cfg.SwaggerHost == "" {
		return "localhost:" + cfg.ServerPort
	}
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	return strings.TrimSuffix(host, "/")
}
