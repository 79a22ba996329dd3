package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lucasbessegato/TrokaiBackend/internal/config"
	"github.com/lucasbessegato/TrokaiBackend/internal/es"
	"github.com/lucasbessegato/TrokaiBackend/internal/events"
	"github.com/lucasbessegato/TrokaiBackend/internal/handlers"
	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/media"
	loggingmw "github.com/lucasbessegato/TrokaiBackend/internal/middleware/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/notify"
	"github.com/lucasbessegato/TrokaiBackend/internal/proposal"
	"github.com/lucasbessegato/TrokaiBackend/internal/service/token"
	httpserver "github.com/lucasbessegato/TrokaiBackend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod := events.NewProducer(configuration.KAFKA_ADDRESS)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Printf("elasticsearch unavailable, search disabled: %v", err)
		esClient = nil
	}

	mediaStore := media.NewCloudinaryStore(configuration.CLOUDINARY_CLOUD, configuration.CLOUDINARY_PRESET)
	dispatcher := &notify.Dispatcher{Producer: prod}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logging.New(configuration.LOG_LEVEL)))

	deps := httpserver.Deps{
		DB:                  db,
		AuthHandler:         &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		UserHandler:         &handlers.UserHandler{DB: db, Media: mediaStore, Producer: prod},
		CategoryHandler:     &handlers.CategoryHandler{DB: db},
		ProductHandler:      &handlers.ProductHandler{DB: db, Producer: prod, ES: esClient, ESIndex: "products"},
		ProductImageHandler: &handlers.ProductImageHandler{DB: db, Media: mediaStore},
		ProposalHandler:     &handlers.ProposalHandler{Svc: &proposal.Service{DB: db, Notifier: dispatcher}, Producer: prod},
		NotificationHandler: &handlers.NotificationHandler{DB: db},
		RatingHandler:       &handlers.RatingHandler{DB: db, Notifier: dispatcher},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: "products"},
		TokenService:        &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
