package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/naruebet/worklog-api/internal/config"
	"github.com/naruebet/worklog-api/internal/es"
	"github.com/naruebet/worklog-api/internal/events"
	"github.com/naruebet/worklog-api/internal/handlers"
	"github.com/naruebet/worklog-api/internal/logging"
	authmw "github.com/naruebet/worklog-api/internal/middleware/auth"
	"github.com/naruebet/worklog-api/internal/models"
	"github.com/naruebet/worklog-api/internal/store"
	"github.com/naruebet/worklog-api/internal/tokens"
	httpserver "github.com/naruebet/worklog-api/internal/transport/http"
	"github.com/naruebet/worklog-api/internal/upload"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	files, err := upload.NewManager(cfg.UPLOAD_DIR, "worklog", logger)
	if err != nil {
		log.Fatalf("upload dir error: %v", err)
	}

	tokenSvc := tokens.New([]byte(cfg.JWT_SECRET))

	var producer *events.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{cfg.KAFKA_ADDRESS}, cfg.EVENT_TOPIC)
	}

	var esClient *elasticsearch.Client
	if cfg.ES_URL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	worklogStore := &store.Owned[models.Worklog, *models.Worklog]{
		DB: db, Files: files, Order: "date DESC, start_time DESC",
	}
	galleryStore := &store.Owned[models.GalleryImage, *models.GalleryImage]{
		DB: db, Files: files, Order: "created_at DESC",
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler(logger)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(logging.RequestMiddleware(logger))

	deps := httpserver.Deps{
		Auth: &handlers.AuthHandler{
			DB:            db,
			Tokens:        tokenSvc,
			Producer:      producer,
			RotateRefresh: cfg.ROTATE_REFRESH,
		},
		Worklog: &handlers.WorklogHandler{
			Store:    worklogStore,
			Files:    files,
			Producer: producer,
			ES:       esClient,
			ESIndex:  cfg.ES_INDEX,
		},
		Gallery: &handlers.GalleryHandler{
			Store:    galleryStore,
			Files:    files,
			Producer: producer,
		},
		Gate: &authmw.Gate{Tokens: tokenSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + cfg.PORT,
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
	logger.Info("server started", "port", cfg.PORT)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
