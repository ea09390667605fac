package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/echotube/echotube/internal/config"
	"github.com/echotube/echotube/internal/db"
	"github.com/echotube/echotube/internal/events"
	"github.com/echotube/echotube/internal/httpserver"
	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/metrics"
	"github.com/echotube/echotube/internal/middleware"
	"github.com/echotube/echotube/internal/repo"
	"github.com/echotube/echotube/internal/search"
	"github.com/echotube/echotube/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	if cfg.SecretGenerated {
		logger.Warn("JWT_SECRET is not set, using a generated per-process secret; sessions will not survive a restart")
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := repo.New(gormDB)

	esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	if esClient != nil {
		logger.Info("search index enabled", "url", cfg.ESURL)
	}
	searchSvc := &search.Service{ES: esClient, Repo: store}

	producer := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if producer != nil {
		logger.Info("event stream enabled", "topic", cfg.KafkaTopic)
		defer producer.Close()
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	authSvc := &service.AuthService{Repo: store, Secret: cfg.JWTSecret, Metrics: collector, Events: producer}
	accountSvc := &service.AccountService{Repo: store}
	videoSvc := &service.VideoService{Repo: store, Search: searchSvc, Metrics: collector, Events: producer}
	configSvc := &service.ConfigService{Repo: store}
	backupSvc := &service.BackupService{Repo: store, Metrics: collector, Events: producer}

	bootCtx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
	err = authSvc.EnsureAdmin(bootCtx)
	cancel()
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	limiter := middleware.NewLoginLimiter()
	defer limiter.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger, collector))

	httpserver.Register(e, &httpserver.Deps{
		Auth:           &httpserver.AuthHTTP{Svc: authSvc},
		Accounts:       &httpserver.AccountHTTP{Svc: accountSvc},
		Videos:         &httpserver.VideoHTTP{Svc: videoSvc},
		Configs:        &httpserver.ConfigHTTP{Svc: configSvc},
		Backup:         &httpserver.BackupHTTP{Svc: backupSvc},
		AuthMW:         middleware.NewAuth(cfg.JWTSecret, store),
		LoginLimiter:   limiter,
		Repo:           store,
		Gatherer:       registry,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
