package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tabdex/internal/config"
	"github.com/kailas-cloud/tabdex/internal/convert"
	"github.com/kailas-cloud/tabdex/internal/db"
	"github.com/kailas-cloud/tabdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/tabdex/internal/db/redis"
	"github.com/kailas-cloud/tabdex/internal/index"
	logpkg "github.com/kailas-cloud/tabdex/internal/logger"
	"github.com/kailas-cloud/tabdex/internal/metrics"
	"github.com/kailas-cloud/tabdex/internal/ontology"
	srcrepo "github.com/kailas-cloud/tabdex/internal/repository/source"
	"github.com/kailas-cloud/tabdex/internal/tabular"
	chiTransport "github.com/kailas-cloud/tabdex/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/tabdex/internal/usecase/catalog"
	datasetuc "github.com/kailas-cloud/tabdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/tabdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tabdex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tabdex/internal/usecase/search"
	"github.com/kailas-cloud/tabdex/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tabdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Data.Dir),
		zap.String("sources_driver", cfg.Sources.Driver),
	)

	store, err := newStore(cfg.Sources)
	if err != nil {
		logger.Fatal("Failed to create source registry store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	readiness := time.Duration(cfg.Sources.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Source registry not ready", zap.Error(err))
	}

	metrics.RegisterEngineMetrics()

	conv, err := convert.New()
	if err != nil {
		logger.Fatal("Failed to create converter", zap.Error(err))
	}
	norm := ontology.Default()
	live := index.NewLive(nil)

	datasetSvc := datasetuc.New(datasetuc.Config{
		Dir:     cfg.Data.Dir,
		Files:   cfg.Data.DatasetFiles(),
		Workers: cfg.Data.LoadWorkers,
	}, tabular.FileReader{}, norm, conv, logger)

	ingestSvc := ingestuc.New(live, norm, conv, datasetSvc, srcrepo.New(store), index.Config{
		MaxTokenRunes: cfg.Index.MaxTokenRunes,
		ContextDepth:  cfg.Index.ContextDepth,
	}, logger)

	catalogSvc := cataloguc.New(cfg.Data.CatalogPath(), tabular.FileReader{},
		ontology.MustNew(ontology.CatalogVocabulary), logger)
	searchSvc := searchuc.New(live, cfg.Search.RankByScore)
	healthSvc := healthuc.New(ingestSvc, store)

	server := chiTransport.NewServer(searchSvc, ingestSvc, datasetSvc, catalogSvc, healthSvc, chiTransport.Options{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		MaxUploadBytes: int64(cfg.HTTP.MaxUploadMB) << 20,
		ExposeErrors:   cfg.HTTP.ExposeErrors,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// The first build runs alongside the listener; /health answers 503 until it completes.
	go func() {
		n, err := ingestSvc.Reindex(ctx)
		if err != nil {
			logger.Error("Initial index build failed", zap.Error(err))
			return
		}
		logger.Info("Initial index built", zap.Int("documents", n))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newStore(cfg config.SourcesConfig) (db.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sources driver %q", cfg.Driver)
	}
}
