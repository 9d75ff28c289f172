package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/neural-health/internal/application"
	appai "github.com/bryanwahyu/neural-health/internal/application/ai"
	appscans "github.com/bryanwahyu/neural-health/internal/application/scans"
	"github.com/bryanwahyu/neural-health/internal/config"
	"github.com/bryanwahyu/neural-health/internal/domain/history"
	"github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
	"github.com/bryanwahyu/neural-health/internal/infra/ai/openai"
	rediscache "github.com/bryanwahyu/neural-health/internal/infra/cache/redis"
	"github.com/bryanwahyu/neural-health/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/neural-health/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/neural-health/internal/infra/db/postgres"
	"github.com/bryanwahyu/neural-health/internal/infra/httpserver"
	"github.com/bryanwahyu/neural-health/internal/infra/predictor"
	minioStore "github.com/bryanwahyu/neural-health/internal/infra/storage"
	"github.com/bryanwahyu/neural-health/internal/logger"
	"github.com/bryanwahyu/neural-health/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := middleware.NewMetrics()
	checkers := map[string]middleware.HealthChecker{}

	st, closeStores, err := openStores(ctx, cfg, checkers)
	if err != nil {
		lg.Fatal("history store init error", zap.String("driver", cfg.History.Driver), zap.Error(err))
	}
	defer closeStores()

	pc, err := predictor.NewClient(predictor.Options{
		BaseURL:   cfg.Predictor.BaseURL,
		TextPath:  cfg.Predictor.TextPath,
		ImagePath: cfg.Predictor.ImagePath,
		Timeout:   cfg.PredictorTimeout(),
		Observer:  metrics,
	})
	if err != nil {
		lg.Fatal("predictor client init error", zap.Error(err))
	}
	orch := appscans.NewOrchestrator(pc, nil)
	if cfg.Predictor.ImageEnabled {
		orch.Image = pc
	}

	svc := &appscans.Service{
		Orchestrator: orch,
		Records:      st.records,
		FailureLog:   st.failures,
		Metrics:      metrics,
		Clock:        application.SystemClock{},
		Log:          lg,
	}

	// init minio (optional)
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx, minioStore.Options{
			Endpoint:   cfg.Minio.Endpoint,
			Region:     cfg.Minio.Region,
			Bucket:     cfg.Minio.BucketName,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			UseSSL:     cfg.Minio.UseSSL,
			PresignTTL: time.Duration(cfg.Minio.PresignTTLMinutes) * time.Minute,
		})
		if err != nil {
			lg.Fatal("minio init error", zap.Error(err))
		}
		svc.Images = store
		checkers["minio"] = middleware.CheckFunc(store.Ping)
	}

	var aiSvc *appai.Service
	if cfg.OpenAI.APIKey != "" {
		var client *openai.Client
		if cfg.OpenAI.BaseURL != "" {
			client = openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		} else {
			client = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		}
		aiSvc = appai.NewService(client, st.records)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RequestsPerMinute)
	go limiter.Run(ctx)

	handler := httpserver.NewRouter(svc, aiSvc, httpserver.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		APIKeys:        cfg.Auth.APIKeys,
		Limiter:        limiter,
		Metrics:        metrics,
		Checkers:       checkers,
		Log:            lg,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("server listening",
			zap.String("addr", addr),
			zap.String("history_driver", cfg.History.Driver),
			zap.Bool("image_analysis", cfg.Predictor.ImageEnabled),
			zap.Bool("explain", aiSvc != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	lg.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error("shutdown error", zap.Error(err))
	}
}

type stores struct {
	records  history.Repository
	failures scanerrors.Repository
}

// openStores picks the history backend named by cfg.History.Driver.
func openStores(ctx context.Context, cfg *config.Config, checkers map[string]middleware.HealthChecker) (stores, func(), error) {
	max := cfg.History.MaxEntries
	switch cfg.History.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return stores{}, nil, err
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, nil, err
		}
		checkers["mysql"] = &middleware.SQLChecker{DB: db}
		return stores{
			records:  mysqlp.NewHistoryRepository(db, max),
			failures: mysqlp.NewScanErrorRepository(db),
		}, closer(db), nil

	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return stores{}, nil, err
		}
		if err := pgp.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, nil, err
		}
		checkers["postgres"] = &middleware.SQLChecker{DB: db}
		return stores{
			records:  pgp.NewHistoryRepository(db, max),
			failures: pgp.NewScanErrorRepository(db),
		}, closer(db), nil

	case config.DriverRedis:
		client, err := rediscache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return stores{}, nil, err
		}
		hs := rediscache.NewHistoryStore(client, max, time.Duration(cfg.Redis.TTLMinutes)*time.Minute)
		checkers["redis"] = middleware.CheckFunc(hs.Ping)
		return stores{
			records:  hs,
			failures: rediscache.NewScanErrorStore(client),
		}, func() { _ = client.Close() }, nil

	default:
		return stores{
			records:  memory.NewHistoryRepository(max),
			failures: memory.NewScanErrorRepository(),
		}, func() {}, nil
	}
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
