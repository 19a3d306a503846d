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

	"github.com/kailas-cloud/placecache/internal/config"
	"github.com/kailas-cloud/placecache/internal/db"
	dbRedis "github.com/kailas-cloud/placecache/internal/db/redis"
	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
	"github.com/kailas-cloud/placecache/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/placecache/internal/logger"
	"github.com/kailas-cloud/placecache/internal/metrics"
	callerrepo "github.com/kailas-cloud/placecache/internal/repository/caller"
	"github.com/kailas-cloud/placecache/internal/repository/geoelastic"
	"github.com/kailas-cloud/placecache/internal/repository/geoindex"
	placerepo "github.com/kailas-cloud/placecache/internal/repository/place"
	"github.com/kailas-cloud/placecache/internal/repository/placemongo"
	"github.com/kailas-cloud/placecache/internal/repository/placepg"
	"github.com/kailas-cloud/placecache/internal/repository/viewevents"
	chiTransport "github.com/kailas-cloud/placecache/internal/transport/chi"
	"github.com/kailas-cloud/placecache/internal/transport/gplaces"
	"github.com/kailas-cloud/placecache/internal/transport/natsevents"
	accessuc "github.com/kailas-cloud/placecache/internal/usecase/access"
	authzuc "github.com/kailas-cloud/placecache/internal/usecase/authz"
	healthuc "github.com/kailas-cloud/placecache/internal/usecase/health"
	moderationuc "github.com/kailas-cloud/placecache/internal/usecase/moderation"
	nearbyuc "github.com/kailas-cloud/placecache/internal/usecase/nearby"
	resolveuc "github.com/kailas-cloud/placecache/internal/usecase/resolve"
	"github.com/kailas-cloud/placecache/internal/version"
)

// dailyViewTTL keeps per-place daily view counters around for two days.
const dailyViewTTL = 48 * time.Hour

// recordStore is the union of what the use cases need from the record backend.
type recordStore interface {
	Get(ctx context.Context, id string) (place.Record, error)
	Put(ctx context.Context, rec place.Record) error
	GetMany(ctx context.Context, ids []string) (map[string]place.Record, error)
	IncrementViews(ctx context.Context, id string) error
}

// geoIndex is the union of what the use cases need from the geo backend.
type geoIndex interface {
	Upsert(ctx context.Context, e geo.Entry) error
	Remove(ctx context.Context, placeID string) error
	FindWithinRadius(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]geo.Hit, error)
}

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

	logger.Info("Starting placecache API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("records_backend", cfg.Records.Backend),
		zap.String("geo_backend", cfg.Geo.Backend),
		zap.String("events_sink", cfg.Events.Sink),
	)

	// Redis always backs caller profiles and, by default, everything else.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterPlaceMetrics()

	pingers := map[string]healthuc.Pinger{"redis": store}
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	records, err := buildRecordStore(ctx, &cfg, store, pingers, &closers)
	if err != nil {
		logger.Fatal("Failed to create record store", zap.Error(err))
	}
	geoIdx, err := buildGeoIndex(ctx, &cfg, store, pingers)
	if err != nil {
		logger.Fatal("Failed to create geo index", zap.Error(err))
	}
	sink, err := buildEventSink(&cfg, store, logger, pingers, &closers)
	if err != nil {
		logger.Fatal("Failed to create event sink", zap.Error(err))
	}

	upstream := gplaces.NewClient(&gplaces.Config{
		APIKey:     cfg.Upstream.APIKey,
		BaseURL:    cfg.Upstream.BaseURL,
		Timeout:    time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
		RatePerSec: cfg.Upstream.RatePerSec,
		Burst:      cfg.Upstream.Burst,
		Logger:     logger,
	})

	recorder := accessuc.New(
		sink, records,
		time.Duration(cfg.Events.TimeoutSec)*time.Second,
		metrics.ViewRecordsTotal, logger,
	)
	resolveSvc := resolveuc.New(
		records, geoIdx, upstream, recorder,
		cfg.Cache.StaleAfter(), cfg.Upstream.DefaultLanguage, logger,
		resolveuc.WithOutcomeCounter(metrics.ResolveTotal),
	)
	nearbySvc := nearbyuc.New(geoIdx, records, nearbyuc.Config{
		OverFetchFactor: cfg.Geo.OverFetchFactor,
		MaxCandidates:   cfg.Geo.MaxCandidates,
	}, metrics.NearbySearchDuration, metrics.NearbyCandidates)
	moderationSvc := moderationuc.New(records, geoIdx, logger)
	authzSvc := authzuc.New(callerrepo.New(store, cfg.Storage.KeyPrefix), cfg.Auth.CheckActive)
	healthSvc := healthuc.New(pingers)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("Token validation disabled; caller id is read from " + chiTransport.CallerHeader)
	}

	server := chiTransport.NewServer(
		resolveSvc, nearbySvc, moderationSvc, authzSvc, healthSvc,
		request.Limits{
			DefaultRadiusKm: cfg.Geo.DefaultRadiusKm,
			MaxRadiusKm:     cfg.Geo.MaxRadiusKm,
			DefaultLimit:    cfg.Geo.DefaultPageSize,
			MaxLimit:        cfg.Geo.MaxPageSize,
		},
		logger,
	)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Strings("health_checks", healthSvc.Names()))
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
	// Views dispatched by the last requests finish before the stores close.
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Error("Error draining view recorder", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func buildRecordStore(
	ctx context.Context,
	cfg *config.Config,
	store db.Store,
	pingers map[string]healthuc.Pinger,
	closers *[]func(),
) (recordStore, error) {
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Records.Backend {
	case "mongo":
		client, err := placemongo.Connect(ctx, cfg.Records.Mongo.URI, timeout)
		if err != nil {
			return nil, fmt.Errorf("records: %w", err)
		}
		*closers = append(*closers, func() { _ = client.Disconnect(context.Background()) })
		pingers["mongo"] = placemongo.Pinger{Client: client}
		coll := client.Database(cfg.Records.Mongo.Database).Collection(cfg.Records.Mongo.Collection)
		return placemongo.New(coll), nil
	case "postgres":
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		pool, err := placepg.Connect(cctx, cfg.Records.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("records: %w", err)
		}
		*closers = append(*closers, pool.Close)
		pingers["postgres"] = pool
		repo := placepg.New(pool, cfg.Records.Postgres.Table)
		if err := repo.EnsureSchema(cctx); err != nil {
			return nil, fmt.Errorf("records: %w", err)
		}
		return repo, nil
	default:
		return placerepo.New(store, cfg.Storage.KeyPrefix), nil
	}
}

func buildGeoIndex(
	ctx context.Context,
	cfg *config.Config,
	store db.Store,
	pingers map[string]healthuc.Pinger,
) (geoIndex, error) {
	if cfg.Geo.Backend != "elastic" {
		return geoindex.New(store, cfg.Storage.KeyPrefix), nil
	}
	client, err := geoelastic.NewClient(cfg.Geo.Elastic.URLs, cfg.Geo.Elastic.Sniff)
	if err != nil {
		return nil, fmt.Errorf("geo: %w", err)
	}
	repo := geoelastic.New(client, cfg.Geo.Elastic.Index)
	if err := repo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("geo: %w", err)
	}
	pingers["elastic"] = repo
	return repo, nil
}

func buildEventSink(
	cfg *config.Config,
	store db.Store,
	logger *zap.Logger,
	pingers map[string]healthuc.Pinger,
	closers *[]func(),
) (accessuc.EventSink, error) {
	if cfg.Events.Sink != "nats" {
		return viewevents.New(store, cfg.Storage.KeyPrefix, cfg.Events.Stream, cfg.Events.MaxLen, dailyViewTTL), nil
	}
	nc, err := natsevents.Connect(natsevents.ConnConfig{
		URL:           cfg.Events.NATS.URL,
		MaxReconnects: cfg.Events.NATS.MaxReconnects,
		ReconnectWait: time.Duration(cfg.Events.NATS.ReconnectWaitSec) * time.Second,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	// Drain flushes buffered publishes before closing.
	*closers = append(*closers, func() { _ = nc.Drain() })
	pingers["nats"] = natsevents.Pinger{Conn: nc}
	return natsevents.New(nc, cfg.Events.NATS.Subject), nil
}
