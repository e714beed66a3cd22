package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tripsynth/assembler"
	"tripsynth/cache"
	"tripsynth/config"
	dbt "tripsynth/db/db"
	"tripsynth/db/mem"
	"tripsynth/db/pg"
	"tripsynth/db/redis"
	"tripsynth/db/sqlite"
	"tripsynth/fetch"
	"tripsynth/generator"
	"tripsynth/mq/gcppubsub"
	"tripsynth/mq/goch"
	"tripsynth/mq/mq"
	"tripsynth/mq/rabbit"
	"tripsynth/oracle"
	"tripsynth/provider"
	"tripsynth/reconcile"
	"tripsynth/strategy"
	"tripsynth/vibe"
)

// Message queue modes accepted in MQ_MODE.
const (
	MqGoChan    = "go_chan"
	MqRabbit    = "rabbitmq"
	MqGCPPubSub = "gcp_pub_sub"
)

// app owns every long lived dependency built from a Config.
type app struct {
	assembler *assembler.Assembler
	events    mq.ItineraryMessageQueueWrapper
	closers   []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// buildApp wires the pipeline. withEvents is false for one-shot commands.
func buildApp(ctx context.Context, cfg config.Config, withEvents bool, logger *slog.Logger) (*app, error) {
	a := &app{}

	store, err := openCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	fetcher := fetch.New(store, cfg.MaxRetries, cfg.BackoffBase, logger.With("component", "fetch"))

	var gemini oracle.Oracle
	if cfg.GeminiAPIKey != "" {
		g, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.OracleTimeout)
		if err != nil {
			a.Close()
			return nil, err
		}
		gemini = g
	}

	engine := reconcile.New(cfg.Tiers, gemini, logger.With("component", "reconcile"))
	strategies, err := buildStrategies(cfg, engine, gemini, fetcher, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	if withEvents {
		events, closeEvents, err := openEvents(ctx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.events = events
		a.closers = append(a.closers, closeEvents)
	}

	a.assembler = assembler.New(engine, vibe.New(gemini, logger), a.events, logger.With("component", "assembler"), strategies...)
	return a, nil
}

func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (*cache.Store, error) {
	var backend dbt.CacheDBWrapper
	switch cfg.CacheBackend {
	case config.CacheMem:
		backend = mem.NewInMemoryCacheDBWrapper()
	case config.CacheSQLite:
		s, err := sqlite.NewSQLiteCacheDBWrapper(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		backend = s
	case config.CachePostgres:
		db, err := pg.InitPostgresGORM(pg.CreateDSN(cfg.DatabaseURL))
		if err != nil {
			return nil, err
		}
		backend = pg.NewGORMCacheDBWrapper(db)
	case config.CacheRedis:
		client, err := redis.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		backend = redis.NewRedisCacheDBWrapper(client)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	logger.Info("cache backend ready", "backend", cfg.CacheBackend)
	return cache.New(backend, cache.WithLogger(logger.With("component", "cache"))), nil
}

func buildStrategies(cfg config.Config, engine *reconcile.Engine, gemini oracle.Oracle, fetcher *fetch.Fetcher, logger *slog.Logger) ([]strategy.Strategy, error) {
	var out []strategy.Strategy
	for _, name := range cfg.Strategies {
		switch name {
		case config.StrategyHeuristic:
			out = append(out, strategy.NewHeuristic(engine))
		case config.StrategyOracle:
			gen := generator.New(gemini, cfg.OracleTimeout, logger.With("component", "generator"))
			out = append(out, strategy.NewOracle(gen, engine, logger.With("strategy", name)))
		case config.StrategyDataSource:
			out = append(out, newDatasource(cfg, engine, fetcher, logger))
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}
	return out, nil
}

// newDatasource leaves a source nil when its key is missing, which makes the
// strategy fail over to the next one.
func newDatasource(cfg config.Config, engine *reconcile.Engine, fetcher *fetch.Fetcher, logger *slog.Logger) *strategy.Datasource {
	opts := []provider.Option{
		provider.WithLogger(logger.With("component", "provider")),
		provider.WithResolver(provider.CachedResolver(fetcher)),
	}

	var (
		hotels      provider.HotelSource
		restaurants strategy.RestaurantSource
		activities  strategy.ActivitySource
	)
	if cfg.RapidAPIKey != "" {
		hotels = &provider.Failover{
			Primary:   provider.NewBooking(cfg.RapidAPIKey, opts...),
			Secondary: provider.NewHotelsCom(cfg.RapidAPIKey, opts...),
			Logger:    logger,
		}
		restaurants = provider.NewTripAdvisor(cfg.RapidAPIKey, opts...)
	}
	if cfg.GooglePlacesKey != "" {
		activities = provider.NewPlaces(cfg.GooglePlacesKey, opts...)
	}
	return strategy.NewDatasource(fetcher, hotels, restaurants, activities, engine, logger.With("strategy", config.StrategyDataSource))
}

func openEvents(ctx context.Context, cfg config.Config, logger *slog.Logger) (mq.ItineraryMessageQueueWrapper, func() error, error) {
	logger = logger.With("component", "mq", "mode", cfg.MqMode)
	switch cfg.MqMode {
	case MqGoChan, "":
		w := goch.NewGoChanItineraryMessageQueueWrapper(64)
		return w, func() error { w.Close(); return nil }, nil
	case MqRabbit:
		conn, err := rabbit.NewRabbitConnection(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		w, err := rabbit.NewRabbitItineraryMessageQueueWrapper(conn, logger)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return w, func() error { w.Close(); return nil }, nil
	case MqGCPPubSub:
		projectID := cfg.GCPProjectID
		if projectID == "" {
			id, err := gcppubsub.GetGCPProjectID()
			if err != nil {
				return nil, nil, err
			}
			projectID = id
		}
		w, err := gcppubsub.NewGCPItineraryMessageQueueWrapper(ctx, projectID, logger)
		if err != nil {
			return nil, nil, err
		}
		return w, func() error { w.Close(); return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown message queue mode %q", cfg.MqMode)
}
