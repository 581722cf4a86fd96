// Package app wires configuration, storage, caches and services into the
// HTTP handler served by cmd/server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"surveyservice/internal/cache"
	"surveyservice/internal/config"
	"surveyservice/internal/metrics"
	"surveyservice/internal/repository"
	"surveyservice/internal/repository/memstore"
	"surveyservice/internal/service"
	"surveyservice/internal/transport/rest"
	"surveyservice/internal/transport/ws"
)

const connectTimeout = 5 * time.Second

// App is the assembled service
type App struct {
	Handler http.Handler
	Stores  *repository.Stores
	Hub     *ws.Hub

	logger  *zap.Logger
	closers []func(context.Context) error
}

// New connects the configured backends and builds the router. Close
// releases whatever New opened, also when New fails half way.
func New(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{logger: logger}
	for _, w := range cfg.Warnings() {
		logger.Warn("insecure configuration", zap.String("reason", w))
	}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if a.Stores, err = a.openStores(ctx, cfg); err != nil {
		return nil, err
	}

	var stats cache.StatsCache
	if cfg.RedisAddr != "" {
		if stats, err = a.openStats(ctx, cfg.RedisAddr); err != nil {
			return nil, err
		}
	} else {
		logger.Info("redis address not set, response statistics disabled")
	}

	a.Hub = ws.NewHub(logger.With(zap.String("component", "ws")))
	a.closers = append(a.closers, func(context.Context) error {
		a.Hub.Close()
		return nil
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, clk)
	surveySvc := service.NewSurveyService(a.Stores.Surveys, clk)
	cycleSvc := service.NewCycleService(a.Stores.Surveys, a.Stores.Cycles, clk)
	cycleSvc.SetLocation(loc)
	responderSvc := service.NewResponderService(a.Stores.Cycles, a.Stores.Responders, clk)

	responseSvc := service.NewSurveyResponseService(a.Stores, clk, logger.With(zap.String("component", "survey_response")))
	responseSvc.SetLocation(loc)
	responseSvc.SetBroadcaster(a.Hub)
	if stats != nil {
		responseSvc.SetStatsCache(stats)
	}

	a.Handler = rest.NewRouter(&rest.Container{
		AuthService:      authSvc,
		SurveyService:    surveySvc,
		CycleService:     cycleSvc,
		ResponderService: responderSvc,
		ResponseService:  responseSvc,
		Stats:            stats,
		WSHub:            a.Hub,
		Metrics:          m,
		Gatherer:         reg,
		Logger:           logger.With(zap.String("component", "http")),
	})
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (*repository.Stores, error) {
	if cfg.Store == config.StoreMemory {
		a.logger.Warn("using in-memory store, data is lost on restart")
		return memstore.NewStores(), nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, client.Disconnect)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	a.logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))
	return repository.NewMongoStores(db), nil
}

func (a *App) openStats(ctx context.Context, addr string) (cache.StatsCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	a.logger.Info("connected to Redis", zap.String("addr", addr))
	return cache.NewStatsCache(rdb), nil
}

// Close releases the backends in reverse order of opening
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
