package di

import (
	"context"
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	"CropPulse/internal/domain/repository"
	domsvc "CropPulse/internal/domain/service"
	"CropPulse/internal/handler/api"
	mid "CropPulse/internal/middleware"
	internalrepo "CropPulse/internal/repository"
	icache "CropPulse/internal/service/cache"
	"CropPulse/internal/service/ratelimit"
	"CropPulse/internal/service/weather"
	"CropPulse/internal/services/analytics"
	"CropPulse/internal/services/prediction"
	"CropPulse/internal/usecase"
	pkgch "CropPulse/pkg/clickhouse"
	"CropPulse/pkg/config"
	xhttp "CropPulse/pkg/http"
	"CropPulse/pkg/http/middleware"
	pkgkafka "CropPulse/pkg/kafka"
	applogger "CropPulse/pkg/logger"
	"CropPulse/pkg/metrics"
	pkgpg "CropPulse/pkg/postgres"
	"CropPulse/pkg/server"
)

const connectTimeout = 10 * time.Second

func noop() {}

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      cfg.Logging.Output,
		Environment: cfg.Environment,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCatalog uses the configured catalog when one is given, else the built-in one.
func ProvideCatalog(cfg *config.Config) *models.Catalog {
	if len(cfg.Catalog.Crops) == 0 {
		return models.DefaultCatalog()
	}
	coords := make(map[string]models.Coordinates, len(cfg.Catalog.States))
	for state, c := range cfg.Catalog.States {
		coords[state] = models.Coordinates{Lat: c.Lat, Lon: c.Lon}
	}
	return models.NewCatalog(cfg.Catalog.Crops, coords)
}

// ProvideThresholds applies config overrides on top of the defaults.
func ProvideThresholds(cfg *config.Config) (analytics.Thresholds, error) {
	th, err := analytics.DefaultThresholds().WithOverrides(cfg.Thresholds)
	if err != nil {
		return th, fmt.Errorf("thresholds: %w", err)
	}
	return th, nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the price table exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	c := cfg.Data.ClickHouse
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := pkgch.Open(ctx, pkgch.Config{
		Host:             c.Host,
		Port:             c.Port,
		Database:         c.Database,
		User:             c.User,
		Password:         c.Password,
		Protocol:         c.Protocol,
		DialTimeout:      c.DialTimeout,
		ReadTimeout:      c.ReadTimeout,
		MaxExecutionTime: c.MaxExecutionTime,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.Migrate(ctx, internalrepo.CHPriceSchema(c.Database, c.Table)...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePriceSource selects the historical record backend.
func ProvidePriceSource(cfg *config.Config, l *applogger.Logger) (repository.PriceSource, func(), error) {
	switch cfg.Data.Source {
	case "clickhouse":
		client, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		src := internalrepo.NewCHPriceSource(client, cfg.Data.ClickHouse.Database+"."+cfg.Data.ClickHouse.Table)
		src.SetLogger(l)
		return src, func() { _ = client.Close() }, nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		client, err := pkgpg.NewClient(ctx, cfg.Data.Postgres.URL, pkgpg.WithMaxConns(cfg.Data.Postgres.MaxConns))
		if err != nil {
			return nil, nil, fmt.Errorf("postgres client: %w", err)
		}
		src := internalrepo.NewPGPriceSource(client, cfg.Data.Postgres.Table)
		src.SetLogger(l)
		return src, func() { _ = client.Close() }, nil
	default:
		return internalrepo.NewCSVPriceSource(cfg.Data.CSV.Path), noop, nil
	}
}

func ProvideHistoricalStore(src repository.PriceSource, l *applogger.Logger) *internalrepo.HistoricalStore {
	s := internalrepo.NewHistoricalStore(src)
	s.SetLogger(l)
	return s
}

// ProvideModelSource returns the on-disk model store or the remote model service.
func ProvideModelSource(cfg *config.Config, l *applogger.Logger) repository.ModelSource {
	if cfg.Models.Source == "http" {
		base := analytics.NewHTTPServiceBase(cfg.Models.ServiceURL, cfg.Models.Timeout)
		return analytics.NewRemoteModelSource(base, cfg.Models.Retries)
	}
	src := internalrepo.NewFileModelSource(cfg.Models.Dir)
	src.SetLogger(l)
	return src
}

func ProvidePredictor(src repository.ModelSource, l *applogger.Logger) domsvc.PricePredictor {
	return prediction.NewPredictor(src, l)
}

// ProvideWeather returns nil when weather lookups are disabled.
func ProvideWeather(cfg *config.Config, catalog *models.Catalog, l *applogger.Logger) domsvc.WeatherProvider {
	if !cfg.Weather.Enabled {
		return nil
	}
	c := weather.New(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout, catalog)
	c.SetLogger(l)
	return c
}

func ProvideVolatilityAnalyzer(th analytics.Thresholds) *analytics.VolatilityAnalyzer {
	return analytics.NewVolatilityAnalyzer(th)
}

func ProvideOpportunityEvaluator(th analytics.Thresholds, vol *analytics.VolatilityAnalyzer) domsvc.OpportunityEvaluator {
	return analytics.NewOpportunityEvaluator(th, vol)
}

func ProvideMarketAnalytics(
	store *internalrepo.HistoricalStore,
	th analytics.Thresholds,
	vol *analytics.VolatilityAnalyzer,
	opp domsvc.OpportunityEvaluator,
	m repository.Metrics,
) *usecase.MarketAnalytics {
	return usecase.NewMarketAnalytics(
		store,
		vol,
		analytics.NewSeasonalityAnalyzer(th),
		analytics.NewTrendAnalyzer(th),
		analytics.NewSentimentScorer(th),
		opp,
		m,
	)
}

func ProvideComprehensive(a *usecase.MarketAnalytics) *usecase.ComprehensiveUseCase {
	return usecase.NewComprehensiveUseCase(a)
}

func ProvideMarketData(store *internalrepo.HistoricalStore, catalog *models.Catalog) *usecase.MarketData {
	return usecase.NewMarketData(store, catalog)
}

func ProvidePredictUseCase(
	store *internalrepo.HistoricalStore,
	p domsvc.PricePredictor,
	w domsvc.WeatherProvider,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictUseCase {
	return usecase.NewPredictUseCase(store, p, w, m, l)
}

// ProvideCache builds the analytics response cache named by cache.backend.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	switch cfg.Cache.Backend {
	case "none":
		return icache.Noop{}, noop, nil
	case "redis":
		rc := icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		l.Info("analytics cache", applogger.String("backend", "redis"), applogger.String("addr", cfg.Cache.Redis.Addr))
		return icache.NewPrefixed(rc, cfg.Cache.Prefix), func() { _ = rc.Close() }, nil
	default:
		return icache.NewPrefixed(icache.NewTTLCache(), cfg.Cache.Prefix), noop, nil
	}
}

func ProvideMarketHandler(l *applogger.Logger, data *usecase.MarketData, p *usecase.PredictUseCase) *api.MarketHandler {
	return api.NewMarketHandler(l, data, p)
}

func ProvideAnalyticsHandler(
	cfg *config.Config,
	l *applogger.Logger,
	a *usecase.MarketAnalytics,
	report *usecase.ComprehensiveUseCase,
	data *usecase.MarketData,
	cache icache.BytesCache,
) *api.AnalyticsHandler {
	h := api.NewAnalyticsHandler(l, a, report, data)
	h.SetCache(cache, cfg.Cache.TTL)
	return h
}

func ProvideRouter(market *api.MarketHandler, a *api.AnalyticsHandler) *api.Router {
	return api.NewRouter(market, a)
}

// ProvideRateLimiter keys API clients by address; the app sweeps idle buckets.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
}

// ProvideHTTPServer builds the echo server with per-client rate limiting.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, router *api.Router, limiter *ratelimit.Limiter) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithLogger(l),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithCORS(cfg.Server.CORS.AllowOrigins, cfg.Server.CORS.MaxAge),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMiddleware(middleware.RateLimit(limiter)),
	}
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetricsPath(path))
	return xhttp.NewServer(router, opts...)
}

// ProvideKafkaProducer creates the alert topic producer, or nil when alerts are disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Alerts.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      k.Brokers,
		Topic:        cfg.Alerts.Topic,
		RequiredAcks: k.RequiredAcks,
		Compression:  k.Compression,
		MaxAttempts:  k.Producer.MaxAttempts,
		WriteTimeout: k.Producer.WriteTimeout,
		ReadTimeout:  k.Producer.ReadTimeout,
		BatchSize:    k.Producer.BatchSize,
		BatchBytes:   k.Producer.BatchBytes,
		BatchTimeout: k.Producer.Linger,
		Async:        k.Producer.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPipeline connects the Kafka publisher behind a throttled buffer.
// The cleanup closes the publisher and with it the producer.
func ProvideAlertPipeline(
	cfg *config.Config,
	producer *pkgkafka.Producer,
	m repository.Metrics,
	l *applogger.Logger,
) (*mid.AlertPipeline, func()) {
	if producer == nil {
		return nil, noop
	}
	dispatcher := usecase.NewAlertDispatcher(internalrepo.NewKafkaAlertPublisher(producer), m)
	pipe := mid.NewAlertPipeline(dispatcher, m,
		mid.WithThrottle(ratelimit.PerMinute(cfg.Alerts.MaxPerMinute)),
		mid.WithBufferSize(cfg.Alerts.BufferSize),
		mid.WithLogger(l),
	)
	return pipe, func() {
		if err := dispatcher.Close(); err != nil {
			l.Warn("alert publisher close error", applogger.Error(err))
		}
	}
}

// ProvideAlertScanner returns nil when alerts are disabled.
func ProvideAlertScanner(
	cfg *config.Config,
	catalog *models.Catalog,
	store *internalrepo.HistoricalStore,
	p domsvc.PricePredictor,
	opp domsvc.OpportunityEvaluator,
	pipe *mid.AlertPipeline,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AlertScanner {
	if pipe == nil {
		return nil
	}
	return usecase.NewAlertScanner(usecase.ScanConfig{
		Schedule:         cfg.Alerts.Schedule,
		HorizonDays:      cfg.Alerts.HorizonDays,
		ThresholdPercent: cfg.Alerts.ThresholdPercent,
	}, catalog, store, p, opp, pipe, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store *internalrepo.HistoricalStore,
	srv *xhttp.Server,
	limiter *ratelimit.Limiter,
	scanner *usecase.AlertScanner,
	pipe *mid.AlertPipeline,
) *server.App {
	return server.New(cfg, l, store, srv, limiter, scanner, pipe)
}
