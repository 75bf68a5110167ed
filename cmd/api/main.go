package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"

	"github.com/DioGolang/GoPlaces/configs"
	"github.com/DioGolang/GoPlaces/internal/application/port/outbound"
	"github.com/DioGolang/GoPlaces/internal/application/usecase/location"
	"github.com/DioGolang/GoPlaces/internal/infra/cache"
	"github.com/DioGolang/GoPlaces/internal/infra/database"
	"github.com/DioGolang/GoPlaces/internal/infra/event"
	"github.com/DioGolang/GoPlaces/internal/infra/provider"
	"github.com/DioGolang/GoPlaces/internal/infra/ratelimit"
	"github.com/DioGolang/GoPlaces/internal/infra/web/handler"
	webmw "github.com/DioGolang/GoPlaces/internal/infra/web/middleware"
	"github.com/DioGolang/GoPlaces/pkg/clock"
	"github.com/DioGolang/GoPlaces/pkg/events"
	"github.com/DioGolang/GoPlaces/pkg/logger"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
	tracing "github.com/DioGolang/GoPlaces/pkg/otel"
)

var version = "dev"

func main() {
	config, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(config.ServiceName, config.IsProduction(), logger.WithLevel(config.LogLevel))
	if err := run(config, log); err != nil {
		log.Error(context.Background(), "service stopped with error", logger.WithError(err))
		os.Exit(1)
	}
}

func run(config *configs.Conf, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.OtelCollectorAddr != "" {
		shutdown, err := tracing.InitProvider(ctx, config.ServiceName, config.Environment, config.OtelCollectorAddr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPrometheusMetrics(reg, config.ServiceName)
	clk := clock.New()

	var (
		index       outbound.PlaceIndex
		dispatcher  events.EventDispatcher
		healthOpts  []handler.HealthOption
		redisClient *redis.Client
	)

	if config.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{Addr: net.JoinHostPort(config.RedisHost, config.RedisPort)})
		defer redisClient.Close()
		index = database.NewRedisPlaceIndex(redisClient, log)
		healthOpts = append(healthOpts, handler.WithRedis(redisClient))
	}

	if config.AMQPEnabled() {
		conn, err := amqp.Dial(config.AMQPURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return err
		}
		defer ch.Close()

		if err := event.DeclareExchange(ch, config.Exchange); err != nil {
			return err
		}
		dispatcher = event.WrapExponentialBackoff(log, 3, 200*time.Millisecond, event.NewDispatcher(ch, config.Exchange))
		healthOpts = append(healthOpts, handler.WithRabbitMQ(config.AMQPURL))
	}

	region := location.DefaultRegion()
	if err := region.Validate(); err != nil {
		return err
	}
	curated := location.DefaultCuratedDataset()
	if index != nil {
		// Pins dropped on a curated landmark snap to it from the first request.
		if err := index.Add(ctx, curated.All()); err != nil {
			log.Warn(ctx, "failed to seed place index", logger.WithError(err))
		}
	}

	httpClient := &http.Client{Timeout: config.ProviderTimeout}

	placesBreaker := provider.NewBreaker(provider.BreakerConfig{
		Name:                "places",
		ConsecutiveFailures: config.BreakerFailures,
		OpenTimeout:         config.BreakerOpenTimeout,
	}, log, m)
	geocodingBreaker := provider.NewBreaker(provider.BreakerConfig{
		Name:                "geocoding",
		ConsecutiveFailures: config.BreakerFailures,
		OpenTimeout:         config.BreakerOpenTimeout,
	}, log, m)
	healthOpts = append(healthOpts, handler.WithBreaker(placesBreaker), handler.WithBreaker(geocodingBreaker))

	placesClient := provider.NewPlacesClient(provider.PlacesConfig{
		APIKey:       config.PlacesAPIKey,
		BaseURL:      config.PlacesBaseURL,
		LanguageCode: config.PlacesLanguage,
		MaxResults:   config.PlacesMaxResults,
	}, httpClient, ratelimit.NewLimiter(config.ProviderMinInterval, clk, log, m), placesBreaker, log, m)

	geocodingClient := provider.NewGeocodingClient(provider.GeocodingConfig{
		APIKey:       config.PlacesAPIKey,
		BaseURL:      config.GeocodingBaseURL,
		LanguageCode: config.PlacesLanguage,
		RegionCode:   region.Code,
	}, httpClient, geocodingBreaker, log, m)

	resolver := location.NewResolver(placesClient, cache.NewMemorySearchCache(config.SearchCacheTTL, clk), log, m, location.ResolverOptions{
		Region:       region,
		Curated:      curated,
		StrictBounds: config.StrictBounds,
		Index:        index,
		Dispatcher:   dispatcher,
		Clock:        clk,
	})
	resolveUseCase := &location.ResolveMetricsDecorator{Next: resolver, Metrics: m}
	reverseService := location.NewReverseGeocodeService(geocodingClient, index, config.SnapRadiusMeters, log)

	placeHandler := handler.NewPlaceHandler(resolveUseCase, reverseService, log)
	liveHandler := handler.NewLiveHandler(resolveUseCase, reverseService, log, handler.LiveOptions{
		SearchDelay:  config.SearchDebounce,
		ReverseDelay: config.ReverseDebounce,
		Clock:        clk,
	})

	ipLimiter := webmw.NewIPRateLimiter(webmw.RateLimiterConfig{
		RequestsPerSecond: config.HTTPRateLimit,
		Burst:             config.HTTPRateBurst,
	})
	go ipLimiter.RunCleanup(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(config.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(webmw.RequestLogger(log))
	r.Use(webmw.MetricsWrapper(m, "/metrics", "/health"))

	r.Handle("/health", handler.NewHealthHandler(config.ServiceName, version, healthOpts...))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/api/v1/places", func(r chi.Router) {
		r.Use(ipLimiter.Handler(log))
		r.Get("/search", placeHandler.Search)
		r.Get("/reverse", placeHandler.Reverse)
		r.Get("/live", liveHandler.Serve)
	})

	// No write timeout: live sessions hold their connection open.
	srv := &http.Server{
		Addr:              ":" + config.WebServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening",
			logger.String("port", config.WebServerPort),
			logger.String("version", version),
			logger.Int("curated_places", curated.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
