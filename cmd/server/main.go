package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"styllobarbe/internal/api"
	"styllobarbe/internal/appointments"
	"styllobarbe/internal/booking"
	"styllobarbe/internal/clock"
	"styllobarbe/internal/config"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/metrics"
	"styllobarbe/internal/slots"
	"styllobarbe/internal/stats"
	"styllobarbe/internal/storage/rediscache"
	"styllobarbe/internal/storage/sqlite"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("STYLLOBARBE_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	grid, err := cfg.Grid()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid schedule config")
	}

	database, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	clk := clock.Real{}

	catalog := rediscache.NewCachedCatalog(sqlite.NewCatalog(database))
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		catalog.UseRedisCache(rdb, cfg.CacheTTL())
	}

	appts := sqlite.NewAppointmentStore(database, clk)
	avail := slots.NewService(slots.NewGenerator(grid, clk), appts)

	rules := booking.Rules{
		MinAdvance:   cfg.BookingMinAdvance(),
		MaxAdvance:   cfg.BookingMaxAdvance(),
		ConfirmRate:  cfg.ConfirmRate(),
		ConfirmBurst: cfg.ConfirmBurst(),
	}
	store := booking.NewStore(cfg.SessionTimeout())
	wizard := booking.NewWizard(store, avail, appts, rules, clk, logger)
	loader := booking.NewLoader(catalog, catalog, catalog)
	manager := appointments.NewManager(appts, avail, clk, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.HealthCheckPort == 0 {
		cfg.Server.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Server.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		stats.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)

		refresher := stats.NewRefresher(appts, cfg.Stats.BarbershopID, grid, cfg.StatsRefresh(), clk, logger)
		go refresher.Run(ctx)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.Cleanup(); removed > 0 {
					logger.Debug().Int("removed", removed).Msg("expired wizard sessions dropped")
				}
			}
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Server: api.NewServer(wizard, loader, manager),
		Scope:  scopeFromHeaders,
		Logger: logger,
	})

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: router}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("styllobarbe server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// scopeFromHeaders trusts headers set by the fronting auth proxy, never
// request parameters.
func scopeFromHeaders(r *http.Request) filters.TenantScope {
	return filters.TenantScope{
		NetworkID:    r.Header.Get("X-Auth-Network-ID"),
		OwnerAdminID: r.Header.Get("X-Auth-Owner-Admin-ID"),
	}
}

func startHealthServer(ctx context.Context, port int, database *sqlite.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
