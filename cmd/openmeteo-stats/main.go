package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kjstillabower/openmeteo-stats/internal/app"
	"github.com/kjstillabower/openmeteo-stats/internal/cache"
	"github.com/kjstillabower/openmeteo-stats/internal/client"
	"github.com/kjstillabower/openmeteo-stats/internal/config"
	"github.com/kjstillabower/openmeteo-stats/internal/forecast"
	"github.com/kjstillabower/openmeteo-stats/internal/geocode"
	"github.com/kjstillabower/openmeteo-stats/internal/observability"
)

const dateLayout = "2006-01-02"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds and executes the root command, returning the process exit code.
// Factored out of main so the exit status stays testable without os.Exit.
func run(args []string) int {
	exitCode := app.ExitOK

	var (
		lat, lon     float64
		city         string
		start, end   string
		noCache      bool
		configPath   string
		cacheBackend string
	)

	today := time.Now()
	defaultStart := today.Format(dateLayout)
	defaultEnd := today.AddDate(0, 0, 6).Format(dateLayout)

	rootCmd := &cobra.Command{
		Use:           "openmeteo-stats",
		Short:         "Fetch daily temperatures from Open-Meteo and compute stats",
		Long:          "Fetches daily max/min temperatures for a location from Open-Meteo, derives per-day means and reports summary statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := app.Options{
				City:    city,
				Start:   start,
				End:     end,
				NoCache: noCache,
			}
			if cmd.Flags().Changed("lat") {
				opts.Latitude = &lat
			}
			if cmd.Flags().Changed("lon") {
				opts.Longitude = &lon
			}
			exitCode = execute(cmd.Context(), opts, configPath, cacheBackend)
			return nil
		},
	}

	rootCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	rootCmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	rootCmd.Flags().StringVar(&city, "city", "", "City name (will be geocoded). If provided, --lat/--lon are ignored.")
	rootCmd.Flags().StringVar(&start, "start", defaultStart, "Start date YYYY-MM-DD")
	rootCmd.Flags().StringVar(&end, "end", defaultEnd, "End date YYYY-MM-DD")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the response cache")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&cacheBackend, "cache-backend", "", "Cache backend: sqlite, in_memory, memcached or off")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return exitCode
}

// execute wires the components and runs the pipeline.
func execute(ctx context.Context, opts app.Options, configPath, cacheBackend string) int {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("config", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	if cacheBackend != "" {
		cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cacheBackend))
	}

	respCache, closeCache, err := buildCache(cfg, logger)
	if err != nil {
		// Cache is advisory; run uncached rather than failing the invocation.
		logger.Warn("cache unavailable, continuing without it", zap.Error(err))
		respCache = nil
	}
	if closeCache != nil {
		defer closeCache()
	}

	httpClient := client.New(cfg.HTTPTimeout, cfg.RateLimitRPS, respCache, cfg.CacheTTL, cfg.CacheBackend, logger)
	logger.Debug("run configured",
		zap.String("correlation_id", httpClient.CorrelationID()),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	a := &app.App{
		Geocoder: geocode.NewGeocoder(httpClient, cfg.GeocodeURL, logger),
		Fetcher:  forecast.NewFetcher(httpClient, cfg.ForecastURL, logger),
		Logger:   logger,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Stdin:    os.Stdin,
	}

	code := a.Run(ctx, opts)

	if err := observability.LogSnapshot(logger); err != nil {
		logger.Warn("metrics snapshot", zap.Error(err))
	}
	return code
}

// buildCache constructs the configured cache backend. The returned close
// function is nil for backends without connections to release.
func buildCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	switch cfg.CacheBackend {
	case config.BackendOff:
		return nil, nil, nil
	case config.BackendInMemory:
		return cache.NewInMemoryCache(), nil, nil
	case config.BackendMemcached:
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		return mc, func() {
			if err := mc.Close(); err != nil {
				logger.Warn("memcached close", zap.Error(err))
			}
		}, nil
	case config.BackendSQLite:
		sc, err := cache.NewSQLiteCache(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sc, func() {
			if err := sc.Close(); err != nil {
				logger.Warn("cache close", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
