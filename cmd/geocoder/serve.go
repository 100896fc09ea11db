package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/config"
	"github.com/jageocoder/abr-geocoder/app/controllers"
	"github.com/jageocoder/abr-geocoder/app/services"
	"github.com/jageocoder/abr-geocoder/internal/search"
	"github.com/jageocoder/abr-geocoder/internal/store"
	"github.com/jageocoder/abr-geocoder/routes"
)

func newServeCmd() *cobra.Command {
	var generation string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP lookup API named in §6 (/v1/geocode, /v1/suggest, /healthz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dbPath := config.C.ReferenceDB
			if dbPath == "" {
				dbPath = filepath.Join(config.C.DataDir, "reference.db")
			}
			st, err := store.Open(dbPath, logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer st.Close()

			tries := store.LoadAsync(ctx, st, logger)
			select {
			case <-tries.Ready():
			case <-ctx.Done():
				return ctx.Err()
			}

			geocodeService := services.NewGeocodeService(tries, logger)

			cache := buildCache(ctx, logger)
			searcher := buildSearcher(logger)

			addressController := controllers.NewAddressController(geocodeService, cache, searcher, generation, logger)

			router := gin.New()
			routes.SetupAllRoutes(router, addressController)

			srv := &http.Server{Addr: config.C.ListenAddr, Handler: router}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			logger.Info("geocoder HTTP API listening", zap.String("addr", config.C.ListenAddr))

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&generation, "data-generation", "unversioned", "reference data generation tag reported in responses")
	return cmd
}

// buildCache wires the two-tier result cache (Redis L1, MongoDB L2) when
// both connection strings are configured, falling back to an in-process
// LocalCache so --serve never hard-fails on a missing cache backend.
func buildCache(ctx context.Context, logger *zap.Logger) services.IGeocodeCache {
	if config.C.Cache.RedisURL == "" || config.C.Cache.MongoURI == "" {
		logger.Warn("cache backends not configured, using in-process cache only")
		return services.NewLocalCache(config.C.Cache.TTL)
	}

	redisCache, err := services.NewRedisCache(config.C.Cache.RedisURL, config.C.Cache.TTL, logger)
	if err != nil {
		logger.Warn("redis cache unavailable, falling back to local cache", zap.Error(err))
		return services.NewLocalCache(config.C.Cache.TTL)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.C.Cache.MongoURI))
	if err != nil {
		logger.Warn("mongo connect failed, falling back to redis-only cache", zap.Error(err))
		return redisCache
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Warn("mongo ping failed, falling back to redis-only cache", zap.Error(err))
		return redisCache
	}

	mongoCache, err := services.NewMongoCache(client.Database("abr_geocoder"), config.C.Cache.L1Size, logger)
	if err != nil {
		logger.Warn("mongo cache init failed, falling back to redis-only cache", zap.Error(err))
		return redisCache
	}

	if err := mongoCache.WarmUp(ctx, config.C.Cache.L1Size/2); err != nil {
		logger.Warn("cache warm-up failed", zap.Error(err))
	}

	return services.NewHybridCache(redisCache, mongoCache, logger)
}

// buildSearcher wires the typeahead suggester when Suggest.Host is
// configured; a nil searcher makes /v1/suggest respond 503 rather than
// prevent the rest of the API from starting.
func buildSearcher(logger *zap.Logger) *search.GazetteerSearcher {
	if config.C.Suggest.Host == "" {
		logger.Warn("suggest index not configured, /v1/suggest will be unavailable")
		return nil
	}
	searcher, err := search.NewGazetteerSearcher(search.SearchConfig{
		Host:      config.C.Suggest.Host,
		APIKey:    config.C.Suggest.APIKey,
		IndexName: config.C.Suggest.IndexName,
		Timeout:   10 * time.Second,
	}, logger)
	if err != nil {
		logger.Warn("suggest index unreachable, /v1/suggest will be unavailable", zap.Error(err))
		return nil
	}
	return searcher
}
