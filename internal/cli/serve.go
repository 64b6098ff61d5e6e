package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-canon/internal/cache"
	"github.com/geoknoesis/rdf-canon/internal/config"
	"github.com/geoknoesis/rdf-canon/internal/server"
)

func newServeCmd(g *globalOpts) *cobra.Command {
	var addr, redisURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canonicalization HTTP service",
		Long: `Serve exposes POST /v1/canonicalize, GET /healthz and GET /metrics.

Canonical results are cached in Redis when cache.redis_url (or --redis-url) is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseDir, err := g.loadConfig()
			if err != nil {
				return err
			}
			cfg.Merge(&config.Config{
				Server: config.ServerConfig{Addr: addr},
				Cache:  config.CacheConfig{RedisURL: redisURL},
			})
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			srv, closeCache, err := buildServer(cmd, cfg, baseDir)
			if err != nil {
				return err
			}
			defer closeCache()
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for the result cache")

	return cmd
}

// buildServer wires the configuration into a server and returns a func
// releasing its cache.
func buildServer(cmd *cobra.Command, cfg *config.Config, baseDir string) (*server.Server, func(), error) {
	logger := loggerFromContext(cmd.Context())

	canonOptions, err := cfg.CanonOptions()
	if err != nil {
		return nil, nil, err
	}
	parse, err := parseOptions(cfg, baseDir, true)
	if err != nil {
		return nil, nil, err
	}

	var c cache.Cache = cache.NewNullCache()
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(cache.RedisOptions{URL: cfg.Cache.RedisURL})
		if err != nil {
			return nil, nil, fmt.Errorf("connect cache: %w", err)
		}
		logger.Info("Using Redis cache", "ttl", cfg.Cache.TTL)
		c = rc
	}

	srv := server.New(server.Options{
		Logger:       logger,
		Cache:        c,
		CacheTTL:     cfg.Cache.TTL,
		Canon:        canonOptions,
		Parse:        parse,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Timeout:      cfg.Canon.Timeout,
	})
	return srv, func() {
		if err := c.Close(); err != nil {
			logger.Warn("closing cache", "err", err)
		}
	}, nil
}
