package cmd

import (
	"net/http"
	"strings"

	"github.com/fulmenhq/gofulmen/logging"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core/engine"
	"github.com/movelens/movelens/internal/core/pokeapi"
	"github.com/movelens/movelens/internal/core/store"
)

// newLimiter builds the store-backed limiter with config overrides applied.
func newLimiter(cfg *config.Config, db *store.Store) *engine.RateLimiter {
	limiter := &engine.RateLimiter{Store: db}
	limiter.ApplyOverrides(cfg.RateLimits)
	limiter.ApplySafetyMargin(cfg.RateLimitMargin)
	return limiter
}

// buildClient wires the rate limiter and payload cache into a PokeAPI
// client. useCache=false bypasses the payload cache for this run.
func buildClient(cfg *config.Config, db *store.Store, useCache bool) *pokeapi.Client {
	limiter := newLimiter(cfg, db)

	return &pokeapi.Client{
		Store:      db,
		HTTPClient: &http.Client{Timeout: cfg.PokeAPI.Timeout},
		Limiter:    limiter,
		CachePolicy: pokeapi.CachePolicy{
			SpeciesTTL: cfg.Cache.SpeciesTTL,
			MoveTTL:    cfg.Cache.MoveTTL,
		},
		UseCache:  useCache && cfg.PokeAPI.UseCache,
		BaseURL:   cfg.PokeAPI.BaseURL,
		UserAgent: userAgent(cfg),
	}
}

func newGenerator(cfg *config.Config, client *pokeapi.Client) *engine.Generator {
	return &engine.Generator{
		Species:     client,
		Moves:       client,
		Tuning:      cfg.Engine,
		Source:      pokeapi.Source,
		ToolVersion: versionInfo.Version,
	}
}

func buildGenerator(cfg *config.Config, db *store.Store, useCache bool) *engine.Generator {
	return newGenerator(cfg, buildClient(cfg, db, useCache))
}

func newService(cfg *config.Config, generator *engine.Generator, logger *logging.Logger) *engine.Service {
	return engine.NewService(generator, engine.ServiceOptions{
		CacheSize: cfg.Cache.ResultSize,
		CacheTTL:  cfg.Cache.ResultTTL,
		Logger:    logger,
	})
}

func buildService(cfg *config.Config, db *store.Store, useCache bool, logger *logging.Logger) *engine.Service {
	return newService(cfg, buildGenerator(cfg, db, useCache), logger)
}

func userAgent(cfg *config.Config) string {
	agent := strings.TrimSpace(cfg.PokeAPI.UserAgent)
	if agent == "" {
		agent = "movelens"
	}
	if version := strings.TrimSpace(versionInfo.Version); version != "" && !strings.Contains(agent, "/") {
		agent += "/" + version
	}
	return agent
}
