package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/config"
	"github.com/kapu/warmtalk-go/internal/server"
	"github.com/kapu/warmtalk-go/internal/service/ai"
	"github.com/kapu/warmtalk-go/internal/service/cache"
	"github.com/kapu/warmtalk-go/internal/service/database"
	"github.com/kapu/warmtalk-go/internal/service/history"
)

// Container bundles assembled services for constructing the server.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Translator *ai.Translator
	History    *history.Service
	Server     *server.Server

	closers []func()
}

// Close releases infrastructure resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services. All heavy-weight
// initialization (cache/DB/AI clients) happens here so main stays focused on
// lifecycle.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	// Cache and optional archive
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	c.closers = append(c.closers, func() {
		_ = cacheSvc.Close()
	})

	var archiver history.Archiver
	if cfg.Postgres.Host != "" {
		postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = postgresSvc.Close()
		})

		if err := postgresSvc.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare archive schema: %w", err)
		}
		archiver = postgresSvc
	} else {
		logger.Info("Postgres archive disabled (no POSTGRES_HOST)")
	}

	c.History = history.NewService(cacheSvc, archiver, cfg.History.Limit, logger)

	// AI stack
	gemini, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.ActiveModel(), cfg.Gemini.ThinkingBudget, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini provider: %w", err)
	}

	var fallback ai.StreamProvider
	if openai := ai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger); openai != nil {
		fallback = openai
	}

	c.Translator = ai.NewTranslator(gemini, fallback, cfg.OpenAI.EnableFallback, logger)

	c.Server = server.New(cfg.Server.Addr, c.Translator, c.History, logger)

	logger.Info("Services initialized",
		zap.String("model", cfg.Gemini.ActiveModel()),
		zap.Bool("fallback", fallback != nil && cfg.OpenAI.EnableFallback),
		zap.Bool("archive", archiver != nil),
		zap.Int("history_limit", c.History.Limit()),
	)

	return c, nil
}
