package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlcmd/translator/internal/analytics"
	"github.com/nlcmd/translator/internal/grammar"
	"github.com/nlcmd/translator/internal/parser"
	"github.com/nlcmd/translator/internal/phrasetable"
	"github.com/nlcmd/translator/internal/rewrite"
	"github.com/nlcmd/translator/internal/translate"
	"github.com/nlcmd/translator/internal/translate/cache"
	"github.com/nlcmd/translator/internal/translate/handler"
	"github.com/nlcmd/translator/pkg/config"
	"github.com/nlcmd/translator/pkg/health"
	"github.com/nlcmd/translator/pkg/kafka"
	"github.com/nlcmd/translator/pkg/logger"
	"github.com/nlcmd/translator/pkg/metrics"
	"github.com/nlcmd/translator/pkg/middleware"
	"github.com/nlcmd/translator/pkg/postgres"
	pkgredis "github.com/nlcmd/translator/pkg/redis"
	"github.com/nlcmd/translator/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting translator service", "port", cfg.Server.Port)

	g, err := grammar.LoadSyntax(cfg.Grammar.MaxPipelineDepth, cfg.Grammar.SyntaxPath)
	if err != nil {
		slog.Error("failed to load grammar", "path", cfg.Grammar.SyntaxPath, "error", err)
		os.Exit(1)
	}

	table, err := phrasetable.Load(cfg.PhraseTable.Path)
	if err != nil {
		slog.Error("failed to load phrase table", "path", cfg.PhraseTable.Path, "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.PhraseTableEntries.Set(float64(table.Snippets()))
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		metricsServer.Start()
	}

	p := parser.New(table, grammar.NewEnumerator(g), parser.Config{
		MinCommandLength:       cfg.Parser.MinCommandLength,
		MaxCommandLength:       cfg.Parser.MaxCommandLength,
		RedundantWordPenalty:   cfg.Parser.RedundantWordPenalty,
		UngroundedTokenPenalty: cfg.Parser.UngroundedTokenPenalty,
		TopK:                   cfg.Parser.TopK,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rewriteStore *rewrite.Store
	var pgClient *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{}, func() error {
		var connErr error
		pgClient, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		slog.Warn("postgres unavailable, paraphrase expansion disabled", "error", err)
	} else {
		defer pgClient.Close()
		rewriteStore = rewrite.NewStore(pgClient)
		if err := rewriteStore.EnsureSchema(ctx); err != nil {
			slog.Warn("rewrite schema setup failed, paraphrase expansion disabled", "error", err)
			rewriteStore = nil
		}
	}

	var lookup translate.RewriteLookup
	if rewriteStore != nil {
		lookup = rewriteStore
	}
	translator := translate.New(p, lookup, m)

	var translationCache *cache.TranslationCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, translation caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		translationCache = cache.New(redisClient, cfg.Redis)
		slog.Info("translation cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	collector := analytics.NewCollector(
		kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.TranslateEvents), 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator(cfg.Kafka, cfg.Kafka.Topics.TranslateEvents)
	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)

	checker := health.NewChecker()
	checker.Register("grammar", func(ctx context.Context) health.ComponentHealth {
		if names := g.CommandNames(); len(names) > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d commands", len(names))}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "empty grammar"}
	})
	checker.Register("phrase_table", func(ctx context.Context) health.ComponentHealth {
		if table.Snippets() > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d snippets", table.Snippets())}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "empty phrase table"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if pgClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := pgClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(translator, translationCache, collector, m, 10, cfg.Parser.TopK)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/translate", h.Translate)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("translator service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("translator service stopped")
}
