package main

import (
	"context"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/social-pulse/internal/platform/auth"
	platformcfg "github.com/example/social-pulse/internal/platform/config"
	"github.com/example/social-pulse/internal/platform/db"
	"github.com/example/social-pulse/internal/platform/events"
	"github.com/example/social-pulse/internal/platform/fieldcrypt"
	"github.com/example/social-pulse/internal/platform/httpserver"
	"github.com/example/social-pulse/internal/platform/logging"
	"github.com/example/social-pulse/internal/platform/natsconn"
	"github.com/example/social-pulse/internal/platform/run"
	"github.com/example/social-pulse/services/comments/internal/cache"
	"github.com/example/social-pulse/services/comments/internal/config"
	"github.com/example/social-pulse/services/comments/internal/handlers"
	"github.com/example/social-pulse/services/comments/internal/ratelimit"
	"github.com/example/social-pulse/services/comments/internal/sanitize"
	"github.com/example/social-pulse/services/comments/internal/search"
	"github.com/example/social-pulse/services/comments/internal/semantic"
	"github.com/example/social-pulse/services/comments/internal/store"
)

func main() {
	appCfg, err := platformcfg.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(appCfg.ServiceName, appCfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	isProd := strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production")

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		run.Exit(1)
	}
	codec, err := fieldcrypt.New(cfg.EncryptionKey)
	if err != nil {
		log.Error("FIELD_ENCRYPTION_KEY is required", zap.Error(err))
		run.Exit(1)
	}

	comments, closeStore := initStore(log, cfg, isProd)
	if closeStore != nil {
		defer closeStore()
	}

	limiter, err := ratelimit.New(cfg.RedisDSN, isProd)
	if err != nil {
		log.Error("rate limiter init failed", zap.Error(err))
		run.Exit(1)
	}
	if cfg.RedisDSN == "" {
		log.Warn("REDIS_DSN not set, using in-process rate limiting (development only)")
	}

	// NATS carries audit events and cache invalidation. Both degrade to
	// no-ops when unavailable outside production.
	var nc *nats.Conn
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		nc, err = natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
		if err != nil {
			if isProd {
				log.Error("nats is required in production but unavailable", zap.Error(err))
				run.Exit(1)
			}
			log.Warn("nats unavailable, audit events disabled", zap.Error(err))
		} else {
			defer nc.Close()
			js, err := nc.JetStream()
			if err != nil {
				log.Warn("jetstream unavailable, audit events disabled", zap.Error(err))
			} else {
				publisher = events.New(js, log)
			}
		}
	}

	searchCache := cache.NewTTLCache(cfg.CacheTTL, nc, events.SubjectCacheInvalidateKey)
	invalidate := func(userID string) {
		searchCache.Invalidate(userID)
		if nc != nil {
			_ = nc.Publish(events.SubjectCacheInvalidateKey, []byte(userID))
		}
	}

	var scorer semantic.Scorer
	if cfg.SemanticURL != "" {
		scorer = semantic.New(cfg.SemanticURL, cfg.SemanticAPIKey)
	}

	deps := handlers.Deps{
		Cfg:       cfg,
		Store:     comments,
		Codec:     codec,
		Sanitizer: sanitize.New(cfg.MinQueryLen, cfg.MaxQueryLen),
		Suggester: search.NewSuggester(),
		Scorer:    scorer,
		Cache:     searchCache,
		Events:    publisher,
		Logger:    log,
	}
	engine := deps.Moderator(invalidate)
	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{Logger: log})
	handlers.Mount(r, deps, verifier, limiter, engine)

	srv := httpserver.New(httpserver.Options{
		Addr:        appCfg.HTTP.Addr,
		ServiceName: appCfg.ServiceName,
		Logger:      log,
		Router:      r,
	})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			runner.Graceful(srv.Shutdown)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the CommentStore backend. Production requires Postgres;
// development falls back to the in-memory store.
func initStore(log *zap.Logger, cfg config.Config, isProd bool) (store.CommentStore, func()) {
	if cfg.DatabaseURL == "" {
		if isProd {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory comment store (development only)")
		return store.NewInMemoryCommentStore(), nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if isProd {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory comment store", zap.Error(err))
		return store.NewInMemoryCommentStore(), nil
	}

	log.Info("comment store: postgres")
	return store.NewPostgresCommentStore(pool), pool.Close
}
