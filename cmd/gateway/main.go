package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sentinela-gateway/config"
	"sentinela-gateway/middleware/auth"
	authapp "sentinela-gateway/middleware/auth/application"
	authinfra "sentinela-gateway/middleware/auth/infra"
	"sentinela-gateway/middleware/honeypot"
	"sentinela-gateway/middleware/ratelimit"
	ratedomain "sentinela-gateway/middleware/ratelimit/domain"
	"sentinela-gateway/middleware/ratelimit/infra"
	"sentinela-gateway/proxy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	// tiers de rate limit: global e auth são por IP; o de sessão nasce e
	// morre junto com cada sessão (ceifado pelo reaper, não pelo janitor)
	global := infra.NewWindowStore(cfg.GlobalBudget, cfg.GlobalWindow)
	authTier := infra.NewWindowStore(cfg.AuthBudget, cfg.AuthWindow, infra.WithBlockFor(cfg.AuthBlock))
	sessionTier := infra.NewWindowStore(cfg.SessionBudget, cfg.SessionWindow,
		infra.WithBlockFor(cfg.SessionBlock), infra.WithCleanupEvery(0))

	registry := authinfra.NewMemoryRegistry()
	blocklist := authinfra.NewMemoryBlocklist()
	codec := authinfra.NewJWTCodec([]byte(cfg.JWTSecret), cfg.SessionTTL)

	var statsStore ratedomain.StatsStore
	if cfg.StatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			sugar.Fatalw("redis stats ping error", "error", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsBucket(cfg.StatsBucket),
			infra.WithStatsTrackKeys(cfg.StatsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	global.StartJanitor(ctx)
	authTier.StartJanitor(ctx)

	issuer := authapp.Issuer{
		Registry:      registry,
		Tokens:        codec,
		AuthTier:      authTier,
		SessionTier:   sessionTier,
		AllowedOrigin: cfg.AllowedOrigin,
	}
	gate := authapp.Gate{
		Blocklist:       blocklist,
		Registry:        registry,
		Tokens:          codec,
		SessionTier:     sessionTier,
		SignatureSecret: []byte(cfg.SignatureSecret),
	}
	reaper := authapp.Reaper{
		Registry:    registry,
		SessionTier: sessionTier,
		TTL:         cfg.SessionTTL,
		Every:       cfg.ReaperEvery,
		Log:         sugar,
	}
	reaper.Start(ctx)

	backend := proxy.NewHTTPBackend(
		&http.Client{Timeout: 15 * time.Second},
		sugar,
		map[string]proxy.Upstream{
			"weather":   {URL: cfg.WeatherURL, APIKey: cfg.WeatherKey, RPS: cfg.UpstreamRPS, Burst: cfg.UpstreamBurst},
			"direction": {URL: cfg.DirectionURL, APIKey: cfg.DirectionKey, RPS: cfg.UpstreamRPS, Burst: cfg.UpstreamBurst},
			"search":    {URL: cfg.SearchURL, APIKey: cfg.SearchKey, RPS: cfg.UpstreamRPS, Burst: cfg.UpstreamBurst},
		},
	)

	authOpts := auth.Options{
		Issuer:             issuer,
		Gate:               gate,
		TrustXForwardedFor: cfg.TrustXFF,
		CookieTTL:          cfg.SessionTTL,
		Stats:              statsStore,
		Log:                sugar,
	}

	r := chi.NewRouter()
	r.Use(auth.Recoverer(sugar))

	r.Post("/api/auth/session", auth.SessionHandler(authOpts))

	r.Route("/api/proxy", func(pr chi.Router) {
		// ordem do pipeline: tier global -> teto de concorrência -> gate
		pr.Use(ratelimit.Middleware(ratelimit.Options{
			Limiter:             global,
			Stats:               statsStore,
			TrustXForwardedFor:  cfg.TrustXFF,
			RetryAfter:          cfg.RetryAfter,
			AddRateLimitHeaders: cfg.AddRateLimitHeaders,
		}))
		pr.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.ConcurrencyMax,
			AcquireTimeout: cfg.ConcurrencyTimeout,
		}))
		pr.Use(auth.Middleware(authOpts))
		pr.Post("/{service}", proxy.Handler(backend, sugar))
	})

	hp := honeypot.Handler(honeypot.Options{
		Blocklist:          blocklist,
		TrustXForwardedFor: cfg.TrustXFF,
		Log:                sugar,
	})
	for _, path := range cfg.HoneypotPaths {
		r.HandleFunc(path, hp)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	sugar.Infow("gateway listening",
		"addr", cfg.ListenAddr,
		"session_ttl", cfg.SessionTTL,
		"reaper_every", cfg.ReaperEvery,
		"honeypots", len(cfg.HoneypotPaths),
		"stats", cfg.StatsEnabled,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("server error", "error", err)
	}
}
