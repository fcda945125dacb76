// Package config carrega a configuração do gateway a partir de variáveis de
// ambiente, com defaults sensatos para tudo que não é segredo.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string
	TrustXFF   bool

	// Segredos compartilhados: um assina a credencial (JWT), o outro a
	// assinatura opcional de requisição (X-Request-Signature).
	JWTSecret       string
	SignatureSecret string

	// AllowedOrigin precisa aparecer no referrer da emissão de sessão.
	AllowedOrigin string

	SessionTTL  time.Duration
	ReaperEvery time.Duration

	// Tiers de rate limit.
	GlobalBudget  int
	GlobalWindow  time.Duration
	AuthBudget    int
	AuthWindow    time.Duration
	AuthBlock     time.Duration
	SessionBudget int
	SessionWindow time.Duration
	SessionBlock  time.Duration

	AddRateLimitHeaders bool
	RetryAfter          time.Duration

	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration

	HoneypotPaths []string

	// Provedores pagos.
	WeatherURL    string
	WeatherKey    string
	DirectionURL  string
	DirectionKey  string
	SearchURL     string
	SearchKey     string
	UpstreamRPS   float64
	UpstreamBurst int

	// Stats best-effort em Redis (opcional).
	StatsEnabled       bool
	StatsRedisAddr     string
	StatsRedisPassword string
	StatsRedisDB       int
	StatsPrefix        string
	StatsTTL           time.Duration
	StatsBucket        string
	StatsTrackKeys     bool
}

func Load() (Config, error) {
	cfg := Config{}
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.TrustXFF = getenvBoolDefault("TRUST_XFF", false)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.SignatureSecret = os.Getenv("SIGNATURE_SECRET")
	cfg.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")

	cfg.SessionTTL = getenvDurationDefault("SESSION_TTL", 1*time.Hour)
	cfg.ReaperEvery = getenvDurationDefault("REAPER_EVERY", 15*time.Minute)

	cfg.GlobalBudget = getenvIntDefault("RATE_GLOBAL_BUDGET", 100)
	cfg.GlobalWindow = getenvDurationDefault("RATE_GLOBAL_WINDOW", time.Minute)
	cfg.AuthBudget = getenvIntDefault("RATE_AUTH_BUDGET", 5)
	cfg.AuthWindow = getenvDurationDefault("RATE_AUTH_WINDOW", time.Minute)
	cfg.AuthBlock = getenvDurationDefault("RATE_AUTH_BLOCK", 5*time.Minute)
	cfg.SessionBudget = getenvIntDefault("RATE_SESSION_BUDGET", 50)
	cfg.SessionWindow = getenvDurationDefault("RATE_SESSION_WINDOW", time.Minute)
	cfg.SessionBlock = getenvDurationDefault("RATE_SESSION_BLOCK", time.Minute)

	cfg.AddRateLimitHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.RetryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)

	cfg.ConcurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.ConcurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.HoneypotPaths = splitPaths(getenvDefault("HONEYPOT_PATHS",
		"/api/v1/internal/config,/api/admin/backup,/api/debug/vars"))

	cfg.WeatherURL = os.Getenv("WEATHER_API_URL")
	cfg.WeatherKey = os.Getenv("WEATHER_API_KEY")
	cfg.DirectionURL = os.Getenv("DIRECTION_API_URL")
	cfg.DirectionKey = os.Getenv("DIRECTION_API_KEY")
	cfg.SearchURL = os.Getenv("SEARCH_API_URL")
	cfg.SearchKey = os.Getenv("SEARCH_API_KEY")
	cfg.UpstreamRPS = getenvFloatDefault("UPSTREAM_RPS", 0)
	cfg.UpstreamBurst = getenvIntDefault("UPSTREAM_BURST", 0)

	cfg.StatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.StatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.StatsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.StatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.StatsPrefix = getenvDefault("RATE_STATS_PREFIX", "sentinela:stats")
	cfg.StatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.StatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.StatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.SignatureSecret == "" {
		return Config{}, errors.New("SIGNATURE_SECRET is required")
	}
	if cfg.AllowedOrigin == "" {
		return Config{}, errors.New("ALLOWED_ORIGIN is required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.GlobalBudget <= 0 || cfg.AuthBudget <= 0 || cfg.SessionBudget <= 0 {
		return Config{}, errors.New("rate limit budgets must be > 0")
	}
	if cfg.GlobalWindow <= 0 || cfg.AuthWindow <= 0 || cfg.SessionWindow <= 0 {
		return Config{}, errors.New("rate limit windows must be > 0")
	}
	if cfg.ConcurrencyMax < 0 {
		return Config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.StatsEnabled && strings.TrimSpace(cfg.StatsRedisAddr) == "" {
		return Config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}

	return cfg, nil
}

func splitPaths(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
