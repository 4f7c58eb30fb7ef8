// Package config reads service settings from a .env file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"MiniCart/pkg/kit"
)

const MinSecretLen = 32

var ErrTokenTTL = errors.New("TOKEN_TTL must not be shorter than SESSION_TTL")

var ErrWeakSecret = fmt.Errorf("SESSION_SECRET is required and must be at least %d chars", MinSecretLen)

type Options struct {
	Port     string
	LogLevel string

	CatalogURL  string
	CartURL     string
	DatabaseURL string

	SessionSecret    string
	SessionTTL       time.Duration
	SessionRateLimit int
	// TokenTTL caps a session's total life; SessionTTL is the idle timeout
	// that activity keeps pushing back.
	TokenTTL time.Duration

	// TrustedProxies lists the peers allowed to set X-Forwarded-For.
	TrustedProxies []netip.Prefix

	MetricsToken string

	ShowCategory  bool
	ResetSelector bool
}

// Load parses args for the named service. defaultPort is used when neither
// PORT nor -port is given. A missing .env file is not an error.
func Load(service, defaultPort string, args []string) (*Options, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	ttl, err := envDuration("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := envDuration("TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	limit, err := envInt("SESSION_RATE_LIMIT", 30)
	if err != nil {
		return nil, err
	}
	showCategory, err := envBool("SHOW_CATEGORY", true)
	if err != nil {
		return nil, err
	}
	resetSelector, err := envBool("RESET_SELECTOR", true)
	if err != nil {
		return nil, err
	}

	o := &Options{}
	fs := flag.NewFlagSet(service, flag.ContinueOnError)
	fs.StringVar(&o.Port, "port", getEnvOrDefault("PORT", defaultPort), "port to listen on")
	fs.StringVar(&o.LogLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.CatalogURL, "catalog-url", getEnvOrDefault("CATALOG_URL", ""), "catalog service base URL; empty serves the built-in catalog")
	fs.StringVar(&o.CartURL, "cart-url", getEnvOrDefault("CART_URL", "http://cart:8083"), "cart service base URL")
	fs.StringVar(&o.DatabaseURL, "database-url", getEnvOrDefault("DATABASE_URL", ""), "postgres connection string")
	fs.StringVar(&o.SessionSecret, "session-secret", getEnvOrDefault("SESSION_SECRET", ""), "session token signing secret")
	fs.DurationVar(&o.SessionTTL, "session-ttl", ttl, "idle time before a cart session expires")
	fs.DurationVar(&o.TokenTTL, "token-ttl", tokenTTL, "lifetime of a session token, the longest a session can last")
	trusted := getEnvOrDefault("TRUSTED_PROXIES", "")
	fs.StringVar(&trusted, "trusted-proxies", trusted, "comma-separated IPs or CIDRs whose X-Forwarded-For is honored")
	fs.IntVar(&o.SessionRateLimit, "session-rate-limit", limit, "sessions per minute per client IP, 0 disables")
	fs.StringVar(&o.MetricsToken, "metrics-token", getEnvOrDefault("METRICS_TOKEN", ""), "bearer token for /metrics, empty denies every scrape")
	fs.BoolVar(&o.ShowCategory, "show-category", showCategory, "show product category in cart rows")
	fs.BoolVar(&o.ResetSelector, "reset-selector", resetSelector, "reset the quantity selector after add")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.TrustedProxies, err = kit.ParseTrustedProxies(trusted); err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if o.TokenTTL < o.SessionTTL {
		return nil, fmt.Errorf("%w: token ttl %s is shorter than session ttl %s", ErrTokenTTL, o.TokenTTL, o.SessionTTL)
	}
	return o, nil
}

func (o *Options) Addr() string {
	return ":" + o.Port
}

func (o *Options) CheckSessionSecret() error {
	if len(o.SessionSecret) < MinSecretLen {
		return ErrWeakSecret
	}
	return nil
}

// getEnvOrDefault treats an empty variable as unset.
func getEnvOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := getEnvOrDefault(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
