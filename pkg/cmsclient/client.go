// Package cmsclient provides the main entry point for creating site-scoped CMS clients
package cmsclient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fivetwenty-io/sitecms-client/internal/client"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// EnvPrefix prefixes every variable read by LoadConfigFromEnv.
const EnvPrefix = "CMS_"

// New creates a new CMS client for one site.
func New(ctx context.Context, config *cms.Config) (cms.Client, error) {
	if config == nil {
		return nil, cms.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, cms.ErrBaseURLRequired
	}

	// Normalize base URL
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	config.BaseURL = baseURL

	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NewWithSite creates an anonymous client for baseURL and siteID.
func NewWithSite(ctx context.Context, baseURL, siteID string) (cms.Client, error) {
	return New(ctx, &cms.Config{
		BaseURL: baseURL,
		SiteID:  siteID,
	})
}

// NewWithToken creates a client that authenticates with a bearer token.
func NewWithToken(ctx context.Context, baseURL, siteID, token string) (cms.Client, error) {
	return New(ctx, &cms.Config{
		BaseURL: baseURL,
		SiteID:  siteID,
		Token:   token,
	})
}

// envConfig lists the Config fields that can come from the environment.
type envConfig struct {
	BaseURL string `env:"BASE_URL"`
	SiteID  string `env:"SITE_ID"`
	Token   string `env:"TOKEN"`

	Timeout         time.Duration `env:"TIMEOUT"`
	MaxRetries      *int          `env:"MAX_RETRIES"`
	UserAgent       string        `env:"USER_AGENT"`
	BackoffBase     time.Duration `env:"BACKOFF_BASE"`
	BackoffJitter   float64       `env:"BACKOFF_JITTER"`
	RetryMutations  *bool         `env:"RETRY_MUTATIONS"`
	IdempotencyKeys bool          `env:"IDEMPOTENCY_KEYS"`
	RateLimit       float64       `env:"RATE_LIMIT"`
	RateBurst       int           `env:"RATE_BURST"`

	CacheEnabled *bool           `env:"CACHE_ENABLED"`
	CacheTTL     time.Duration   `env:"CACHE_TTL"`
	Cache        cms.CacheConfig `envPrefix:"CACHE_"`

	Debug bool `env:"DEBUG"`
}

func (e *envConfig) config() *cms.Config {
	return &cms.Config{
		BaseURL:         e.BaseURL,
		SiteID:          e.SiteID,
		Token:           e.Token,
		Timeout:         e.Timeout,
		MaxRetries:      e.MaxRetries,
		UserAgent:       e.UserAgent,
		BackoffBase:     e.BackoffBase,
		BackoffJitter:   e.BackoffJitter,
		RetryMutations:  e.RetryMutations,
		IdempotencyKeys: e.IdempotencyKeys,
		RateLimit:       e.RateLimit,
		RateBurst:       e.RateBurst,
		CacheEnabled:    e.CacheEnabled,
		CacheTTL:        e.CacheTTL,
		Cache:           e.Cache,
		Debug:           e.Debug,
	}
}

// LoadConfigFromEnv reads a Config from CMS_* variables. The named env files
// are loaded first and must exist; with no names a .env file in the working
// directory is loaded when present. Variables already set in the environment
// win.
func LoadConfigFromEnv(files ...string) (*cms.Config, error) {
	err := loadEnvFiles(files)
	if err != nil {
		return nil, err
	}

	var settings envConfig

	err = env.ParseWithOptions(&settings, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return settings.config(), nil
}

func loadEnvFiles(files []string) error {
	err := godotenv.Load(files...)
	if err == nil {
		return nil
	}

	if len(files) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("loading env files: %w", err)
}

// NewFromEnv creates a client from CMS_* variables.
func NewFromEnv(ctx context.Context, files ...string) (cms.Client, error) {
	config, err := LoadConfigFromEnv(files...)
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}
