package cms

import (
	"context"
	"time"
)

// SitesClient reads the current tenant's site record.
type SitesClient interface {
	Current(ctx context.Context) (*Site, error)
	Stats(ctx context.Context) (*SiteWithStats, error)
}

// ProductsClient reads and writes products.
type ProductsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Product], error)
	// Get returns nil, nil when no product matches.
	Get(ctx context.Context, ref Ref) (*Product, error)
	Featured(ctx context.Context) ([]Product, error)
	ByCategory(ctx context.Context, categorySlug string, params *QueryParams) (*ListResponse[Product], error)
	ByStatus(ctx context.Context, status string) ([]Product, error)
	Create(ctx context.Context, product any) (*Product, error)
	Update(ctx context.Context, id int, product any) (*Product, error)
	Delete(ctx context.Context, id int) error
}

// BlogsClient reads and writes blog posts.
type BlogsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Blog], error)
	// Get returns nil, nil when no post matches.
	Get(ctx context.Context, ref Ref) (*Blog, error)
	Featured(ctx context.Context, limit int) ([]Blog, error)
	ByCategory(ctx context.Context, categorySlug string) (*BlogsByCategory, error)
	Related(ctx context.Context, id int, limit int) ([]Blog, error)
	Create(ctx context.Context, blog any) (*Blog, error)
	Update(ctx context.Context, id int, blog any) (*Blog, error)
	Delete(ctx context.Context, id int) error
}

// PagesClient reads and writes pages.
type PagesClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Page], error)
	// Get returns nil, nil when no page matches.
	Get(ctx context.Context, ref Ref) (*Page, error)
	Navigation(ctx context.Context) ([]Page, error)
	Create(ctx context.Context, page any) (*Page, error)
	Update(ctx context.Context, id int, page any) (*Page, error)
	Delete(ctx context.Context, id int) error
}

// CategoriesClient reads categories.
type CategoriesClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Category], error)
	// Get returns nil, nil when no category matches.
	Get(ctx context.Context, ref Ref) (*Category, error)
	Tree(ctx context.Context) ([]Category, error)
}

// TagsClient reads tags.
type TagsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Tag], error)
	// Get returns nil, nil when no tag matches.
	Get(ctx context.Context, ref Ref) (*Tag, error)
}

// MarketingClient triggers outbound marketing. Every call is a mutation.
type MarketingClient interface {
	CreateCampaign(ctx context.Context, request *CampaignCreateRequest) (*Campaign, error)
	SendEmail(ctx context.Context, request *EmailRequest) (*MarketingResult, error)
	SendSMS(ctx context.Context, request *SMSRequest) (*MarketingResult, error)
	PostSocial(ctx context.Context, request *SocialPostRequest) (*MarketingResult, error)
	SendNewsletter(ctx context.Context, request *NewsletterRequest) (*MarketingResult, error)
}

// CommerceClient starts payments and reads orders. Order reads are never cached.
type CommerceClient interface {
	Checkout(ctx context.Context, request *CheckoutRequest) (*CheckoutSession, error)
	Subscribe(ctx context.Context, request *SubscribeRequest) (*CheckoutSession, error)
	MyOrders(ctx context.Context) ([]Order, error)
	// GetOrder returns nil, nil when the order does not exist.
	GetOrder(ctx context.Context, id int) (*Order, error)
}

// BookingsClient checks availability and books. Availability is never cached.
type BookingsClient interface {
	AvailableSlots(ctx context.Context, resourceID string, date time.Time) ([]Slot, error)
	Create(ctx context.Context, booking *Booking) (*Booking, error)
}

// ContentClients groups the content resources.
type ContentClients interface {
	Sites() SitesClient
	Products() ProductsClient
	Blogs() BlogsClient
	Pages() PagesClient
	Categories() CategoriesClient
	Tags() TagsClient
}

// ServiceClients groups the integration resources.
type ServiceClients interface {
	Marketing() MarketingClient
	Commerce() CommerceClient
	Bookings() BookingsClient
}

// CacheControl exposes cache maintenance.
type CacheControl interface {
	ClearCache(ctx context.Context) error
	// InvalidateCache drops every entry whose key contains pattern and
	// returns how many were removed.
	InvalidateCache(ctx context.Context, pattern string) (int, error)
	CacheStats() CacheStats
}

// Client is a site-scoped API client. It is safe for concurrent use.
type Client interface {
	ContentClients
	ServiceClients
	CacheControl
	SiteID() string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a cms.Client.
//
// Zero values are replaced with defaults by the constructor: 30s timeout,
// 3 retries, 60s cache TTL, in-memory cache.
type Config struct {
	// BaseURL is the CMS origin, e.g. https://cms.example.com.
	BaseURL string `yaml:"base_url"`
	// SiteID is sent as X-Site-ID on every request.
	SiteID string `yaml:"site_id"`
	// Token is sent as a bearer token when set.
	Token string `yaml:"token"`

	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries *int          `yaml:"max_retries"`
	UserAgent  string        `yaml:"user_agent"`

	// BackoffBase is the unit multiplied by 2^n. Defaults to one second.
	BackoffBase time.Duration `yaml:"backoff_base"`
	// BackoffJitter spreads each delay by up to this fraction. Zero keeps the
	// exact 2^n schedule.
	BackoffJitter float64 `yaml:"backoff_jitter"`
	// RetryMutations controls whether POST, PUT and DELETE are retried.
	RetryMutations *bool `yaml:"retry_mutations"`
	// IdempotencyKeys stamps one Idempotency-Key per mutation, reused across
	// its retries.
	IdempotencyKeys bool `yaml:"idempotency_keys"`

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	CacheEnabled *bool         `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	Cache        CacheConfig   `yaml:"cache"`

	Debug   bool             `yaml:"debug"`
	Logger  Logger           `yaml:"-"`
	Metrics *MetricsRecorder `yaml:"-"`
	// Interceptors run around every call, after the cache lookup.
	Interceptors *InterceptorChain `yaml:"-"`
	// CacheBackend overrides Cache when set.
	CacheBackend Cache `yaml:"-"`
}

// Bool returns a pointer to b, for the optional Config fields.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for the optional Config fields.
func Int(n int) *int { return &n }
