package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/internal/http"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// Client implements the cms.Client interface.
type Client struct {
	transport *Transport
	siteID    string
	baseURL   string
	logger    cms.Logger
	closer    func() error

	// Resource clients
	sites      cms.SitesClient
	products   cms.ProductsClient
	blogs      cms.BlogsClient
	pages      cms.PagesClient
	categories cms.CategoriesClient
	tags       cms.TagsClient
	marketing  cms.MarketingClient
	commerce   cms.CommerceClient
	bookings   cms.BookingsClient
}

// retryPolicyFromConfig resolves retry settings, keeping 3 retries on a 1s
// base unless the config says otherwise.
func retryPolicyFromConfig(config *cms.Config) *http.RetryPolicy {
	policy := http.DefaultRetryPolicy()

	if config.MaxRetries != nil {
		policy.MaxRetries = max(*config.MaxRetries, 0)
	}

	if config.BackoffBase > 0 {
		policy.Base = config.BackoffBase
	}

	policy.Jitter = config.BackoffJitter

	return policy
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *cms.Config) []http.Option {
	httpOpts := []http.Option{
		http.WithRetryPolicy(retryPolicyFromConfig(config)),
		http.WithIdempotencyKeys(config.IdempotencyKeys),
	}

	if config.Token != "" {
		httpOpts = append(httpOpts, http.WithToken(config.Token))
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.Timeout))
	}

	if config.RetryMutations != nil {
		httpOpts = append(httpOpts, http.WithRetryMutations(*config.RetryMutations))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.Metrics != nil {
		httpOpts = append(httpOpts, http.WithMetrics(config.Metrics))
	}

	return httpOpts
}

// createCache resolves the response cache. Returns nil when caching is off.
func createCache(ctx context.Context, config *cms.Config) (cms.Cache, error) {
	if config.CacheEnabled != nil && !*config.CacheEnabled {
		return nil, nil
	}

	if config.CacheBackend != nil {
		return config.CacheBackend, nil
	}

	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	cacheConfig := config.Cache
	if cacheConfig.Type == "" {
		cacheConfig.Type = cms.CacheTypeMemory
	}

	if cacheConfig.Type == cms.CacheTypeNone {
		return nil, nil
	}

	cache, err := cms.NewCacheFromConfig(ctx, cacheConfig, config.SiteID, ttl)
	if err != nil {
		return nil, fmt.Errorf("creating %s cache: %w", cacheConfig.Type, err)
	}

	return cache, nil
}

// New creates a client bound to config.SiteID.
func New(ctx context.Context, config *cms.Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, cms.ErrBaseURLRequired
	}

	if config.SiteID == "" {
		return nil, cms.ErrSiteIDRequired
	}

	logger := config.Logger
	if logger == nil {
		logger = cms.NoOpLogger{}
	}

	cache, err := createCache(ctx, config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.BaseURL, config.SiteID, createHTTPClientOptions(config)...)

	client := &Client{
		transport: NewTransport(httpClient, cache,
			WithTransportLogger(logger),
			WithTransportMetrics(config.Metrics),
		),
		siteID:  config.SiteID,
		baseURL: config.BaseURL,
		logger:  logger,
	}

	// Backends that hold connections are closed with the client, unless the
	// caller supplied them.
	if closer, ok := cache.(interface{ Close() error }); ok && config.CacheBackend == nil {
		client.closer = closer.Close
	}

	client.initializeResourceClients()

	logger.Debug("cms client initialized", map[string]interface{}{
		"base_url": config.BaseURL,
		"site_id":  config.SiteID,
	})

	return client, nil
}

// SiteID implements cms.Client.SiteID.
func (c *Client) SiteID() string {
	return c.siteID
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transport exposes the underlying cached transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// ClearCache implements cms.CacheControl.ClearCache.
func (c *Client) ClearCache(ctx context.Context) error {
	err := c.transport.ClearCache(ctx)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	return nil
}

// InvalidateCache implements cms.CacheControl.InvalidateCache.
func (c *Client) InvalidateCache(ctx context.Context, pattern string) (int, error) {
	removed, err := c.transport.InvalidateCache(ctx, pattern)
	if err != nil {
		return removed, fmt.Errorf("invalidating cache entries matching %q: %w", pattern, err)
	}

	return removed, nil
}

// CacheStats implements cms.CacheControl.CacheStats.
func (c *Client) CacheStats() cms.CacheStats {
	return c.transport.CacheStats()
}

// Close releases cache connections owned by the client.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}

	return c.closer()
}

// Resource client accessors

// Sites implements cms.Client.Sites.
func (c *Client) Sites() cms.SitesClient {
	return c.sites
}

// Products implements cms.Client.Products.
func (c *Client) Products() cms.ProductsClient {
	return c.products
}

// Blogs implements cms.Client.Blogs.
func (c *Client) Blogs() cms.BlogsClient {
	return c.blogs
}

// Pages implements cms.Client.Pages.
func (c *Client) Pages() cms.PagesClient {
	return c.pages
}

// Categories implements cms.Client.Categories.
func (c *Client) Categories() cms.CategoriesClient {
	return c.categories
}

// Tags implements cms.Client.Tags.
func (c *Client) Tags() cms.TagsClient {
	return c.tags
}

// Marketing implements cms.Client.Marketing.
func (c *Client) Marketing() cms.MarketingClient {
	return c.marketing
}

// Commerce implements cms.Client.Commerce.
func (c *Client) Commerce() cms.CommerceClient {
	return c.commerce
}

// Bookings implements cms.Client.Bookings.
func (c *Client) Bookings() cms.BookingsClient {
	return c.bookings
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.sites = NewSitesClient(c.transport)
	c.products = NewProductsClient(c.transport)
	c.blogs = NewBlogsClient(c.transport)
	c.pages = NewPagesClient(c.transport)
	c.categories = NewCategoriesClient(c.transport)
	c.tags = NewTagsClient(c.transport)
	c.marketing = NewMarketingClient(c.transport)
	c.commerce = NewCommerceClient(c.transport)
	c.bookings = NewBookingsClient(c.transport)
}
