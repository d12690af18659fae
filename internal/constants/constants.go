package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP attempt.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as cache backend pings.
	ShortHTTPTimeout = 5 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the number of retries after the first attempt.
	DefaultRetryMax = 3

	// DefaultBackoffBase is multiplied by 2^n to get the delay before retry n.
	DefaultBackoffBase = time.Second

	// MaxBackoffExponent caps the exponent so large retry counts cannot overflow.
	MaxBackoffExponent = 16
)

// Cache defaults.
const (
	// DefaultCacheTTL is how long a cached response stays valid.
	DefaultCacheTTL = 60 * time.Second

	// DefaultCacheSize bounds the in-memory cache when no size is configured.
	DefaultCacheSize = 1000

	// DefaultCacheKeyPrefix namespaces keys in shared cache backends.
	DefaultCacheKeyPrefix = "sitecms:"

	// DefaultNATSBucket is the JetStream key-value bucket used by the NATS cache.
	DefaultNATSBucket = "sitecms_cache"

	// CacheScanBatch is the SCAN COUNT hint for redis-compatible backends.
	CacheScanBatch = 100
)

// Rate limiting.
const (
	// DefaultRateBurst is used when a rate limit is set without a burst.
	DefaultRateBurst = 1
)

// HTTP headers.
const (
	HeaderSiteID         = "X-Site-ID"
	HeaderAuthorization  = "Authorization"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderContentType    = "Content-Type"
	HeaderAccept         = "Accept"
	HeaderUserAgent      = "User-Agent"

	ContentTypeJSON  = "application/json"
	DefaultUserAgent = "sitecms-client/1.0"
)

// Error message fallbacks.
const (
	UnknownErrorMessage = "Unknown error"
	MaxErrorBodyLogSize = 512
)

// Facade defaults.
const (
	DefaultFeaturedBlogsLimit = 5
	DefaultRelatedBlogsLimit  = 3
	StandardPageSize          = 25
)

// API paths.
const (
	PathSitesCurrent = "/api/sites/current"
	PathSitesStats   = "/api/sites/stats"

	PathProducts         = "/api/products"
	PathProductsFeatured = "/api/products/featured"
	PathProductsStatus   = "/api/products/status"

	PathBlogs         = "/api/blogs"
	PathBlogsFeatured = "/api/blogs/featured"
	PathBlogsCategory = "/api/blogs/category"

	PathPages           = "/api/pages"
	PathPagesSlug       = "/api/pages/slug"
	PathPagesNavigation = "/api/pages/navigation"

	PathCategories     = "/api/categories"
	PathCategoriesTree = "/api/categories/tree"

	PathTags = "/api/tags"

	PathMarketingCampaigns  = "/api/marketing/create-campaign"
	PathMarketingEmail      = "/api/marketing/send-email"
	PathMarketingSMS        = "/api/marketing/send-sms"
	PathMarketingSocial     = "/api/marketing/post-social"
	PathMarketingNewsletter = "/api/marketing/send-newsletter"

	PathCommerceCheckout  = "/api/commerce/checkout"
	PathCommerceSubscribe = "/api/commerce/subscribe"
	PathCommerceMyOrders  = "/api/commerce/my-orders"
	PathCommerceOrders    = "/api/commerce/orders"

	PathBookings          = "/api/bookings"
	PathBookingsAvailable = "/api/bookings/available-slots"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)
