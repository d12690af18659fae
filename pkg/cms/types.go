package cms

import (
	"strconv"
	"time"
)

// Response is the single-resource envelope.
type Response[T any] struct {
	Data T     `json:"data"           yaml:"data"`
	Meta *Meta `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// ListResponse is the collection envelope.
type ListResponse[T any] struct {
	Data []T `json:"data" yaml:"data"`
	Meta Meta `json:"meta" yaml:"meta"`
}

// Meta carries response metadata.
type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty" yaml:"pagination,omitempty"`
}

// PaginationMeta describes the page returned by a collection read.
type PaginationMeta struct {
	Page      int `json:"page"      yaml:"page"`
	PageSize  int `json:"pageSize"  yaml:"page_size"`
	PageCount int `json:"pageCount" yaml:"page_count"`
	Total     int `json:"total"     yaml:"total"`
}

// Ref identifies a resource either by numeric id or by slug.
type Ref struct {
	id   int
	slug string
	isID bool
}

// ByID references a resource by id.
func ByID(id int) Ref {
	return Ref{id: id, isID: true}
}

// BySlug references a resource by slug.
func BySlug(slug string) Ref {
	return Ref{slug: slug}
}

// ParseRef treats an all-digit string as an id and anything else, signs and
// out-of-range numbers included, as a slug.
func ParseRef(value string) Ref {
	if !allDigits(value) {
		return BySlug(value)
	}

	id, err := strconv.Atoi(value)
	if err != nil {
		return BySlug(value)
	}

	return ByID(id)
}

func allDigits(value string) bool {
	if value == "" {
		return false
	}

	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}

	return true
}

// IsID reports whether the ref is numeric.
func (r Ref) IsID() bool { return r.isID }

// ID returns the numeric id.
func (r Ref) ID() int { return r.id }

// Slug returns the slug.
func (r Ref) Slug() string { return r.slug }

// String renders the ref for paths and logs.
func (r Ref) String() string {
	if r.isID {
		return strconv.Itoa(r.id)
	}

	return r.slug
}

// Validate rejects the zero Ref.
func (r Ref) Validate() error {
	if !r.isID && r.slug == "" {
		return ErrInvalidRef
	}

	return nil
}

// Media is an uploaded file.
type Media struct {
	ID              int           `json:"id"                        yaml:"id"`
	URL             string        `json:"url"                       yaml:"url"`
	AlternativeText string        `json:"alternativeText,omitempty" yaml:"alternative_text,omitempty"`
	Width           int           `json:"width,omitempty"           yaml:"width,omitempty"`
	Height          int           `json:"height,omitempty"          yaml:"height,omitempty"`
	Formats         *MediaFormats `json:"formats,omitempty"         yaml:"formats,omitempty"`
}

// MediaFormats holds the generated renditions.
type MediaFormats struct {
	Thumbnail *MediaFormat `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Small     *MediaFormat `json:"small,omitempty"     yaml:"small,omitempty"`
	Medium    *MediaFormat `json:"medium,omitempty"    yaml:"medium,omitempty"`
	Large     *MediaFormat `json:"large,omitempty"     yaml:"large,omitempty"`
}

// MediaFormat is one rendition of a Media.
type MediaFormat struct {
	URL    string `json:"url"    yaml:"url"`
	Width  int    `json:"width"  yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// SEO holds page metadata.
type SEO struct {
	MetaTitle       string         `json:"meta_title,omitempty"       yaml:"meta_title,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty" yaml:"meta_description,omitempty"`
	MetaKeywords    string         `json:"meta_keywords,omitempty"    yaml:"meta_keywords,omitempty"`
	OGTitle         string         `json:"og_title,omitempty"         yaml:"og_title,omitempty"`
	OGDescription   string         `json:"og_description,omitempty"   yaml:"og_description,omitempty"`
	OGImage         *Media         `json:"og_image,omitempty"         yaml:"og_image,omitempty"`
	TwitterCard     string         `json:"twitter_card,omitempty"     yaml:"twitter_card,omitempty"`
	CanonicalURL    string         `json:"canonical_url,omitempty"    yaml:"canonical_url,omitempty"`
	Robots          string         `json:"robots,omitempty"           yaml:"robots,omitempty"`
	StructuredData  map[string]any `json:"structured_data,omitempty"  yaml:"structured_data,omitempty"`
}

// SocialLink is a site's social profile link.
type SocialLink struct {
	Platform     string `json:"platform"        yaml:"platform"`
	URL          string `json:"url"             yaml:"url"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	DisplayOrder int    `json:"display_order"   yaml:"display_order"`
}

// Analytics holds tracking identifiers.
type Analytics struct {
	GoogleAnalyticsID  string `json:"google_analytics_id,omitempty"   yaml:"google_analytics_id,omitempty"`
	GoogleTagManagerID string `json:"google_tag_manager_id,omitempty" yaml:"google_tag_manager_id,omitempty"`
	FacebookPixelID    string `json:"facebook_pixel_id,omitempty"     yaml:"facebook_pixel_id,omitempty"`
	TikTokPixelID      string `json:"tiktok_pixel_id,omitempty"       yaml:"tiktok_pixel_id,omitempty"`
}

// Site is a tenant.
type Site struct {
	ID             int            `json:"id"                     yaml:"id"`
	Name           string         `json:"name"                   yaml:"name"`
	SiteUID        string         `json:"site_uid"               yaml:"site_uid"`
	Domain         string         `json:"domain"                 yaml:"domain"`
	Description    string         `json:"description,omitempty"  yaml:"description,omitempty"`
	Logo           *Media         `json:"logo,omitempty"         yaml:"logo,omitempty"`
	Favicon        *Media         `json:"favicon,omitempty"      yaml:"favicon,omitempty"`
	PrimaryColor   string         `json:"primary_color"          yaml:"primary_color"`
	SecondaryColor string         `json:"secondary_color"        yaml:"secondary_color"`
	SEO            *SEO           `json:"seo,omitempty"          yaml:"seo,omitempty"`
	Analytics      *Analytics     `json:"analytics,omitempty"    yaml:"analytics,omitempty"`
	SocialLinks    []SocialLink   `json:"social_links,omitempty" yaml:"social_links,omitempty"`
	EmailConfig    map[string]any `json:"email_config,omitempty" yaml:"email_config,omitempty"`
	Status         string         `json:"status"                 yaml:"status"`
}

// SiteStats counts a site's content.
type SiteStats struct {
	Blogs    int `json:"blogs"    yaml:"blogs"`
	Products int `json:"products" yaml:"products"`
	Pages    int `json:"pages"    yaml:"pages"`
}

// SiteWithStats is returned by the stats endpoint.
type SiteWithStats struct {
	Data  Site      `json:"data"  yaml:"data"`
	Stats SiteStats `json:"stats" yaml:"stats"`
}

// Category groups products and posts.
type Category struct {
	ID           int        `json:"id"                    yaml:"id"`
	Name         string     `json:"name"                  yaml:"name"`
	Slug         string     `json:"slug"                  yaml:"slug"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Image        *Media     `json:"image,omitempty"       yaml:"image,omitempty"`
	Parent       *Category  `json:"parent,omitempty"      yaml:"parent,omitempty"`
	Children     []Category `json:"children,omitempty"    yaml:"children,omitempty"`
	DisplayOrder int        `json:"display_order"         yaml:"display_order"`
	Featured     bool       `json:"featured"              yaml:"featured"`
}

// Tag labels content.
type Tag struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
}

// ProductVariant is a purchasable option of a product.
type ProductVariant struct {
	Name              string            `json:"name"                      yaml:"name"`
	SKU               string            `json:"sku,omitempty"             yaml:"sku,omitempty"`
	PriceAdjustment   float64           `json:"price_adjustment"          yaml:"price_adjustment"`
	InventoryQuantity int               `json:"inventory_quantity"        yaml:"inventory_quantity"`
	StripePriceID     string            `json:"stripe_price_id,omitempty" yaml:"stripe_price_id,omitempty"`
	Options           map[string]string `json:"options,omitempty"         yaml:"options,omitempty"`
	Image             *Media            `json:"image,omitempty"           yaml:"image,omitempty"`
	IsDefault         bool              `json:"is_default"                yaml:"is_default"`
	Available         bool              `json:"available"                 yaml:"available"`
}

// ProductShipping describes how a product ships.
type ProductShipping struct {
	RequiresShipping bool     `json:"requires_shipping"   yaml:"requires_shipping"`
	Weight           *float64 `json:"weight,omitempty"    yaml:"weight,omitempty"`
	WeightUnit       string   `json:"weight_unit"         yaml:"weight_unit"`
	Length           *float64 `json:"length,omitempty"    yaml:"length,omitempty"`
	Width            *float64 `json:"width,omitempty"     yaml:"width,omitempty"`
	Height           *float64 `json:"height,omitempty"    yaml:"height,omitempty"`
	DimensionUnit    string   `json:"dimension_unit"      yaml:"dimension_unit"`
	FlatRate         *float64 `json:"flat_rate,omitempty" yaml:"flat_rate,omitempty"`
	FreeShipping     bool     `json:"free_shipping"       yaml:"free_shipping"`
	ShippingClass    string   `json:"shipping_class"      yaml:"shipping_class"`
}

// Product is a catalog item.
type Product struct {
	ID                int              `json:"id"                          yaml:"id"`
	Name              string           `json:"name"                        yaml:"name"`
	Slug              string           `json:"slug"                        yaml:"slug"`
	Description       string           `json:"description"                 yaml:"description"`
	ShortDescription  string           `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	Price             float64          `json:"price"                       yaml:"price"`
	CompareAtPrice    *float64         `json:"compare_at_price,omitempty"  yaml:"compare_at_price,omitempty"`
	Currency          string           `json:"currency"                    yaml:"currency"`
	ProductType       string           `json:"product_type"                yaml:"product_type"`
	StripeProductID   string           `json:"stripe_product_id,omitempty" yaml:"stripe_product_id,omitempty"`
	StripePriceID     string           `json:"stripe_price_id,omitempty"   yaml:"stripe_price_id,omitempty"`
	SKU               string           `json:"sku,omitempty"               yaml:"sku,omitempty"`
	InventoryQuantity int              `json:"inventory_quantity"          yaml:"inventory_quantity"`
	TrackInventory    bool             `json:"track_inventory"             yaml:"track_inventory"`
	AllowBackorder    bool             `json:"allow_backorder"             yaml:"allow_backorder"`
	Images            []Media          `json:"images,omitempty"            yaml:"images,omitempty"`
	DigitalFile       *Media           `json:"digital_file,omitempty"      yaml:"digital_file,omitempty"`
	Categories        []Category       `json:"categories,omitempty"        yaml:"categories,omitempty"`
	Tags              []Tag            `json:"tags,omitempty"              yaml:"tags,omitempty"`
	SEO               *SEO             `json:"seo,omitempty"               yaml:"seo,omitempty"`
	Variants          []ProductVariant `json:"variants,omitempty"          yaml:"variants,omitempty"`
	Shipping          *ProductShipping `json:"shipping,omitempty"          yaml:"shipping,omitempty"`
	Featured          bool             `json:"featured"                    yaml:"featured"`
	Status            string           `json:"status"                      yaml:"status"`
	CreatedAt         time.Time        `json:"createdAt"                   yaml:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt"                   yaml:"updated_at"`
	PublishedAt       *time.Time       `json:"publishedAt,omitempty"       yaml:"published_at,omitempty"`
}

// Author wrote a blog post.
type Author struct {
	ID       int    `json:"id"       yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email"    yaml:"email"`
}

// Blog is a post.
type Blog struct {
	ID                  int        `json:"id"                              yaml:"id"`
	Title               string     `json:"title"                           yaml:"title"`
	Slug                string     `json:"slug"                            yaml:"slug"`
	Content             string     `json:"content"                         yaml:"content"`
	Excerpt             string     `json:"excerpt,omitempty"               yaml:"excerpt,omitempty"`
	FeaturedImage       *Media     `json:"featured_image,omitempty"        yaml:"featured_image,omitempty"`
	Gallery             []Media    `json:"gallery,omitempty"               yaml:"gallery,omitempty"`
	Author              *Author    `json:"author,omitempty"                yaml:"author,omitempty"`
	Categories          []Category `json:"categories,omitempty"            yaml:"categories,omitempty"`
	Tags                []Tag      `json:"tags,omitempty"                  yaml:"tags,omitempty"`
	SEO                 *SEO       `json:"seo,omitempty"                   yaml:"seo,omitempty"`
	ReadTime            int        `json:"read_time,omitempty"             yaml:"read_time,omitempty"`
	Featured            bool       `json:"featured"                        yaml:"featured"`
	PublishedAtOverride *time.Time `json:"published_at_override,omitempty" yaml:"published_at_override,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"                       yaml:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt"                       yaml:"updated_at"`
	PublishedAt         *time.Time `json:"publishedAt,omitempty"           yaml:"published_at,omitempty"`
}

// BlogsByCategory is returned by the category listing endpoint.
type BlogsByCategory struct {
	Data     []Blog    `json:"data"     yaml:"data"`
	Category *Category `json:"category" yaml:"category"`
}

// Page is a standalone page.
type Page struct {
	ID               int        `json:"id"                       yaml:"id"`
	Title            string     `json:"title"                    yaml:"title"`
	Slug             string     `json:"slug"                     yaml:"slug"`
	PageType         string     `json:"page_type"                yaml:"page_type"`
	Content          string     `json:"content,omitempty"        yaml:"content,omitempty"`
	Blocks           []any      `json:"blocks,omitempty"         yaml:"blocks,omitempty"`
	FeaturedImage    *Media     `json:"featured_image,omitempty" yaml:"featured_image,omitempty"`
	SEO              *SEO       `json:"seo,omitempty"            yaml:"seo,omitempty"`
	Template         string     `json:"template"                 yaml:"template"`
	ShowInNavigation bool       `json:"show_in_navigation"       yaml:"show_in_navigation"`
	NavigationOrder  int        `json:"navigation_order"         yaml:"navigation_order"`
	CreatedAt        time.Time  `json:"createdAt"                yaml:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt"                yaml:"updated_at"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"    yaml:"published_at,omitempty"`
}

// Campaign is an email campaign.
type Campaign struct {
	ID           int        `json:"id,omitempty"            yaml:"id,omitempty"`
	Name         string     `json:"name"                    yaml:"name"`
	Subject      string     `json:"subject"                 yaml:"subject"`
	Template     string     `json:"template,omitempty"      yaml:"template,omitempty"`
	Recipients   []string   `json:"recipients,omitempty"    yaml:"recipients,omitempty"`
	SiteID       string     `json:"site_id,omitempty"       yaml:"site_id,omitempty"`
	ScheduleDate *time.Time `json:"schedule_date,omitempty" yaml:"schedule_date,omitempty"`
	Status       string     `json:"status,omitempty"        yaml:"status,omitempty"`
}

// CampaignCreateRequest creates a campaign.
type CampaignCreateRequest struct {
	Name         string     `json:"name"`
	Subject      string     `json:"subject"`
	Template     string     `json:"template,omitempty"`
	Recipients   []string   `json:"recipients,omitempty"`
	ScheduleDate *time.Time `json:"schedule_date,omitempty"`
}

// EmailRequest sends one email.
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	From    string `json:"from,omitempty"`
}

// SMSRequest sends one SMS.
type SMSRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// SocialPostRequest publishes to social platforms.
type SocialPostRequest struct {
	Content   string   `json:"content"`
	Image     string   `json:"image,omitempty"`
	Platforms []string `json:"platforms"`
}

// NewsletterRequest sends a newsletter to all subscribers.
type NewsletterRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// MarketingResult is the generic marketing response.
type MarketingResult struct {
	Success bool           `json:"success"           yaml:"success"`
	Data    any            `json:"data,omitempty"    yaml:"data,omitempty"`
	Summary map[string]int `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// LineItem is one checkout line.
type LineItem struct {
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// CheckoutRequest starts a checkout session.
type CheckoutRequest struct {
	LineItems     []LineItem `json:"line_items"`
	CustomerEmail string     `json:"customer_email"`
	SuccessURL    string     `json:"success_url,omitempty"`
	CancelURL     string     `json:"cancel_url,omitempty"`
}

// SubscribeRequest starts a subscription checkout.
type SubscribeRequest struct {
	PriceID       string `json:"price_id"`
	CustomerEmail string `json:"customer_email"`
	SuccessURL    string `json:"success_url,omitempty"`
	CancelURL     string `json:"cancel_url,omitempty"`
}

// CheckoutSession is the payment session created by Checkout or Subscribe.
type CheckoutSession struct {
	SessionID string `json:"sessionId" yaml:"session_id"`
	URL       string `json:"url"       yaml:"url"`
}

// Order is a completed purchase.
type Order struct {
	ID            int            `json:"id"                       yaml:"id"`
	OrderNumber   string         `json:"order_number,omitempty"   yaml:"order_number,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty" yaml:"customer_email,omitempty"`
	Total         float64        `json:"total"                    yaml:"total"`
	Currency      string         `json:"currency,omitempty"       yaml:"currency,omitempty"`
	Status        string         `json:"status"                   yaml:"status"`
	Items         []any          `json:"items,omitempty"          yaml:"items,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"       yaml:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"                yaml:"created_at"`
}

// Slot is a bookable time window.
type Slot struct {
	Start     time.Time `json:"start"     yaml:"start"`
	End       time.Time `json:"end"       yaml:"end"`
	Available bool      `json:"available" yaml:"available"`
}

// Booking is a reservation.
type Booking struct {
	ID            int            `json:"id,omitempty"             yaml:"id,omitempty"`
	EventDate     time.Time      `json:"event_date"               yaml:"event_date"`
	EventEndDate  *time.Time     `json:"event_end_date,omitempty" yaml:"event_end_date,omitempty"`
	DurationHours float64        `json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
	// Resource is the booked entity. The booking schema names this relation goddess.
	Resource      string         `json:"goddess,omitempty"        yaml:"resource,omitempty"`
	CustomerName  string         `json:"customer_name,omitempty"  yaml:"customer_name,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty" yaml:"customer_email,omitempty"`
	Status        string         `json:"status,omitempty"         yaml:"status,omitempty"`
	Details       map[string]any `json:"details,omitempty"        yaml:"details,omitempty"`
}
