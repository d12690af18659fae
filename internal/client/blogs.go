package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// BlogsClient implements cms.BlogsClient.
type BlogsClient struct {
	transport *Transport
}

// NewBlogsClient creates a new blogs client.
func NewBlogsClient(transport *Transport) *BlogsClient {
	return &BlogsClient{
		transport: transport,
	}
}

// List implements cms.BlogsClient.List. Newest posts come first unless the
// caller sorts otherwise.
func (c *BlogsClient) List(ctx context.Context, params *cms.QueryParams) (*cms.ListResponse[cms.Blog], error) {
	defaults := cms.NewQueryParams().
		WithPopulate(cms.PopulateFields("featured_image", "author", "categories", "tags")).
		WithSort("publishedAt", cms.Desc)

	list, err := readList[cms.Blog](ctx, c.transport, constants.PathBlogs, withDefaults(defaults, params), true)
	if err != nil {
		return nil, fmt.Errorf("listing blogs: %w", err)
	}

	return list, nil
}

// Get implements cms.BlogsClient.Get.
func (c *BlogsClient) Get(ctx context.Context, ref cms.Ref) (*cms.Blog, error) {
	populate := cms.PopulateFields("featured_image", "gallery", "author", "categories", "tags", "seo")

	blog, err := getByRef[cms.Blog](ctx, c.transport, constants.PathBlogs, ref, populate)
	if err != nil {
		return nil, fmt.Errorf("getting blog %s: %w", ref, err)
	}

	return blog, nil
}

// Featured implements cms.BlogsClient.Featured. A non-positive limit uses 5.
func (c *BlogsClient) Featured(ctx context.Context, limit int) ([]cms.Blog, error) {
	if limit <= 0 {
		limit = constants.DefaultFeaturedBlogsLimit
	}

	params := cms.NewQueryParams().WithExtra("limit", limit)

	blogs, err := readItems[cms.Blog](ctx, c.transport, constants.PathBlogsFeatured, params, true)
	if err != nil {
		return nil, fmt.Errorf("listing featured blogs: %w", err)
	}

	return blogs, nil
}

// ByCategory implements cms.BlogsClient.ByCategory.
func (c *BlogsClient) ByCategory(ctx context.Context, categorySlug string) (*cms.BlogsByCategory, error) {
	path := constants.PathBlogsCategory + "/" + url.PathEscape(categorySlug)

	data, err := c.transport.Read(ctx, path, nil, true)
	if err != nil {
		return nil, fmt.Errorf("listing blogs in category %s: %w", categorySlug, err)
	}

	var result cms.BlogsByCategory

	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing blogs in category %s: %w", categorySlug, err)
	}

	return &result, nil
}

// Related implements cms.BlogsClient.Related. A non-positive limit uses 3.
func (c *BlogsClient) Related(ctx context.Context, id int, limit int) ([]cms.Blog, error) {
	if limit <= 0 {
		limit = constants.DefaultRelatedBlogsLimit
	}

	path := constants.PathBlogs + "/" + strconv.Itoa(id) + "/related"
	params := cms.NewQueryParams().WithExtra("limit", limit)

	blogs, err := readItems[cms.Blog](ctx, c.transport, path, params, true)
	if err != nil {
		return nil, fmt.Errorf("listing blogs related to %d: %w", id, err)
	}

	return blogs, nil
}

// Create implements cms.BlogsClient.Create.
func (c *BlogsClient) Create(ctx context.Context, blog any) (*cms.Blog, error) {
	created, err := create[cms.Blog](ctx, c.transport, constants.PathBlogs, blog)
	if err != nil {
		return nil, fmt.Errorf("creating blog: %w", err)
	}

	return created, nil
}

// Update implements cms.BlogsClient.Update.
func (c *BlogsClient) Update(ctx context.Context, id int, blog any) (*cms.Blog, error) {
	updated, err := update[cms.Blog](ctx, c.transport, constants.PathBlogs, id, blog)
	if err != nil {
		return nil, fmt.Errorf("updating blog %d: %w", id, err)
	}

	return updated, nil
}

// Delete implements cms.BlogsClient.Delete.
func (c *BlogsClient) Delete(ctx context.Context, id int) error {
	err := remove(ctx, c.transport, constants.PathBlogs, id)
	if err != nil {
		return fmt.Errorf("deleting blog %d: %w", id, err)
	}

	return nil
}
