package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// PagesClient implements cms.PagesClient.
type PagesClient struct {
	transport *Transport
}

// NewPagesClient creates a new pages client.
func NewPagesClient(transport *Transport) *PagesClient {
	return &PagesClient{
		transport: transport,
	}
}

// List implements cms.PagesClient.List.
func (c *PagesClient) List(ctx context.Context, params *cms.QueryParams) (*cms.ListResponse[cms.Page], error) {
	defaults := cms.NewQueryParams().WithPopulate(cms.PopulateFields("featured_image", "seo"))

	list, err := readList[cms.Page](ctx, c.transport, constants.PathPages, withDefaults(defaults, params), true)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	return list, nil
}

// Get implements cms.PagesClient.Get. Slugs resolve through the dedicated
// slug endpoint rather than a collection filter.
func (c *PagesClient) Get(ctx context.Context, ref cms.Ref) (*cms.Page, error) {
	err := ref.Validate()
	if err != nil {
		return nil, fmt.Errorf("getting page: %w", err)
	}

	var page *cms.Page

	if ref.IsID() {
		params := cms.NewQueryParams().WithPopulate(cms.PopulateFields("blocks", "featured_image", "seo"))
		page, err = readOne[cms.Page](ctx, c.transport, constants.PathPages+"/"+ref.String(), params, true)
	} else {
		page, err = readOne[cms.Page](ctx, c.transport, constants.PathPagesSlug+"/"+url.PathEscape(ref.Slug()), nil, true)
	}

	if err != nil {
		return nil, fmt.Errorf("getting page %s: %w", ref, err)
	}

	return page, nil
}

// Navigation implements cms.PagesClient.Navigation. The server returns only
// id, title, slug, page_type and navigation_order, ordered for menus.
func (c *PagesClient) Navigation(ctx context.Context) ([]cms.Page, error) {
	pages, err := readItems[cms.Page](ctx, c.transport, constants.PathPagesNavigation, nil, true)
	if err != nil {
		return nil, fmt.Errorf("listing navigation pages: %w", err)
	}

	return pages, nil
}

// Create implements cms.PagesClient.Create.
func (c *PagesClient) Create(ctx context.Context, page any) (*cms.Page, error) {
	created, err := create[cms.Page](ctx, c.transport, constants.PathPages, page)
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return created, nil
}

// Update implements cms.PagesClient.Update.
func (c *PagesClient) Update(ctx context.Context, id int, page any) (*cms.Page, error) {
	updated, err := update[cms.Page](ctx, c.transport, constants.PathPages, id, page)
	if err != nil {
		return nil, fmt.Errorf("updating page %d: %w", id, err)
	}

	return updated, nil
}

// Delete implements cms.PagesClient.Delete.
func (c *PagesClient) Delete(ctx context.Context, id int) error {
	err := remove(ctx, c.transport, constants.PathPages, id)
	if err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}

	return nil
}
