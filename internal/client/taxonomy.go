package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// CategoriesClient implements cms.CategoriesClient.
type CategoriesClient struct {
	transport *Transport
}

// NewCategoriesClient creates a new categories client.
func NewCategoriesClient(transport *Transport) *CategoriesClient {
	return &CategoriesClient{
		transport: transport,
	}
}

// List implements cms.CategoriesClient.List.
func (c *CategoriesClient) List(ctx context.Context, params *cms.QueryParams) (*cms.ListResponse[cms.Category], error) {
	defaults := cms.NewQueryParams().WithPopulate(cms.PopulateFields("image"))

	list, err := readList[cms.Category](ctx, c.transport, constants.PathCategories, withDefaults(defaults, params), true)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	return list, nil
}

// Get implements cms.CategoriesClient.Get.
func (c *CategoriesClient) Get(ctx context.Context, ref cms.Ref) (*cms.Category, error) {
	category, err := getByRef[cms.Category](ctx, c.transport, constants.PathCategories, ref, cms.PopulateFields("image", "children"))
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", ref, err)
	}

	return category, nil
}

// Tree implements cms.CategoriesClient.Tree.
func (c *CategoriesClient) Tree(ctx context.Context) ([]cms.Category, error) {
	categories, err := readItems[cms.Category](ctx, c.transport, constants.PathCategoriesTree, nil, true)
	if err != nil {
		return nil, fmt.Errorf("getting category tree: %w", err)
	}

	return categories, nil
}

// TagsClient implements cms.TagsClient.
type TagsClient struct {
	transport *Transport
}

// NewTagsClient creates a new tags client.
func NewTagsClient(transport *Transport) *TagsClient {
	return &TagsClient{
		transport: transport,
	}
}

// List implements cms.TagsClient.List.
func (c *TagsClient) List(ctx context.Context, params *cms.QueryParams) (*cms.ListResponse[cms.Tag], error) {
	list, err := readList[cms.Tag](ctx, c.transport, constants.PathTags, params, true)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	return list, nil
}

// Get implements cms.TagsClient.Get.
func (c *TagsClient) Get(ctx context.Context, ref cms.Ref) (*cms.Tag, error) {
	tag, err := getByRef[cms.Tag](ctx, c.transport, constants.PathTags, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("getting tag %s: %w", ref, err)
	}

	return tag, nil
}
