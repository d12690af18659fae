package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// ProductsClient implements cms.ProductsClient.
type ProductsClient struct {
	transport *Transport
}

// NewProductsClient creates a new products client.
func NewProductsClient(transport *Transport) *ProductsClient {
	return &ProductsClient{
		transport: transport,
	}
}

// List implements cms.ProductsClient.List.
func (c *ProductsClient) List(ctx context.Context, params *cms.QueryParams) (*cms.ListResponse[cms.Product], error) {
	defaults := cms.NewQueryParams().WithPopulate(cms.PopulateFields("images", "categories", "tags", "seo"))

	list, err := readList[cms.Product](ctx, c.transport, constants.PathProducts, withDefaults(defaults, params), true)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return list, nil
}

// Get implements cms.ProductsClient.Get.
func (c *ProductsClient) Get(ctx context.Context, ref cms.Ref) (*cms.Product, error) {
	populate := cms.PopulateFields("images", "categories", "tags", "variants", "shipping", "seo")

	product, err := getByRef[cms.Product](ctx, c.transport, constants.PathProducts, ref, populate)
	if err != nil {
		return nil, fmt.Errorf("getting product %s: %w", ref, err)
	}

	return product, nil
}

// Featured implements cms.ProductsClient.Featured.
func (c *ProductsClient) Featured(ctx context.Context) ([]cms.Product, error) {
	products, err := readItems[cms.Product](ctx, c.transport, constants.PathProductsFeatured, nil, true)
	if err != nil {
		return nil, fmt.Errorf("listing featured products: %w", err)
	}

	return products, nil
}

// ByCategory implements cms.ProductsClient.ByCategory.
func (c *ProductsClient) ByCategory(ctx context.Context, categorySlug string, params *cms.QueryParams) (*cms.ListResponse[cms.Product], error) {
	defaults := cms.NewQueryParams().
		WithFilter(cms.Eq("categories.slug", categorySlug)).
		WithPopulate(cms.PopulateFields("images", "categories"))

	list, err := readList[cms.Product](ctx, c.transport, constants.PathProducts, withDefaults(defaults, params), true)
	if err != nil {
		return nil, fmt.Errorf("listing products in category %s: %w", categorySlug, err)
	}

	return list, nil
}

// ByStatus implements cms.ProductsClient.ByStatus.
func (c *ProductsClient) ByStatus(ctx context.Context, status string) ([]cms.Product, error) {
	path := constants.PathProductsStatus + "/" + url.PathEscape(status)

	products, err := readItems[cms.Product](ctx, c.transport, path, nil, true)
	if err != nil {
		return nil, fmt.Errorf("listing %s products: %w", status, err)
	}

	return products, nil
}

// Create implements cms.ProductsClient.Create.
func (c *ProductsClient) Create(ctx context.Context, product any) (*cms.Product, error) {
	created, err := create[cms.Product](ctx, c.transport, constants.PathProducts, product)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return created, nil
}

// Update implements cms.ProductsClient.Update.
func (c *ProductsClient) Update(ctx context.Context, id int, product any) (*cms.Product, error) {
	updated, err := update[cms.Product](ctx, c.transport, constants.PathProducts, id, product)
	if err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}

	return updated, nil
}

// Delete implements cms.ProductsClient.Delete.
func (c *ProductsClient) Delete(ctx context.Context, id int) error {
	err := remove(ctx, c.transport, constants.PathProducts, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}

	return nil
}
