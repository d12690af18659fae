package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

var productCollection = collection[cms.Product]{
	plural:   "products",
	singular: "product",
	header:   []string{"ID", "Name", "Slug", "Price", "Status", "Featured"},
	row: func(p cms.Product) []string {
		return []string{strconv.Itoa(p.ID), p.Name, p.Slug, formatPrice(p.Price, p.Currency), orNA(p.Status), yesNo(p.Featured)}
	},
	detail: func(p *cms.Product) tableView {
		return propertyView(
			[2]string{"ID", strconv.Itoa(p.ID)},
			[2]string{"Name", p.Name},
			[2]string{"Slug", p.Slug},
			[2]string{"Price", formatPrice(p.Price, p.Currency)},
			[2]string{"Type", orNA(p.ProductType)},
			[2]string{"SKU", orNA(p.SKU)},
			[2]string{"Inventory", strconv.Itoa(p.InventoryQuantity)},
			[2]string{"Variants", strconv.Itoa(len(p.Variants))},
			[2]string{"Categories", categoryNames(p.Categories)},
			[2]string{"Status", orNA(p.Status)},
			[2]string{"Featured", yesNo(p.Featured)},
			[2]string{"Published", formatTime(p.PublishedAt)},
		)
	},
}

// NewProductsCommand creates the products command group.
func NewProductsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse products",
		Long:    "List and inspect the site's product catalog",
	}

	cmd.AddCommand(newListCommand(productCollection, func(ctx context.Context, client cms.Client, params *cms.QueryParams) (*cms.ListResponse[cms.Product], error) {
		return client.Products().List(ctx, params)
	}))
	cmd.AddCommand(newGetCommand(productCollection, func(ctx context.Context, client cms.Client, ref cms.Ref) (*cms.Product, error) {
		return client.Products().Get(ctx, ref)
	}))
	cmd.AddCommand(newProductsFeaturedCommand())
	cmd.AddCommand(newProductsByCategoryCommand())
	cmd.AddCommand(newProductsByStatusCommand())

	return cmd
}

func newProductsFeaturedCommand() *cobra.Command {
	return newItemsCommand(productCollection, &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		Long:  "List the products flagged as featured",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, client cms.Client, _ []string) ([]cms.Product, error) {
		return client.Products().Featured(ctx)
	})
}

func newProductsByStatusCommand() *cobra.Command {
	return newItemsCommand(productCollection, &cobra.Command{
		Use:   "by-status STATUS",
		Short: "List products by status",
		Long:  "List the products in a publication status such as active or draft",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, client cms.Client, args []string) ([]cms.Product, error) {
		return client.Products().ByStatus(ctx, args[0])
	})
}

func newProductsByCategoryCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "by-category CATEGORY_SLUG",
		Short: "List products in a category",
		Long:  "List the products whose categories include the given slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Products().ByCategory(cmd.Context(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to list products in category %q: %w", args[0], err)
			}

			return render(cmd, result, productCollection.view(result.Data, result.Meta))
		},
	}

	flags.register(cmd)

	return cmd
}

func formatPrice(amount float64, currency string) string {
	if currency == "" {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}

	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}

func categoryNames(categories []cms.Category) string {
	if len(categories) == 0 {
		return NotAvailable
	}

	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}

	return strings.Join(names, ", ")
}
