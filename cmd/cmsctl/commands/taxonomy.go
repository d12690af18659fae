package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

var categoryCollection = collection[cms.Category]{
	plural:   "categories",
	singular: "category",
	header:   []string{"ID", "Name", "Slug", "Children", "Featured"},
	row: func(c cms.Category) []string {
		return []string{strconv.Itoa(c.ID), c.Name, c.Slug, strconv.Itoa(len(c.Children)), yesNo(c.Featured)}
	},
	detail: func(c *cms.Category) tableView {
		parent := NotAvailable
		if c.Parent != nil {
			parent = c.Parent.Name
		}

		return propertyView(
			[2]string{"ID", strconv.Itoa(c.ID)},
			[2]string{"Name", c.Name},
			[2]string{"Slug", c.Slug},
			[2]string{"Description", orNA(c.Description)},
			[2]string{"Parent", parent},
			[2]string{"Children", categoryNames(c.Children)},
			[2]string{"Featured", yesNo(c.Featured)},
		)
	},
}

var tagCollection = collection[cms.Tag]{
	plural:   "tags",
	singular: "tag",
	header:   []string{"ID", "Name", "Slug"},
	row: func(t cms.Tag) []string {
		return []string{strconv.Itoa(t.ID), t.Name, t.Slug}
	},
	detail: func(t *cms.Tag) tableView {
		return propertyView(
			[2]string{"ID", strconv.Itoa(t.ID)},
			[2]string{"Name", t.Name},
			[2]string{"Slug", t.Slug},
		)
	},
}

// NewCategoriesCommand creates the categories command group.
func NewCategoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Browse categories",
		Long:    "List and inspect the site's category hierarchy",
	}

	cmd.AddCommand(newListCommand(categoryCollection, func(ctx context.Context, client cms.Client, params *cms.QueryParams) (*cms.ListResponse[cms.Category], error) {
		return client.Categories().List(ctx, params)
	}))
	cmd.AddCommand(newGetCommand(categoryCollection, func(ctx context.Context, client cms.Client, ref cms.Ref) (*cms.Category, error) {
		return client.Categories().Get(ctx, ref)
	}))
	cmd.AddCommand(newCategoriesTreeCommand())

	return cmd
}

func newCategoriesTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the category tree",
		Long:  "Show root categories with their children nested below",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			roots, err := client.Categories().Tree(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch category tree: %w", err)
			}

			view := tableView{header: []string{"ID", "Category", "Slug"}}
			appendCategoryRows(&view, roots, 0)

			return render(cmd, roots, view)
		},
	}
}

func appendCategoryRows(view *tableView, categories []cms.Category, depth int) {
	for _, category := range categories {
		view.rows = append(view.rows, []string{
			strconv.Itoa(category.ID),
			strings.Repeat("  ", depth) + category.Name,
			category.Slug,
		})

		appendCategoryRows(view, category.Children, depth+1)
	}
}

// NewTagsCommand creates the tags command group.
func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "Browse tags",
		Long:    "List and inspect the site's tags",
	}

	cmd.AddCommand(newListCommand(tagCollection, func(ctx context.Context, client cms.Client, params *cms.QueryParams) (*cms.ListResponse[cms.Tag], error) {
		return client.Tags().List(ctx, params)
	}))
	cmd.AddCommand(newGetCommand(tagCollection, func(ctx context.Context, client cms.Client, ref cms.Ref) (*cms.Tag, error) {
		return client.Tags().Get(ctx, ref)
	}))

	return cmd
}
