package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

var pageCollection = collection[cms.Page]{
	plural:   "pages",
	singular: "page",
	header:   []string{"ID", "Title", "Slug", "Type", "In Navigation"},
	row: func(p cms.Page) []string {
		return []string{strconv.Itoa(p.ID), p.Title, p.Slug, orNA(p.PageType), yesNo(p.ShowInNavigation)}
	},
	detail: func(p *cms.Page) tableView {
		return propertyView(
			[2]string{"ID", strconv.Itoa(p.ID)},
			[2]string{"Title", p.Title},
			[2]string{"Slug", p.Slug},
			[2]string{"Type", orNA(p.PageType)},
			[2]string{"Template", orNA(p.Template)},
			[2]string{"Blocks", strconv.Itoa(len(p.Blocks))},
			[2]string{"In Navigation", yesNo(p.ShowInNavigation)},
			[2]string{"Published", formatTime(p.PublishedAt)},
		)
	},
}

// NewPagesCommand creates the pages command group.
func NewPagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pages",
		Aliases: []string{"page"},
		Short:   "Browse pages",
		Long:    "List and inspect the site's standalone pages",
	}

	cmd.AddCommand(newListCommand(pageCollection, func(ctx context.Context, client cms.Client, params *cms.QueryParams) (*cms.ListResponse[cms.Page], error) {
		return client.Pages().List(ctx, params)
	}))
	cmd.AddCommand(newGetCommand(pageCollection, func(ctx context.Context, client cms.Client, ref cms.Ref) (*cms.Page, error) {
		return client.Pages().Get(ctx, ref)
	}))
	cmd.AddCommand(newItemsCommand(pageCollection, &cobra.Command{
		Use:   "navigation",
		Short: "List navigation pages",
		Long:  "List the pages shown in the site navigation, in menu order",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, client cms.Client, _ []string) ([]cms.Page, error) {
		return client.Pages().Navigation(ctx)
	}))

	return cmd
}
