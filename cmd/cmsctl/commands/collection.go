package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// collection describes how one resource renders.
type collection[T any] struct {
	plural   string
	singular string
	header   []string
	row      func(item T) []string
	detail   func(item *T) tableView
}

func (c collection[T]) view(items []T, meta cms.Meta) tableView {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, c.row(item))
	}

	return tableView{header: c.header, rows: rows, footer: paginationFooter(meta)}
}

type (
	listFunc[T any]  func(ctx context.Context, client cms.Client, params *cms.QueryParams) (*cms.ListResponse[T], error)
	getFunc[T any]   func(ctx context.Context, client cms.Client, ref cms.Ref) (*T, error)
	itemsFunc[T any] func(ctx context.Context, client cms.Client, args []string) ([]T, error)
)

func newListCommand[T any](c collection[T], list listFunc[T]) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + c.plural,
		Long:  titleCaser.String(c.plural) + " of the configured site, with optional filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := list(cmd.Context(), client, params)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", c.plural, err)
			}

			return render(cmd, result, c.view(result.Data, result.Meta))
		},
	}

	flags.register(cmd)

	return cmd
}

func newGetCommand[T any](c collection[T], get getFunc[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID_OR_SLUG",
		Short: "Get a " + c.singular,
		Long:  titleCaser.String(c.singular) + " details by numeric id or slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := cms.ParseRef(args[0])

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			item, err := get(cmd.Context(), client, ref)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", c.singular, err)
			}

			if item == nil {
				return notFound(c.singular, ref)
			}

			return render(cmd, item, c.detail(item))
		},
	}
}

// newItemsCommand renders a plain slice of items returned by fetch.
func newItemsCommand[T any](c collection[T], cmd *cobra.Command, fetch itemsFunc[T]) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		client, err := CreateClient(cmd.Context())
		if err != nil {
			return err
		}

		items, err := fetch(cmd.Context(), client, args)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", c.plural, err)
		}

		return render(cmd, items, c.view(items, cms.Meta{}))
	}

	return cmd
}
