package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

var blogCollection = collection[cms.Blog]{
	plural:   "blog posts",
	singular: "blog post",
	header:   []string{"ID", "Title", "Slug", "Author", "Featured", "Published"},
	row: func(b cms.Blog) []string {
		return []string{strconv.Itoa(b.ID), b.Title, b.Slug, authorName(b.Author), yesNo(b.Featured), formatTime(b.PublishedAt)}
	},
	detail: func(b *cms.Blog) tableView {
		return propertyView(
			[2]string{"ID", strconv.Itoa(b.ID)},
			[2]string{"Title", b.Title},
			[2]string{"Slug", b.Slug},
			[2]string{"Author", authorName(b.Author)},
			[2]string{"Categories", categoryNames(b.Categories)},
			[2]string{"Tags", strconv.Itoa(len(b.Tags))},
			[2]string{"Read Time", strconv.Itoa(b.ReadTime) + " min"},
			[2]string{"Featured", yesNo(b.Featured)},
			[2]string{"Published", formatTime(b.PublishedAt)},
		)
	},
}

// NewBlogsCommand creates the blogs command group.
func NewBlogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blogs",
		Aliases: []string{"blog", "posts"},
		Short:   "Browse blog posts",
		Long:    "List and inspect the site's blog posts",
	}

	cmd.AddCommand(newListCommand(blogCollection, func(ctx context.Context, client cms.Client, params *cms.QueryParams) (*cms.ListResponse[cms.Blog], error) {
		return client.Blogs().List(ctx, params)
	}))
	cmd.AddCommand(newGetCommand(blogCollection, func(ctx context.Context, client cms.Client, ref cms.Ref) (*cms.Blog, error) {
		return client.Blogs().Get(ctx, ref)
	}))
	cmd.AddCommand(newBlogsFeaturedCommand())
	cmd.AddCommand(newBlogsByCategoryCommand())
	cmd.AddCommand(newBlogsRelatedCommand())

	return cmd
}

func newBlogsFeaturedCommand() *cobra.Command {
	var limit int

	cmd := newItemsCommand(blogCollection, &cobra.Command{
		Use:   "featured",
		Short: "List featured blog posts",
		Long:  "List the most recent featured blog posts",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, client cms.Client, _ []string) ([]cms.Blog, error) {
		return client.Blogs().Featured(ctx, limit)
	})

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum posts (server default 5)")

	return cmd
}

func newBlogsRelatedCommand() *cobra.Command {
	var limit int

	cmd := newItemsCommand(blogCollection, &cobra.Command{
		Use:   "related BLOG_ID",
		Short: "List related blog posts",
		Long:  "List posts sharing categories or tags with the given post",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, client cms.Client, args []string) ([]cms.Blog, error) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("blog id %q: %w", args[0], cms.ErrInvalidRef)
		}

		return client.Blogs().Related(ctx, id, limit)
	})

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum posts (server default 3)")

	return cmd
}

func newBlogsByCategoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "by-category CATEGORY_SLUG",
		Short: "List blog posts in a category",
		Long:  "List the blog posts filed under the given category slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Blogs().ByCategory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list blog posts in category %q: %w", args[0], err)
			}

			view := blogCollection.view(result.Data, cms.Meta{})
			if result.Category != nil {
				view.footer = "Category: " + result.Category.Name
			}

			return render(cmd, result, view)
		},
	}
}

func authorName(author *cms.Author) string {
	if author == nil {
		return NotAvailable
	}

	return orNA(author.Username)
}
