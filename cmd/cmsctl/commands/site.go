package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// NewSiteCommand creates the site command group.
func NewSiteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Inspect the configured site",
		Long:  "Show the tenant record and content counts for the configured site",
	}

	cmd.AddCommand(newSiteCurrentCommand())
	cmd.AddCommand(newSiteStatsCommand())

	return cmd
}

func newSiteCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current site",
		Long:  "Show the site record selected by the configured site id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			site, err := client.Sites().Current(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get site: %w", err)
			}

			return render(cmd, site, siteView(site))
		},
	}
}

func newSiteStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show site content counts",
		Long:  "Show the site record with its blog, product and page counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			stats, err := client.Sites().Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get site stats: %w", err)
			}

			view := siteView(&stats.Data)
			view.rows = append(view.rows,
				[]string{"Blogs", strconv.Itoa(stats.Stats.Blogs)},
				[]string{"Products", strconv.Itoa(stats.Stats.Products)},
				[]string{"Pages", strconv.Itoa(stats.Stats.Pages)},
			)

			return render(cmd, stats, view)
		},
	}
}

func siteView(site *cms.Site) tableView {
	if site == nil {
		return tableView{}
	}

	return propertyView(
		[2]string{"ID", strconv.Itoa(site.ID)},
		[2]string{"Name", site.Name},
		[2]string{"Site UID", orNA(site.SiteUID)},
		[2]string{"Domain", orNA(site.Domain)},
		[2]string{"Status", orNA(site.Status)},
	)
}
