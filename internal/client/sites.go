package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// SitesClient implements cms.SitesClient.
type SitesClient struct {
	transport *Transport
}

// NewSitesClient creates a new sites client.
func NewSitesClient(transport *Transport) *SitesClient {
	return &SitesClient{
		transport: transport,
	}
}

// Current implements cms.SitesClient.Current. Unlike slug and id lookups a
// 404 here is an error: it means the configured site ID is unknown.
func (c *SitesClient) Current(ctx context.Context) (*cms.Site, error) {
	params := cms.NewQueryParams().WithPopulate(
		cms.PopulateFields("logo", "favicon", "seo", "analytics", "social_links", "email_config"),
	)

	data, err := c.transport.Read(ctx, constants.PathSitesCurrent, params, true)
	if err != nil {
		return nil, fmt.Errorf("getting current site: %w", err)
	}

	site, err := decodeOne[cms.Site](constants.PathSitesCurrent, data)
	if err != nil {
		return nil, err
	}

	if site == nil {
		return nil, constants.ErrEmptySiteResponse
	}

	return site, nil
}

// Stats implements cms.SitesClient.Stats.
func (c *SitesClient) Stats(ctx context.Context) (*cms.SiteWithStats, error) {
	params := cms.NewQueryParams().WithPopulate(cms.PopulateFields("logo", "favicon", "seo"))

	data, err := c.transport.Read(ctx, constants.PathSitesStats, params, true)
	if err != nil {
		return nil, fmt.Errorf("getting site stats: %w", err)
	}

	var stats cms.SiteWithStats

	err = json.Unmarshal(data, &stats)
	if err != nil {
		return nil, fmt.Errorf("parsing site stats: %w", err)
	}

	return &stats, nil
}
