package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// MarketingClient implements cms.MarketingClient.
type MarketingClient struct {
	transport *Transport
}

// NewMarketingClient creates a new marketing client.
func NewMarketingClient(transport *Transport) *MarketingClient {
	return &MarketingClient{
		transport: transport,
	}
}

// CreateCampaign implements cms.MarketingClient.CreateCampaign.
func (c *MarketingClient) CreateCampaign(ctx context.Context, request *cms.CampaignCreateRequest) (*cms.Campaign, error) {
	data, err := c.transport.Post(ctx, constants.PathMarketingCampaigns, request)
	if err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}

	var result struct {
		Success bool          `json:"success"`
		Data    *cms.Campaign `json:"data"`
	}

	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing campaign response: %w", err)
	}

	if result.Data == nil {
		return nil, fmt.Errorf("creating campaign: %w", cms.ErrUnexpectedPayload)
	}

	return result.Data, nil
}

// SendEmail implements cms.MarketingClient.SendEmail.
func (c *MarketingClient) SendEmail(ctx context.Context, request *cms.EmailRequest) (*cms.MarketingResult, error) {
	return c.send(ctx, constants.PathMarketingEmail, "sending email", request)
}

// SendSMS implements cms.MarketingClient.SendSMS.
func (c *MarketingClient) SendSMS(ctx context.Context, request *cms.SMSRequest) (*cms.MarketingResult, error) {
	return c.send(ctx, constants.PathMarketingSMS, "sending SMS", request)
}

// PostSocial implements cms.MarketingClient.PostSocial.
func (c *MarketingClient) PostSocial(ctx context.Context, request *cms.SocialPostRequest) (*cms.MarketingResult, error) {
	return c.send(ctx, constants.PathMarketingSocial, "posting to social", request)
}

// SendNewsletter implements cms.MarketingClient.SendNewsletter.
func (c *MarketingClient) SendNewsletter(ctx context.Context, request *cms.NewsletterRequest) (*cms.MarketingResult, error) {
	return c.send(ctx, constants.PathMarketingNewsletter, "sending newsletter", request)
}

func (c *MarketingClient) send(ctx context.Context, path, action string, request any) (*cms.MarketingResult, error) {
	data, err := c.transport.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	var result cms.MarketingResult

	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}

	return &result, nil
}
