package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// CommerceClient implements cms.CommerceClient. Order reads bypass the cache.
type CommerceClient struct {
	transport *Transport
}

// NewCommerceClient creates a new commerce client.
func NewCommerceClient(transport *Transport) *CommerceClient {
	return &CommerceClient{
		transport: transport,
	}
}

// Checkout implements cms.CommerceClient.Checkout.
func (c *CommerceClient) Checkout(ctx context.Context, request *cms.CheckoutRequest) (*cms.CheckoutSession, error) {
	return c.session(ctx, constants.PathCommerceCheckout, "creating checkout session", request)
}

// Subscribe implements cms.CommerceClient.Subscribe.
func (c *CommerceClient) Subscribe(ctx context.Context, request *cms.SubscribeRequest) (*cms.CheckoutSession, error) {
	return c.session(ctx, constants.PathCommerceSubscribe, "creating subscription", request)
}

func (c *CommerceClient) session(ctx context.Context, path, action string, request any) (*cms.CheckoutSession, error) {
	data, err := c.transport.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	var session cms.CheckoutSession

	err = json.Unmarshal(data, &session)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}

	return &session, nil
}

// MyOrders implements cms.CommerceClient.MyOrders.
func (c *CommerceClient) MyOrders(ctx context.Context) ([]cms.Order, error) {
	orders, err := readItems[cms.Order](ctx, c.transport, constants.PathCommerceMyOrders, nil, false)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	return orders, nil
}

// GetOrder implements cms.CommerceClient.GetOrder.
func (c *CommerceClient) GetOrder(ctx context.Context, id int) (*cms.Order, error) {
	order, err := readOne[cms.Order](ctx, c.transport, constants.PathCommerceOrders+"/"+strconv.Itoa(id), nil, false)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	return order, nil
}
