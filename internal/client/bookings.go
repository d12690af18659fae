package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

const slotDateLayout = "2006-01-02"

// BookingsClient implements cms.BookingsClient. Availability always goes to
// the server.
type BookingsClient struct {
	transport *Transport
}

// NewBookingsClient creates a new bookings client.
func NewBookingsClient(transport *Transport) *BookingsClient {
	return &BookingsClient{
		transport: transport,
	}
}

// AvailableSlots implements cms.BookingsClient.AvailableSlots.
func (c *BookingsClient) AvailableSlots(ctx context.Context, resourceID string, date time.Time) ([]cms.Slot, error) {
	if strings.TrimSpace(resourceID) == "" {
		return nil, fmt.Errorf("listing available slots: %w", cms.ErrInvalidRef)
	}

	path := constants.PathBookingsAvailable + "/" + url.PathEscape(resourceID)
	params := cms.NewQueryParams().WithExtra("date", date.Format(slotDateLayout))

	slots, err := readItems[cms.Slot](ctx, c.transport, path, params, false)
	if err != nil {
		return nil, fmt.Errorf("listing available slots for %s: %w", resourceID, err)
	}

	return slots, nil
}

// Create implements cms.BookingsClient.Create.
func (c *BookingsClient) Create(ctx context.Context, booking *cms.Booking) (*cms.Booking, error) {
	created, err := create[cms.Booking](ctx, c.transport, constants.PathBookings, booking)
	if err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	return created, nil
}
