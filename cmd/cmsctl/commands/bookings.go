package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

var slotCollection = collection[cms.Slot]{
	plural:   "slots",
	singular: "slot",
	header:   []string{"Start", "End", "Available"},
	row: func(s cms.Slot) []string {
		return []string{s.Start.Format(time.Kitchen), s.End.Format(time.Kitchen), yesNo(s.Available)}
	},
	detail: func(s *cms.Slot) tableView {
		return propertyView(
			[2]string{"Start", s.Start.Format(time.RFC3339)},
			[2]string{"End", s.End.Format(time.RFC3339)},
		)
	},
}

// NewBookingsCommand creates the bookings command group.
func NewBookingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookings",
		Aliases: []string{"booking"},
		Short:   "Check booking availability",
		Long:    "Check the bookable time slots of a resource",
	}

	cmd.AddCommand(newBookingsSlotsCommand())

	return cmd
}

func newBookingsSlotsCommand() *cobra.Command {
	var date string

	cmd := newItemsCommand(slotCollection, &cobra.Command{
		Use:   "slots RESOURCE_ID",
		Short: "List available slots",
		Long:  "List the time slots of a resource on one day; availability is always fetched live",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, client cms.Client, args []string) ([]cms.Slot, error) {
		if date == "" {
			return nil, constants.ErrDateRequired
		}

		day, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing --date: %w", err)
		}

		return client.Bookings().AvailableSlots(ctx, args[0], day)
	})

	cmd.Flags().StringVar(&date, "date", "", "day to check, YYYY-MM-DD")

	return cmd
}
