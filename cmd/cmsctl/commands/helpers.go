package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
	"github.com/fivetwenty-io/sitecms-client/pkg/cmsclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Yes          = "yes"
	No           = "no"
	Masked       = "***"

	dateLayout = "2006-01-02"
)

// Viper keys shared by flags, environment and the config file.
const (
	KeyBaseURL = "base_url"
	KeySiteID  = "site_id"
	KeyToken   = "token"
	KeyOutput  = "output"
	KeyVerbose = "verbose"
	KeyConfig  = "config"
)

// Common static errors used throughout the commands package.
var (
	ErrResourceNotFound = errors.New("not found")
	ErrInvalidFilter    = errors.New("invalid filter, expected field=value")
)

var titleCaser = cases.Title(language.English)

// CreateClient builds a client from the merged flag, env and file settings.
func CreateClient(ctx context.Context) (cms.Client, error) {
	baseURL := viper.GetString(KeyBaseURL)
	if baseURL == "" {
		return nil, constants.ErrNoBaseURLConfigured
	}

	siteID := viper.GetString(KeySiteID)
	if siteID == "" {
		return nil, constants.ErrNoSiteConfigured
	}

	config := &cms.Config{
		BaseURL: baseURL,
		SiteID:  siteID,
		Token:   viper.GetString(KeyToken),
		// One-shot commands gain nothing from a response cache.
		CacheEnabled: cms.Bool(false),
	}

	if viper.GetBool(KeyVerbose) {
		config.Debug = true
		config.Logger = newVerboseLogger()
	}

	client, err := cmsclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func newVerboseLogger() cms.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	return cms.NewLogrusLogger(logger)
}

// listFlags are the query flags shared by list commands.
type listFlags struct {
	page     int
	pageSize int
	sort     []string
	filters  []string
	populate []string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "results per page")
	cmd.Flags().StringSliceVar(&f.sort, "sort", nil, "sort tokens, e.g. publishedAt:desc")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "equality filter field=value, repeatable")
	cmd.Flags().StringSliceVar(&f.populate, "populate", nil, "relations to populate")
}

// params returns nil when no flag was given so resource defaults apply.
func (f *listFlags) params() (*cms.QueryParams, error) {
	params := cms.NewQueryParams()

	for _, token := range f.sort {
		field, direction, err := parseSortToken(token)
		if err != nil {
			return nil, err
		}

		params.WithSort(field, direction)
	}

	for _, raw := range f.filters {
		field, value, ok := strings.Cut(raw, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
		}

		params.WithFilter(cms.Eq(field, value))
	}

	if f.page > 0 || f.pageSize > 0 {
		page, pageSize := max(f.page, 1), f.pageSize
		if pageSize <= 0 {
			pageSize = constants.StandardPageSize
		}

		params.WithPage(page, pageSize)
	}

	if len(f.populate) > 0 {
		params.WithPopulate(cms.PopulateFields(f.populate...))
	}

	if params.IsEmpty() {
		return nil, nil //nolint:nilnil
	}

	return params, nil
}

func parseSortToken(token string) (string, cms.Direction, error) {
	field, direction, found := strings.Cut(token, ":")
	if field == "" {
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidSortToken, token)
	}

	if !found {
		return field, cms.Asc, nil
	}

	switch cms.Direction(strings.ToLower(direction)) {
	case cms.Asc:
		return field, cms.Asc, nil
	case cms.Desc:
		return field, cms.Desc, nil
	default:
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidSortToken, token)
	}
}

func notFound(resource string, ref cms.Ref) error {
	return fmt.Errorf("%s %q: %w", resource, ref.String(), ErrResourceNotFound)
}

func yesNo(value bool) string {
	if value {
		return Yes
	}

	return No
}

func orNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return NotAvailable
	}

	return value.Format(time.RFC3339)
}
