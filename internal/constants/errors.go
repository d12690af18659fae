package constants

import "errors"

// Configuration errors.
var (
	ErrNoBaseURLConfigured = errors.New("no base URL configured, use 'cmsctl config set base_url <url>'")
	ErrNoSiteConfigured    = errors.New("no site configured, use 'cmsctl config set site_id <id>'")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrEmptyToken          = errors.New("token must not be empty")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidSortToken    = errors.New("invalid sort token, expected field:asc or field:desc")
	ErrDateRequired        = errors.New("--date flag is required")
)

// Response errors.
var (
	ErrEmptySiteResponse = errors.New("current site response has no data")
)
