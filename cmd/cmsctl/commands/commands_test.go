package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

func TestNewRootCommand(t *testing.T) {
	setupViper(t, "")

	root := NewRootCommand("dev", "none", "unknown")

	assert.Equal(t, "cmsctl", root.Use)
	assert.ElementsMatch(t, []string{
		"version", "config", "site", "products", "blogs", "pages", "categories", "tags", "bookings",
	}, subcommandNames(root))

	for _, flag := range []string{"config", "base-url", "site", "token", "output", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %s should exist", flag)
	}
}

func TestResourceCommandTrees(t *testing.T) {
	setupViper(t, "")

	tests := []struct {
		name     string
		names    []string
		expected []string
	}{
		{"site", subcommandNames(NewSiteCommand()), []string{"current", "stats"}},
		{"products", subcommandNames(NewProductsCommand()), []string{"list", "get", "featured", "by-category", "by-status"}},
		{"blogs", subcommandNames(NewBlogsCommand()), []string{"list", "get", "featured", "by-category", "related"}},
		{"pages", subcommandNames(NewPagesCommand()), []string{"list", "get", "navigation"}},
		{"categories", subcommandNames(NewCategoriesCommand()), []string{"list", "get", "tree"}},
		{"tags", subcommandNames(NewTagsCommand()), []string{"list", "get"}},
		{"bookings", subcommandNames(NewBookingsCommand()), []string{"slots"}},
		{"config", subcommandNames(NewConfigCommand()), []string{"show", "set", "unset", "set-token"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.ElementsMatch(t, testCase.expected, testCase.names)
		})
	}
}

func TestListFlagsParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flags    listFlags
		expected string
		wantNil  bool
		wantErr  error
	}{
		{name: "no flags", wantNil: true},
		{
			name:     "sort and paging",
			flags:    listFlags{sort: []string{"publishedAt:desc", "title"}, page: 2, pageSize: 10},
			expected: "?sort=publishedAt%3Adesc%2Ctitle%3Aasc&pagination[page]=2&pagination[pageSize]=10",
		},
		{
			name:     "filter",
			flags:    listFlags{filters: []string{"status=active"}},
			expected: "?filters=%7B%22status%22%3A%7B%22%24eq%22%3A%22active%22%7D%7D",
		},
		{name: "bad sort", flags: listFlags{sort: []string{"title:sideways"}}, wantErr: constants.ErrInvalidSortToken},
		{name: "bad filter", flags: listFlags{filters: []string{"status"}}, wantErr: ErrInvalidFilter},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			params, err := testCase.flags.params()
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)

				return
			}

			require.NoError(t, err)

			if testCase.wantNil {
				assert.Nil(t, params)

				return
			}

			assert.Equal(t, testCase.expected, params.Encode())
		})
	}
}

func TestCreateClient_RequiresSettings(t *testing.T) {
	setupViper(t, "")

	_, err := runCommand(t, "", "tags", "list")
	require.ErrorIs(t, err, constants.ErrNoBaseURLConfigured)

	_, err = runCommand(t, "", "tags", "list", "--base-url", "https://cms.example.com")
	require.ErrorIs(t, err, constants.ErrNoSiteConfigured)
}

func TestProductsList_Table(t *testing.T) {
	server := newCMSServer(t, map[string]any{
		"/api/products": map[string]any{
			"data": []map[string]any{
				{"id": 7, "name": "Coffee Mug", "slug": "coffee-mug", "price": 12.5, "currency": "usd", "status": "active", "featured": true},
			},
			"meta": map[string]any{"pagination": map[string]any{"page": 1, "pageSize": 25, "pageCount": 1, "total": 1}},
		},
	})
	setupViper(t, server.URL)

	out, err := runCommand(t, "", "products", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Coffee Mug")
	assert.Contains(t, out, "12.50 USD")
	assert.Contains(t, out, "Page 1 of 1 (1 total)")
}

func TestBlogsGet_JSON(t *testing.T) {
	server := newCMSServer(t, map[string]any{
		"/api/blogs/42": map[string]any{
			"data": map[string]any{"id": 42, "title": "Hello", "slug": "hello", "author": map[string]any{"username": "ada"}},
		},
	})
	setupViper(t, server.URL)

	out, err := runCommand(t, "", "blogs", "get", "42", "-o", "json")
	require.NoError(t, err)

	var blog cms.Blog
	requireJSON(t, out, &blog)
	assert.Equal(t, 42, blog.ID)
	assert.Equal(t, "ada", blog.Author.Username)
}

func TestGet_NotFound(t *testing.T) {
	server := newCMSServer(t, map[string]any{
		"/api/tags": map[string]any{"data": []any{}},
	})
	setupViper(t, server.URL)

	_, err := runCommand(t, "", "tags", "get", "missing-tag")
	require.ErrorIs(t, err, ErrResourceNotFound)
	assert.Contains(t, err.Error(), `tag "missing-tag"`)

	_, err = runCommand(t, "", "pages", "get", "9")
	require.ErrorIs(t, err, ErrResourceNotFound)
}

func TestCategoriesTree(t *testing.T) {
	server := newCMSServer(t, map[string]any{
		"/api/categories/tree": map[string]any{
			"data": []map[string]any{
				{"id": 1, "name": "Apparel", "slug": "apparel", "children": []map[string]any{
					{"id": 2, "name": "Shirts", "slug": "shirts"},
				}},
			},
		},
	})
	setupViper(t, server.URL)

	view := tableView{}
	appendCategoryRows(&view, []cms.Category{
		{ID: 1, Name: "Apparel", Children: []cms.Category{{ID: 2, Name: "Shirts"}}},
	}, 0)
	assert.Equal(t, "  Shirts", view.rows[1][1])

	out, err := runCommand(t, "", "categories", "tree", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Shirts")
}

func TestSiteStats(t *testing.T) {
	server := newCMSServer(t, map[string]any{
		"/api/sites/stats": map[string]any{
			"data":  map[string]any{"id": 1, "name": "Demo", "site_uid": testSiteID},
			"stats": map[string]any{"blogs": 4, "products": 9, "pages": 2},
		},
	})
	setupViper(t, server.URL)

	out, err := runCommand(t, "", "site", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo")
	assert.Contains(t, out, "9")
}

func TestBookingsSlots(t *testing.T) {
	server := newCMSServer(t, map[string]any{
		"/api/bookings/available-slots/3": map[string]any{
			"data": []map[string]any{
				{"start": "2024-06-01T10:00:00Z", "end": "2024-06-01T11:00:00Z", "available": true},
			},
		},
	})
	setupViper(t, server.URL)

	_, err := runCommand(t, "", "bookings", "slots", "3")
	require.ErrorIs(t, err, constants.ErrDateRequired)

	out, err := runCommand(t, "", "bookings", "slots", "3", "--date", "2024-06-01", "-o", "json")
	require.NoError(t, err)

	var slots []cms.Slot
	requireJSON(t, out, &slots)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Available)
}

func TestVersionCommand(t *testing.T) {
	setupViper(t, "")

	out, err := runCommand(t, "", "version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestInvalidOutputFormat(t *testing.T) {
	setupViper(t, "")

	_, err := runCommand(t, "", "version", "-o", "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutputFormat)
}
