package cmsclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
	"github.com/fivetwenty-io/sitecms-client/pkg/cmsclient"
)

type baseURLer interface {
	BaseURL() string
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	return path
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *cms.Config
		wantErr  error
		expected string
	}{
		{name: "nil config", config: nil, wantErr: cms.ErrConfigRequired},
		{name: "missing base URL", config: &cms.Config{SiteID: "demo-site"}, wantErr: cms.ErrBaseURLRequired},
		{name: "missing site", config: &cms.Config{BaseURL: "https://cms.example.com"}, wantErr: cms.ErrSiteIDRequired},
		{name: "adds scheme", config: &cms.Config{BaseURL: "cms.example.com", SiteID: "demo-site"}, expected: "https://cms.example.com"},
		{name: "trims slash", config: &cms.Config{BaseURL: "http://localhost:1337/", SiteID: "demo-site"}, expected: "http://localhost:1337"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client, err := cmsclient.New(context.Background(), testCase.config)
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "demo-site", client.SiteID())

			withBase, ok := client.(baseURLer)
			require.True(t, ok)
			assert.Equal(t, testCase.expected, withBase.BaseURL())
		})
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "demo-site", r.Header.Get("X-Site-ID"))
		assert.Equal(t, "/api/sites/current", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": 1, "name": "Demo", "slug": "demo-site"},
		})
	}))
	defer server.Close()

	client, err := cmsclient.NewWithToken(context.Background(), server.URL, "demo-site", "test-token")
	require.NoError(t, err)

	site, err := client.Sites().Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, "Demo", site.Name)
}

func TestNewWithSite(t *testing.T) {
	t.Parallel()

	client, err := cmsclient.NewWithSite(context.Background(), "https://cms.example.com", "demo-site")
	require.NoError(t, err)
	assert.Equal(t, "demo-site", client.SiteID())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CMS_BASE_URL", "https://cms.example.com")
	t.Setenv("CMS_SITE_ID", "demo-site")
	t.Setenv("CMS_TOKEN", "secret")
	t.Setenv("CMS_MAX_RETRIES", "5")
	t.Setenv("CMS_CACHE_TTL", "2m")
	t.Setenv("CMS_CACHE_ENABLED", "false")
	t.Setenv("CMS_CACHE_TYPE", "redis")
	t.Setenv("CMS_CACHE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CMS_CACHE_NATS_BUCKET", "sites")

	config, err := cmsclient.LoadConfigFromEnv(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "https://cms.example.com", config.BaseURL)
	assert.Equal(t, "demo-site", config.SiteID)
	assert.Equal(t, "secret", config.Token)
	require.NotNil(t, config.MaxRetries)
	assert.Equal(t, 5, *config.MaxRetries)
	assert.Equal(t, 2*time.Minute, config.CacheTTL)
	require.NotNil(t, config.CacheEnabled)
	assert.False(t, *config.CacheEnabled)
	assert.Equal(t, cms.CacheTypeRedis, config.Cache.Type)
	assert.Equal(t, "redis://localhost:6379/0", config.Cache.RedisURL)
	assert.Equal(t, "sites", config.Cache.NATS.Bucket)
	assert.Nil(t, config.RetryMutations)
}

func TestLoadConfigFromEnv_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CMS_BASE_URL=https://dotenv.example.com\nCMS_SITE_ID=from-file\n"), 0o600))

	t.Setenv("CMS_SITE_ID", "from-env")
	// t.Setenv restores the variable on cleanup; godotenv sets it for real.
	t.Setenv("CMS_BASE_URL", "")
	require.NoError(t, os.Unsetenv("CMS_BASE_URL"))

	config, err := cmsclient.LoadConfigFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "https://dotenv.example.com", config.BaseURL)
	assert.Equal(t, "from-env", config.SiteID)
}

func TestNewFromEnv_MissingSite(t *testing.T) {
	t.Setenv("CMS_BASE_URL", "https://cms.example.com")
	t.Setenv("CMS_SITE_ID", "")

	_, err := cmsclient.NewFromEnv(context.Background(), emptyEnvFile(t))
	require.ErrorIs(t, err, cms.ErrSiteIDRequired)
}

func TestLoadConfigFromEnv_EnvFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    func(t *testing.T) []string
		wantErr  bool
		notExist bool
	}{
		{
			name:  "no files and no .env in the working directory",
			files: func(*testing.T) []string { return nil },
		},
		{
			name: "named file that does not exist",
			files: func(t *testing.T) []string {
				t.Helper()

				return []string{filepath.Join(t.TempDir(), "typo.env")}
			},
			wantErr:  true,
			notExist: true,
		},
		{
			name: "missing file before a valid one",
			files: func(t *testing.T) []string {
				t.Helper()

				return []string{filepath.Join(t.TempDir(), "typo.env"), emptyEnvFile(t)}
			},
			wantErr:  true,
			notExist: true,
		},
		{
			name: "named path that cannot be read",
			files: func(t *testing.T) []string {
				t.Helper()

				return []string{t.TempDir()}
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("CMS_BASE_URL", "https://cms.example.com")
			t.Setenv("CMS_SITE_ID", "demo-site")

			config, err := cmsclient.LoadConfigFromEnv(testCase.files(t)...)
			if !testCase.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "demo-site", config.SiteID)

				return
			}

			require.Error(t, err)
			assert.Nil(t, config)
			assert.Equal(t, testCase.notExist, errors.Is(err, fs.ErrNotExist))
		})
	}
}
