package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const testSiteID = "demo-site"

// setupViper resets global viper state and points it at baseURL.
func setupViper(t *testing.T, baseURL string) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	if baseURL != "" {
		viper.Set(KeyBaseURL, baseURL)
		viper.Set(KeySiteID, testSiteID)
	}
}

// runCommand executes args against a fresh command tree.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand("1.2.3", "abc123", "2024-06-01")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

// newCMSServer serves handlers keyed by path and fails the test on any other path.
func newCMSServer(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Site-ID") != testSiteID {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"data":null,"error":{"status":404,"name":"NotFoundError","message":"Not Found"}}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	return server
}

func subcommandNames(cmd *cobra.Command) []string {
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	return names
}

func requireJSON(t *testing.T, out string, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), target), out)
}
