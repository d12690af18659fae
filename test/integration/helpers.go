//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL    string
	SiteID     string
	Token      string
	CmsctlPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:    os.Getenv("CMS_INTEGRATION_BASE_URL"),
		SiteID:     os.Getenv("CMS_INTEGRATION_SITE_ID"),
		Token:      os.Getenv("CMS_INTEGRATION_TOKEN"),
		CmsctlPath: getCmsctlPath(),
		Verbose:    os.Getenv("CMS_INTEGRATION_VERBOSE") == "true",
	}
}

// getCmsctlPath determines the path to the cmsctl binary
func getCmsctlPath() string {
	if path := os.Getenv("CMSCTL_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../cmsctl",
		"./cmsctl",
		"../cmsctl",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "cmsctl" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.BaseURL == "" || config.SiteID == "" {
		t.Skip("CMS_INTEGRATION_BASE_URL or CMS_INTEGRATION_SITE_ID not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the cmsctl binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.CmsctlPath); err != nil {
		t.Skipf("cmsctl binary not found at %s, skipping integration test", config.CmsctlPath)
	}
}

// CommandRunner provides utilities for running cmsctl commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a cmsctl command against the configured site and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	full := append([]string{
		"--base-url", runner.config.BaseURL,
		"--site", runner.config.SiteID,
		"--config", runner.t.TempDir() + "/config.yml",
	}, args...)

	if runner.config.Token != "" {
		full = append(full, "--token", runner.config.Token)
	}

	cmd := exec.Command(runner.config.CmsctlPath, full...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CmsctlPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput decodes stdout into target
func AssertJSONOutput(t *testing.T, stdout string, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(stdout), target), "output is not valid JSON: %s", stdout)
}
