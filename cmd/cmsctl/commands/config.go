package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
)

// Config represents the CLI configuration file.
type Config struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	SiteID  string `json:"site_id,omitempty"  yaml:"site_id,omitempty"`
	Token   string `json:"token,omitempty"    yaml:"token,omitempty"`
	Output  string `json:"output,omitempty"   yaml:"output,omitempty"`
}

var configKeys = []string{KeyBaseURL, KeySiteID, KeyToken, KeyOutput}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the cmsctl configuration file: base URL, site id, token and output format",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration; the token is masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = Masked
			}

			return render(cmd, config, propertyView(
				[2]string{"Base URL", orNA(config.BaseURL)},
				[2]string{"Site ID", orNA(config.SiteID)},
				[2]string{"Token", orNA(config.Token)},
				[2]string{"Output", orNA(config.Output)},
				[2]string{"Config File", orNA(configFilePath())},
			))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			err := setConfigValue(args[0], args[1])
			if err != nil {
				return err
			}

			value := args[1]
			if args[0] == KeyToken {
				value = Masked
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], value)

			return err
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a value from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := setConfigValue(args[0], "")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return err
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token",
		Short: "Store an API token",
		Long:  "Read an API token from the terminal without echo, or from stdin when piped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd)
			if err != nil {
				return err
			}

			err = setConfigValue(KeyToken, token)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Token saved")

			return err
		},
	}
}

func readToken(cmd *cobra.Command) (string, error) {
	var raw string

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Token: ")

		secret, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		raw = string(secret)
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		raw = line
	}

	token := strings.TrimSpace(raw)
	if token == "" {
		return "", constants.ErrEmptyToken
	}

	return token, nil
}

func loadConfig() *Config {
	return &Config{
		BaseURL: viper.GetString(KeyBaseURL),
		SiteID:  viper.GetString(KeySiteID),
		Token:   viper.GetString(KeyToken),
		Output:  viper.GetString(KeyOutput),
	}
}

// readConfigFile returns only what is persisted, ignoring flags and env.
func readConfigFile(path string) (*Config, error) {
	config := &Config{}

	// path comes from the --config flag or the user's home directory
	data, err := os.ReadFile(path) // #nosec G304
	if os.IsNotExist(err) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func setConfigValue(key, value string) error {
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: %s (expected one of %s)", constants.ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	if key == KeyOutput && value != "" {
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}
	}

	path := configFilePath()

	config, err := readConfigFile(path)
	if err != nil {
		return err
	}

	switch key {
	case KeyBaseURL:
		config.BaseURL = value
	case KeySiteID:
		config.SiteID = value
	case KeyToken:
		config.Token = value
	case KeyOutput:
		config.Output = value
	}

	err = saveConfigFile(path, config)
	if err != nil {
		return err
	}

	viper.Set(key, value)

	return nil
}

func saveConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// configFilePath is the file viper loaded, or the default location.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".cmsctl", "config.yml")
}
