package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
)

// EnvPrefix prefixes environment overrides, e.g. CMSCTL_SITE_ID.
const EnvPrefix = "CMSCTL"

// NewRootCommand creates the cmsctl command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmsctl",
		Short: "Site-scoped CMS API CLI",
		Long: `A command-line interface for reading content from a multi-tenant CMS.

Every request is scoped to the configured site and carries its X-Site-ID.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP(KeyConfig, "c", "", "config file (default is $HOME/.cmsctl/config.yml)")
	rootCmd.PersistentFlags().StringP("base-url", "u", "", "CMS base URL")
	rootCmd.PersistentFlags().StringP("site", "s", "", "site id sent as X-Site-ID")
	rootCmd.PersistentFlags().StringP(KeyToken, "t", "", "API token")
	rootCmd.PersistentFlags().StringP(KeyOutput, "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP(KeyVerbose, "v", false, "log requests and retries as JSON to stderr")

	// Bind flags to viper
	_ = viper.BindPFlag(KeyConfig, rootCmd.PersistentFlags().Lookup(KeyConfig))
	_ = viper.BindPFlag(KeyBaseURL, rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag(KeySiteID, rootCmd.PersistentFlags().Lookup("site"))
	_ = viper.BindPFlag(KeyToken, rootCmd.PersistentFlags().Lookup(KeyToken))
	_ = viper.BindPFlag(KeyOutput, rootCmd.PersistentFlags().Lookup(KeyOutput))
	_ = viper.BindPFlag(KeyVerbose, rootCmd.PersistentFlags().Lookup(KeyVerbose))

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewSiteCommand())
	rootCmd.AddCommand(NewProductsCommand())
	rootCmd.AddCommand(NewBlogsCommand())
	rootCmd.AddCommand(NewPagesCommand())
	rootCmd.AddCommand(NewCategoriesCommand())
	rootCmd.AddCommand(NewTagsCommand())
	rootCmd.AddCommand(NewBookingsCommand())

	return rootCmd
}

// InitConfig wires the config file and environment into viper.
func InitConfig() {
	cfgFile := viper.GetString(KeyConfig)

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.cmsctl/config.yml
		viper.AddConfigPath(filepath.Join(home, ".cmsctl"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool(KeyVerbose) {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
