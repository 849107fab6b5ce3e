package cmd

import (
	"fmt"
	"os"

	"commentflow/config"
	"commentflow/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "commentflow",
	Short: "Instagram comment and DM automation webhook service",
	Long: `commentflow receives Instagram webhooks, matches comments and direct
messages against each account's automation and sends the configured
replies through the Graph API.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file path (json or yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
}

// loadConfig loads the dotenv file, when present, then the configuration.
func loadConfig() (config.Configuration, *logging.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return config.Configuration{}, nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Configuration{}, nil, err
	}
	return cfg, logging.New(os.Stdout, cfg.LogLevel), nil
}
