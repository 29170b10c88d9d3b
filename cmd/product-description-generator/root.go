package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-description-generator/internal/config"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "product-description-generator",
	Short:         "Regenerates product descriptions of a shop catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)

	defaultEnvFile := os.Getenv("ENV_FILE")
	if defaultEnvFile == "" {
		defaultEnvFile = config.DefaultEnvFile
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "Path to a dotenv file read before the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides LOG_LEVEL")
}

// setup loads the configuration and initializes the logger.
func setup() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		obs.InitLogger("info")
		obs.Logger.Errorw("config_load_failed", "error", err)
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	obs.InitLogger(cfg.LogLevel)
	return cfg, nil
}
