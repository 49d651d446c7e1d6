package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dbehnke/relaisblick/internal/config"
	"github.com/dbehnke/relaisblick/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	version  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "relaisblick",
	Short: "Viewer for Austrian amateur radio repeaters",
	Long: `relaisblick loads the list of Austrian amateur radio repeaters (Relais),
filters it by band, type, federal state, status and free text, and serves it
over HTTP for the map front-end.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides [Log] Level)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute executes the root command.
func Execute(v string) {
	version = v

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg = config.NewConfig(cfgFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.GetLogLevel()
	if logLevel != "" {
		level = logLevel
	}
	return logger.Init(level, cfg.GetLogEnvironment())
}
