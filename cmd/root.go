package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brcurves/svenfit/internal/config"
)

var (
	logLevel   string
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "svenfit",
	Short: "Svensson yield curve fitting for B3 DI x Pre rates",
	Long: `Svenfit fits the six-parameter Svensson model to daily DI x Pre
referential rate tables, tracking estimation attempts and improving them
with coordinate descent and genetic search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))

		cfg = config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}
