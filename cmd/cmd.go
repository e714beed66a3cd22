package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tripsynth/config"
)

var RootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "plan costed multi-day trips",
	Long: `tripsynth turns a travel request into a structured, costed, multi-day itinerary.
It can run as an HTTP service or plan a single trip from the command line.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		slog.SetDefault(newLogger(level, devMode(cmd)))
	},
}

func init() {
	RootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().Bool("dev", true, "Run in development mode (text logs, relaxed security headers)")
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
	RootCmd.AddCommand(planCommand())
}

// devMode follows --dev when it was given and GIN_MODE otherwise.
func devMode(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("dev"); f != nil && f.Changed {
		dev, _ := cmd.Flags().GetBool("dev")
		return dev
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Default().IsDev
	}
	return cfg.IsDev
}

// newLogger uses text output in development and JSON otherwise. Logs go to
// stderr so plan output on stdout stays clean.
func newLogger(level string, dev bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if dev {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(h).With("app", config.AppName)
}
