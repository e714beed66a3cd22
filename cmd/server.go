package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tripsynth/config"
	"tripsynth/web"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `This command starts the HTTP API: POST /api/trip, GET /api/events and GET /health.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := slog.Default()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, true, logger)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Warn("shutdown cleanup failed", "err", err)
				}
			}()

			router := web.NewRouter(a.assembler, web.Options{
				IsDev:  cfg.IsDev,
				Events: a.events,
				Logger: logger.With("component", "web"),
			})
			return web.Serve(ctx, ":"+cfg.Port, router, logger)
		},
	}

	cmd.Flags().String("port", "8080", "Port to run the web server on")
	cmd.Flags().String("mq", MqGoChan, "Message queue mode (go_chan, rabbitmq, gcp_pub_sub)")
	addPipelineFlags(cmd)
	return cmd
}

// addPipelineFlags registers the flags shared by serve and plan.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("cache", config.CacheMem, "Cache backend (mem, sqlite, postgres, redis)")
	cmd.Flags().String("strategies", "", "Comma separated strategy order (datasource, oracle, heuristic)")
}

// loadConfig reads the environment and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("dev") {
		cfg.IsDev, _ = flags.GetBool("dev")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("mq") {
		cfg.MqMode, _ = flags.GetString("mq")
	}
	if flags.Changed("cache") {
		cfg.CacheBackend, _ = flags.GetString("cache")
	}
	if flags.Changed("strategies") {
		s, _ := flags.GetString("strategies")
		cfg.Strategies = config.SplitList(s)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
