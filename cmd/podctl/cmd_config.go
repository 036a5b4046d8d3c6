package main

import (
	"fmt"
	"io"

	"idhealth/internal/config"

	"github.com/spf13/cobra"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Validate the environment configuration",
	Long: `Load .env and the IDHEALTH_* environment variables, validate them and
print the effective configuration with secrets masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printConfig(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "configuration is valid")
	fmt.Fprintf(w, "  addr:            %s\n", cfg.Addr())
	fmt.Fprintf(w, "  auth mode:       %s\n", cfg.Auth.Mode)
	fmt.Fprintf(w, "  jwt secret:      %s\n", config.Masked(cfg.Auth.JWTSecret))
	fmt.Fprintf(w, "  storage backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.Override != "" {
		fmt.Fprintf(w, "  storage root:    %s\n", cfg.Storage.Override)
	}
	fmt.Fprintf(w, "  profile cache:   %s (ttl %s)\n", cfg.Cache.Backend, cfg.Cache.SessionTTL)
	fmt.Fprintf(w, "  predict url:     %s\n", cfg.Model.PredictURL)
	fmt.Fprintf(w, "  train url:       %s\n", cfg.Model.TrainURL)
	fmt.Fprintf(w, "  model api key:   %s\n", config.Masked(cfg.Model.APIKey))
	fmt.Fprintf(w, "  log:             %s/%s\n", cfg.LogLevel, cfg.LogFormat)
}
