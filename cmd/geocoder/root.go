package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/config"
)

// newRootCmd builds the top-level command tree. Persistent flags mirror
// config.GeocoderConfig's startup-overridable fields; after config.Load has
// applied config.yaml and the JAGEOCODER_ env overlay, bindPersistentFlags
// copies any explicitly-set flag onto config.C, so --data-dir, an env var,
// and config.yaml all resolve the same field through one precedence chain.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "geocoder",
		Short:         "Batch Japanese address geocoder",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(configPath); err != nil {
				cmd.SilenceUsage = true
				return err
			}
			bindPersistentFlags(cmd)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config/geocoder.yaml", "path to configuration file")
	root.PersistentFlags().String("data-dir", config.Defaults().DataDir, "directory for cache and reference data")
	root.PersistentFlags().String("resource-id", "", "CKAN dataset resource identifier to fetch")

	root.AddCommand(newDownloadCmd())
	root.AddCommand(newGeocodeCmd())
	root.AddCommand(newServeCmd())
	return root
}

// bindPersistentFlags overlays any explicitly-set persistent flag onto the
// already-loaded config.C, giving flags the final word over both the YAML
// file and the environment-variable layer config.Load applied.
func bindPersistentFlags(cmd *cobra.Command) {
	if v, err := cmd.Flags().GetString("data-dir"); err == nil && cmd.Flags().Changed("data-dir") {
		config.C.DataDir = v
	}
	if v, err := cmd.Flags().GetString("resource-id"); err == nil && cmd.Flags().Changed("resource-id") {
		config.C.ResourceID = v
	}
}

// newLogger builds a zap.Logger: production JSON encoding when
// JAGEOCODER_ENV=production, console debug-level encoding otherwise.
func newLogger() *zap.Logger {
	env := os.Getenv("JAGEOCODER_ENV")
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}
