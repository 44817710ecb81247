package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/gametaste/internal/config"
	"github.com/okian/gametaste/pkg/logger"
)

type options struct {
	configPath string
	format     string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "analyze",
		Short:         "Game library taste analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			if err := logger.SetLevelString(opts.logLevel); err != nil {
				return err
			}
			switch opts.format {
			case formatAuto, formatJSON, formatTable:
			default:
				return fmt.Errorf("unknown --format %q", opts.format)
			}
			if opts.configPath != "" {
				return os.Setenv("GAMETASTE_CONFIG", opts.configPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file (overrides GAMETASTE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", formatAuto, "Output format: auto, json or table")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newFileCommand(opts))
	rootCmd.AddCommand(newProfileCommand(opts))
	rootCmd.AddCommand(newRemoteCommand(opts))

	return rootCmd
}

// loadConfig layers defaults, the config file and GAMETASTE_ env vars.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Context())
}
