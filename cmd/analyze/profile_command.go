package main

import (
	"errors"

	"github.com/spf13/cobra"

	app "github.com/okian/gametaste/internal/app"
	"github.com/okian/gametaste/pkg/logger"
)

func newProfileCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "profile <steam-id|vanity|profile-url>",
		Short: "Fetch a Steam profile and analyze it in-process",
		Long:  "Fetch a Steam profile and analyze it in-process. Requires GAMETASTE_STEAM_API_KEY.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.SteamAPIKey == "" {
				return errors.New("steam_api_key is not configured; set GAMETASTE_STEAM_API_KEY")
			}
			svc, err := app.FromConfig(cmd.Context(), cfg, logger.Get())
			if err != nil {
				return err
			}
			a, err := svc.AnalyzeProfile(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return writeAnalysis(cmd, opts.format, a)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Recommendation count (5-10, default from config)")
	return cmd
}
