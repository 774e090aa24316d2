package main

import (
	"github.com/spf13/cobra"

	"stravagpx/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var sportFlag sportTypeFlag
	var endpoints endpointFlags

	ctx := newCommandContext(&configFlag, &endpoints)

	rootCmd := &cobra.Command{
		Use:   "stravagpx",
		Short: "Export Strava activities to GPX files",
		Long: "Export every Strava activity not yet recorded in the configuration ledger to a GPX file.\n\n" +
			"Sport types accepted by --sport_type (case-insensitive):\n  " + sportTypeUsage(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, ctx, sportFlag.value)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", config.DefaultConfigPath, "Configuration file")
	rootCmd.Flags().VarP(&sportFlag, "sport_type", "t", "Only export activities of this sport type")

	rootCmd.PersistentFlags().StringVar(&endpoints.api, "api-url", "", "Strava API base URL")
	rootCmd.PersistentFlags().StringVar(&endpoints.web, "web-url", "", "Strava website base URL")
	rootCmd.PersistentFlags().StringVar(&endpoints.oauth, "oauth-url", "", "Strava OAuth base URL")
	for _, name := range []string{"api-url", "web-url", "oauth-url"} {
		_ = rootCmd.PersistentFlags().MarkHidden(name)
	}

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newLedgerCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
