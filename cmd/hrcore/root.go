package main

import "github.com/spf13/cobra"

type rootOptions struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hrcore",
		Short:         "Employee identity resolution and pay-period tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "additional .env files to load before the config")

	cmd.AddCommand(
		newResolveCmd(opts),
		newImportCmd(opts),
		newDuplicatesCmd(opts),
		newMergeCmd(opts),
		newPeriodsCmd(opts),
		newBackfillCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}
