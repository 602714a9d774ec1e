package main

import (
	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/spf13/cobra"
)

func newMergeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge KEEP_ID DUPLICATE_ID",
		Short: "Merge a confirmed duplicate employee into the one to keep",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()
			runCtx := logging.WithLogger(cmd.Context(), a.logger)

			merger, err := employee.NewMerger(a.employees, a.cfg.Merge.Tables, nil, a.tx, a.logger)
			if err != nil {
				return err
			}

			report, err := merger.Merge(runCtx, args[0], args[1])
			if err != nil {
				return err
			}

			renderMergeReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}
