package main

import (
	"context"

	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/spf13/cobra"
)

func newDuplicatesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List pairs of active employees whose names look alike",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()
			runCtx := logging.WithLogger(cmd.Context(), a.logger)

			var employees []*employee.Employee
			if err := a.tx.WithinReadOnly(runCtx, func(ctx context.Context) error {
				var err error
				employees, err = a.employees.ListActive(ctx)
				return err
			}); err != nil {
				return err
			}

			renderCandidates(cmd.OutOrStdout(), employee.FindDuplicateCandidates(employees))
			return nil
		},
	}
}
