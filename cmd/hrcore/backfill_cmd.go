package main

import (
	"github.com/ogurasousui/hrcore-identity/internal/core/payperiod"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/spf13/cobra"
)

func newBackfillCmd(root *rootOptions) *cobra.Command {
	var (
		months []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Write exact pay-period spans onto ledger rows that only carry a period month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseMonths(months)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()
			runCtx := logging.WithLogger(cmd.Context(), a.logger)

			backfiller, err := payperiod.NewBackfiller(a.ledger, a.cfg.Payroll.PaydaySchedule, a.cfg.Payroll.LedgerTables, a.tx, a.logger)
			if err != nil {
				return err
			}

			report, err := backfiller.Run(runCtx, payperiod.BackfillOptions{Months: keys, DryRun: dryRun})
			if report != nil {
				renderBackfillReport(cmd.OutOrStdout(), report, backfiller.Tables())
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&months, "month", nil, "limit to these period months (YYYY-MM), repeatable")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count pending rows without writing")
	return cmd
}

func parseMonths(raw []string) ([]payperiod.MonthKey, error) {
	keys := make([]payperiod.MonthKey, 0, len(raw))
	for _, r := range raw {
		key, err := payperiod.ParseMonthKey(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
