package main

import (
	"github.com/ogurasousui/hrcore-identity/internal/adapters/spreadsheet"
	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		source string
		sheet  string
		origin string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Match spreadsheet rows to employees, filling gaps or creating new employees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := employee.ParseSource(source)
			if err != nil {
				return err
			}

			records, err := spreadsheet.ReadFile(args[0], spreadsheet.Options{
				Source:    src,
				Sheet:     sheet,
				OriginTag: origin,
			})
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()
			runCtx := logging.WithLogger(cmd.Context(), a.logger)

			logger := a.logger.WithFields(logrus.Fields{"file": args[0], "source": src})
			resolver := employee.NewResolver(a.employees, employee.ResolverOptions{
				PlaceholderEmailDomains: a.cfg.Identity.PlaceholderEmailDomains,
			}, logger)
			syncer := employee.NewSyncer(a.employees, resolver, nil, a.tx, logger)

			summary, err := syncer.Sync(runCtx, records, employee.SyncOptions{DryRun: dryRun})
			if summary != nil {
				renderSyncSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&source, "source", string(employee.SourceTimecard), "record source: timecard, onboarding or commission")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (defaults to the first sheet)")
	cmd.Flags().StringVar(&origin, "origin", "", "origin tag for rows without an origin column")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and diff without writing")
	return cmd
}
