package main

import (
	"errors"
	"io"
	"time"

	"github.com/ogurasousui/hrcore-identity/internal/core/payperiod"
	"github.com/spf13/cobra"
)

type periodsFlags struct {
	year  int
	date  string
	next  bool
	span     string
	schedule bool
	today    string
}

func newPeriodsCmd(root *rootOptions) *cobra.Command {
	flags := periodsFlags{}

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Show bi-weekly pay periods and their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(root)
			if err != nil {
				return err
			}
			return runPeriods(cmd.OutOrStdout(), cfg.Payroll.ReferencePayday, cfg.Payroll.PaydaySchedule, time.Now(), flags)
		},
	}

	cmd.Flags().IntVar(&flags.year, "year", 0, "list every period whose payday falls in this year (default: current year)")
	cmd.Flags().StringVar(&flags.date, "date", "", "show the period containing this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flags.next, "next", false, "show the period of the next payday")
	cmd.Flags().StringVar(&flags.span, "span", "", "show the four-week ledger span ending at this payday (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flags.schedule, "schedule", false, "list the configured month-to-payday schedule used by backfill")
	cmd.Flags().StringVar(&flags.today, "today", "", "evaluate status as of this date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("year", "date", "next", "span", "schedule")
	return cmd
}

func runPeriods(w io.Writer, reference time.Time, schedule payperiod.Schedule, now time.Time, flags periodsFlags) error {
	today := payperiod.DateOf(now)
	if flags.today != "" {
		d, err := payperiod.ParseDate(flags.today)
		if err != nil {
			return err
		}
		today = d
	}

	switch {
	case flags.span != "":
		payday, err := payperiod.ParseDate(flags.span)
		if err != nil {
			return err
		}
		if err := payperiod.ValidatePayday(payday); err != nil {
			return err
		}
		renderSpan(w, payperiod.SpanForPayday(payday), today)
	case flags.schedule:
		if len(schedule) == 0 {
			return errors.New("periods: payroll.payday_schedule is empty")
		}
		renderSchedule(w, schedule)
	case flags.date != "":
		d, err := payperiod.ParseDate(flags.date)
		if err != nil {
			return err
		}
		renderPeriods(w, []payperiod.Period{payperiod.Containing(d, reference)}, today)
	case flags.next:
		renderPeriods(w, []payperiod.Period{payperiod.NextPayday(today, reference)}, today)
	default:
		year := flags.year
		if year == 0 {
			year = today.Year()
		}
		if year < 1 {
			return errors.New("periods: --year must be positive")
		}
		renderPeriods(w, payperiod.ForYear(year, reference), today)
	}
	return nil
}
