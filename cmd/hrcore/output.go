package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/core/payperiod"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}

func renderMatch(w io.Writer, match *employee.Match) {
	if match == nil {
		fmt.Fprintln(w, "no matching employee")
		return
	}
	e := match.Employee
	table := newTable(w, "ID", "Name", "Status", "Email", "Strategy")
	table.Append([]string{e.ID, e.FullName(), string(e.Status), e.Email(), string(match.Strategy)})
	table.Render()
}

func renderSyncSummary(w io.Writer, summary *employee.SyncSummary) {
	table := newTable(w, "Row", "Name", "Action", "Employee", "Strategy", "Fields", "Error")
	for _, r := range summary.Results {
		fields := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			fields = append(fields, string(f))
		}
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		row := ""
		if r.Row > 0 {
			row = strconv.Itoa(r.Row)
		}
		table.Append([]string{row, r.Name, string(r.Action), r.EmployeeID, string(r.Strategy), strings.Join(fields, ","), errText})
	}
	table.Render()

	fmt.Fprintf(w, "created=%d updated=%d unchanged=%d skipped=%d failed=%d\n",
		summary.Count(employee.SyncCreated),
		summary.Count(employee.SyncUpdated),
		summary.Count(employee.SyncUnchanged),
		summary.Count(employee.SyncSkipped),
		summary.Count(employee.SyncFailed),
	)
}

func renderCandidates(w io.Writer, pairs []employee.CandidatePair) {
	if len(pairs) == 0 {
		fmt.Fprintln(w, "no duplicate candidates")
		return
	}
	table := newTable(w, "Keep ID", "Keep Name", "Keep Origin", "Duplicate ID", "Duplicate Name", "Duplicate Origin")
	for _, p := range pairs {
		table.Append([]string{
			p.Keep.ID, p.Keep.FullName(), p.Keep.Origin,
			p.Duplicate.ID, p.Duplicate.FullName(), p.Duplicate.Origin,
		})
	}
	table.Render()
}

func renderMergeReport(w io.Writer, report *employee.MergeReport) {
	fmt.Fprintf(w, "merged %s into %s (run %s, retired on %s)\n",
		report.DuplicateID, report.KeepID, report.RunID, payperiod.FormatDate(report.RetiredOn))

	copied := make([]string, 0, len(report.CopiedFields))
	for _, f := range report.CopiedFields {
		copied = append(copied, string(f))
	}
	if len(copied) > 0 {
		fmt.Fprintf(w, "copied fields: %s\n", strings.Join(copied, ", "))
	}
	if kept := report.Kept; kept != nil {
		filled := 0
		for _, f := range employee.Fields {
			if kept.Attributes.Has(f) {
				filled++
			}
		}
		fmt.Fprintf(w, "keep employee %s now has %d/%d attributes\n", kept.FullName(), filled, len(employee.Fields))
	}

	table := newTable(w, "Table", "Rows")
	for _, c := range report.Reassigned {
		table.Append([]string{c.Table, strconv.FormatInt(c.Rows, 10)})
	}
	table.SetFooter([]string{"Total", strconv.FormatInt(report.TotalReassigned(), 10)})
	table.Render()
}

func renderPeriods(w io.Writer, periods []payperiod.Period, today time.Time) {
	table := newTable(w, "#", "Start", "End", "Payday", "Status")
	for i, p := range periods {
		table.Append([]string{
			strconv.Itoa(i + 1),
			payperiod.FormatDate(p.Start),
			payperiod.FormatDate(p.End),
			payperiod.FormatDate(p.Payday),
			string(p.Status(today)),
		})
	}
	table.Render()
}

func renderSpan(w io.Writer, span payperiod.Span, today time.Time) {
	periods := span.Periods()
	renderPeriods(w, periods[:], today)
	fmt.Fprintf(w, "span %s..%s (paydays %s, %s)\n",
		payperiod.FormatDate(span.Start), payperiod.FormatDate(span.End),
		payperiod.FormatDate(span.Payday1), payperiod.FormatDate(span.Payday2))
}

func renderSchedule(w io.Writer, schedule payperiod.Schedule) {
	table := newTable(w, "Month", "Start", "End", "Payday 1", "Payday 2")
	for _, month := range schedule.Months() {
		span, err := schedule.Span(month)
		if err != nil {
			continue
		}
		table.Append([]string{
			month.String(),
			payperiod.FormatDate(span.Start),
			payperiod.FormatDate(span.End),
			payperiod.FormatDate(span.Payday1),
			payperiod.FormatDate(span.Payday2),
		})
	}
	table.Render()
}

func renderBackfillReport(w io.Writer, report *payperiod.BackfillReport, tables []string) {
	header := append([]string{"Month", "Start", "End", "Payday 1", "Payday 2"}, tables...)
	header = append(header, "Total", "Result")
	table := newTable(w, header...)

	all := make([]payperiod.GroupResult, 0, len(report.Groups)+len(report.Unmapped)+len(report.Failed))
	all = append(all, report.Groups...)
	all = append(all, report.Unmapped...)
	all = append(all, report.Failed...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Month.Before(all[j].Month) })

	for _, g := range all {
		row := []string{g.Month.String(), "", "", "", ""}
		if !g.Span.Start.IsZero() {
			row = []string{
				g.Month.String(),
				payperiod.FormatDate(g.Span.Start),
				payperiod.FormatDate(g.Span.End),
				payperiod.FormatDate(g.Span.Payday1),
				payperiod.FormatDate(g.Span.Payday2),
			}
		}
		counts := make(map[string]int64, len(g.Rows))
		for _, c := range g.Rows {
			counts[c.Table] = c.Rows
		}
		for _, t := range tables {
			if n, ok := counts[t]; ok {
				row = append(row, strconv.FormatInt(n, 10))
			} else {
				row = append(row, "-")
			}
		}
		result := "ok"
		switch {
		case payperiod.IsUnmapped(g.Err):
			result = "unmapped"
		case g.Err != nil:
			result = "failed: " + g.Err.Error()
		}
		row = append(row, strconv.FormatInt(g.Total(), 10), result)
		table.Append(row)
	}
	table.Render()

	verb := "updated"
	if report.DryRun {
		verb = "would update"
	}
	fmt.Fprintf(w, "run %s: %s %d rows, %d unmapped months, %d failed months\n",
		report.RunID, verb, report.Updated, len(report.Unmapped), len(report.Failed))

	if failed := report.FailedMonths(); len(failed) > 0 {
		args := make([]string, 0, len(failed))
		for _, m := range failed {
			args = append(args, "--month "+m.String())
		}
		fmt.Fprintf(w, "retry: hrcore backfill %s\n", strings.Join(args, " "))
	}
}
