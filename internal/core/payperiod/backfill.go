package payperiod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultLedgerTables は期間月で記録された既定の台帳テーブルです。
var DefaultLedgerTables = []string{
	"employee_commission_monthly",
	"agent_commission_us",
	"hourly_payout",
}

var tablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// TableCount はテーブルごとの件数です。
type TableCount struct {
	Table string
	Rows  int64
}

// GroupResult は期間月 1 グループの処理結果です。
type GroupResult struct {
	Month MonthKey
	Span  Span
	Rows  []TableCount
	Err   error
}

// Total はグループ内の件数の合計を返します。
func (g GroupResult) Total() int64 {
	var total int64
	for _, c := range g.Rows {
		total += c.Rows
	}
	return total
}

// BackfillReport はバックフィル 1 回分の結果です。
type BackfillReport struct {
	RunID    string
	DryRun   bool
	Groups   []GroupResult
	Unmapped []GroupResult
	Failed   []GroupResult
	// Updated は書き込んだ行数の合計です。DryRun では書き込み予定の行数です。
	Updated int64
}

// FailedMonths は失敗したグループの月を返します。再実行時の BackfillOptions.Months に使えます。
func (r *BackfillReport) FailedMonths() []MonthKey {
	months := make([]MonthKey, 0, len(r.Failed))
	for _, g := range r.Failed {
		months = append(months, g.Month)
	}
	return months
}

// BackfillOptions はバックフィルの動作設定です。
type BackfillOptions struct {
	// Months が空でなければ、台帳を走査せずに指定した月だけを処理します。
	Months []MonthKey
	// DryRun が真なら範囲の計算と対象件数の集計のみを行います。
	DryRun bool
}

// Backfiller は期間月のみを持つ台帳行に、対応表から求めた正確な期間を書き戻します。
type Backfiller struct {
	repo     LedgerRepository
	schedule Schedule
	tables   []string
	tx       TransactionManager
	logger   *logrus.Entry
}

// NewBackfiller は Backfiller を生成します。tables が空なら DefaultLedgerTables を使います。
func NewBackfiller(repo LedgerRepository, schedule Schedule, tables []string, tx TransactionManager, logger *logrus.Entry) (*Backfiller, error) {
	normalized, err := NormalizeLedgerTables(tables)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = logrus.NewEntry(discard)
	}
	return &Backfiller{
		repo:     repo,
		schedule: schedule,
		tables:   normalized,
		tx:       tx,
		logger:   logger,
	}, nil
}

// NormalizeLedgerTables はテーブル名を検証し、重複を取り除きます。
func NormalizeLedgerTables(tables []string) ([]string, error) {
	if len(tables) == 0 {
		tables = DefaultLedgerTables
	}
	out := make([]string, 0, len(tables))
	seen := make(map[string]struct{}, len(tables))
	for _, raw := range tables {
		table := strings.ToLower(strings.TrimSpace(raw))
		if !tablePattern.MatchString(table) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTable, raw)
		}
		if _, dup := seen[table]; dup {
			continue
		}
		seen[table] = struct{}{}
		out = append(out, table)
	}
	return out, nil
}

// Tables は処理対象のテーブルを返します。
func (b *Backfiller) Tables() []string {
	return append([]string(nil), b.tables...)
}

// Run は期間月ごとに独立したトランザクションでバックフィルを行います。
//
// 対応表に無い月は Unmapped に記録して読み飛ばし、書き込みに失敗した月は Failed に記録して
// 残りの月の処理を続けます。書き込みは period_start が未設定の行に限られるため、再実行は安全です。
func (b *Backfiller) Run(ctx context.Context, opts BackfillOptions) (*BackfillReport, error) {
	report := &BackfillReport{RunID: uuid.NewString(), DryRun: opts.DryRun}
	log := b.logger.WithFields(logrus.Fields{"run_id": report.RunID, "dry_run": opts.DryRun})

	months, err := b.months(ctx, opts)
	if err != nil {
		return nil, err
	}

	for _, month := range months {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		group := GroupResult{Month: month}
		groupLog := log.WithField("period_month", month.String())

		span, err := b.schedule.Span(month)
		if err != nil {
			group.Err = err
			report.Unmapped = append(report.Unmapped, group)
			groupLog.Warn(err.Error())
			continue
		}
		group.Span = span

		if err := b.runGroup(ctx, &group, opts.DryRun); err != nil {
			group.Err = err
			group.Rows = nil
			report.Failed = append(report.Failed, group)
			groupLog.WithError(err).Error("backfill group rolled back")
			continue
		}

		report.Groups = append(report.Groups, group)
		report.Updated += group.Total()
		groupLog.WithFields(logrus.Fields{
			"period_start": FormatDate(span.Start),
			"period_end":   FormatDate(span.End),
			"payday_2":     FormatDate(span.Payday2),
			"rows":         group.Total(),
		}).Info("backfill group done")
	}

	log.WithFields(logrus.Fields{
		"groups":   len(report.Groups),
		"unmapped": len(report.Unmapped),
		"failed":   len(report.Failed),
		"updated":  report.Updated,
	}).Info("backfill finished")

	return report, nil
}

func (b *Backfiller) months(ctx context.Context, opts BackfillOptions) ([]MonthKey, error) {
	if len(opts.Months) > 0 {
		seen := make(map[MonthKey]struct{}, len(opts.Months))
		months := make([]MonthKey, 0, len(opts.Months))
		for _, m := range opts.Months {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			months = append(months, m)
		}
		sortMonths(months)
		return months, nil
	}

	var months []MonthKey
	if err := b.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		months, err = b.repo.DistinctPeriodMonths(txCtx, b.tables)
		return err
	}); err != nil {
		return nil, fmt.Errorf("list period months: %w", err)
	}
	sortMonths(months)
	return months, nil
}

func (b *Backfiller) runGroup(ctx context.Context, group *GroupResult, dryRun bool) error {
	run := b.tx.WithinReadWrite
	if dryRun {
		run = b.tx.WithinReadOnly
	}

	return run(ctx, func(txCtx context.Context) error {
		group.Rows = make([]TableCount, 0, len(b.tables))
		for _, table := range b.tables {
			var (
				rows int64
				err  error
			)
			if dryRun {
				rows, err = b.repo.CountUnfilled(txCtx, table, group.Month)
			} else {
				rows, err = b.repo.ApplySpan(txCtx, table, group.Month, group.Span)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", table, group.Month, err)
			}
			group.Rows = append(group.Rows, TableCount{Table: table, Rows: rows})
		}
		return nil
	})
}

// IsUnmapped は err が対応表に無い月によるものかを返します。
func IsUnmapped(err error) bool {
	return errors.Is(err, ErrUnmappedPeriod)
}
