package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/hrcore-identity/internal/core/payperiod"
	pgdb "github.com/ogurasousui/hrcore-identity/internal/platform/db/postgres"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/sirupsen/logrus"
)

// LedgerRepository は期間月で記録された台帳テーブルへの PostgreSQL 実装です。
type LedgerRepository struct {
	pool pgdb.Queryer
}

// NewLedgerRepository は LedgerRepository を生成します。
func NewLedgerRepository(pool pgdb.Queryer) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// DistinctPeriodMonths は指定テーブル全体の期間月を重複なく昇順で返します。
func (r *LedgerRepository) DistinctPeriodMonths(ctx context.Context, tables []string) ([]payperiod.MonthKey, error) {
	if len(tables) == 0 {
		return []payperiod.MonthKey{}, nil
	}

	selects := make([]string, 0, len(tables))
	for _, table := range tables {
		selects = append(selects,
			`SELECT to_char(period_month, 'YYYY-MM') AS month FROM `+pgx.Identifier{table}.Sanitize()+` WHERE period_month IS NOT NULL`)
	}
	query := `SELECT DISTINCT month FROM (` + strings.Join(selects, " UNION ") + `) months ORDER BY month`

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list period months: %w", err)
	}
	defer rows.Close()

	months := make([]payperiod.MonthKey, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("postgres: scan period month: %w", err)
		}
		month, err := payperiod.ParseMonthKey(raw)
		if err != nil {
			return nil, err
		}
		months = append(months, month)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list period months: %w", err)
	}
	return months, nil
}

// CountUnfilled は期間が未設定の行数を返します。
func (r *LedgerRepository) CountUnfilled(ctx context.Context, table string, month payperiod.MonthKey) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT count(*)
          FROM `+pgx.Identifier{table}.Sanitize()+`
         WHERE period_month >= $1 AND period_month < $2
           AND period_start IS NULL
    `, month.FirstDay(), month.Next().FirstDay())

	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count %s: %w", table, err)
	}
	return n, nil
}

// ApplySpan は期間が未設定の行にのみ範囲と支給日を書き込みます。
func (r *LedgerRepository) ApplySpan(ctx context.Context, table string, month payperiod.MonthKey, span payperiod.Span) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE `+pgx.Identifier{table}.Sanitize()+`
           SET period_start = $1,
               period_end = $2,
               payday_1 = $3,
               payday_2 = $4
         WHERE period_month >= $5 AND period_month < $6
           AND period_start IS NULL
    `,
		span.Start,
		span.End,
		span.Payday1,
		span.Payday2,
		month.FirstDay(),
		month.Next().FirstDay(),
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: backfill %s: %w", table, err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"table": table,
		"month": month.String(),
		"rows":  tag.RowsAffected(),
	}).Debug("ledger span applied")
	return tag.RowsAffected(), nil
}
