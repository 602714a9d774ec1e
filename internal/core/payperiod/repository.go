package payperiod

import "context"

// LedgerRepository は期間月で記録された台帳テーブルへの永続化境界です。
// 台帳テーブルは period_month, period_start, period_end, payday_1, payday_2 列を持ちます。
type LedgerRepository interface {
	// DistinctPeriodMonths は指定テーブル全体に現れる期間月を重複なく昇順で返します。
	DistinctPeriodMonths(ctx context.Context, tables []string) ([]MonthKey, error)
	// CountUnfilled は period_start が未設定の行数を返します。
	CountUnfilled(ctx context.Context, table string, month MonthKey) (int64, error)
	// ApplySpan は period_start が未設定の行にのみ範囲を書き込み、更新件数を返します。
	ApplySpan(ctx context.Context, table string, month MonthKey, span Span) (int64, error)
}
