package payperiod

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MonthKey は台帳行の粗い期間キー (年月) です。
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf は t の属する月を返します。
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey は "2025-09" または "2025-09-01" 形式の月を解釈します。日は無視されます。
func ParseMonthKey(raw string) (MonthKey, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01", dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return MonthOf(t), nil
		}
	}
	return MonthKey{}, fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
}

// String は "2025-09" 形式で返します。
func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FirstDay は月初日を返します。
func (m MonthKey) FirstDay() time.Time {
	return Date(m.Year, m.Month, 1)
}

// Next は翌月を返します。
func (m MonthKey) Next() MonthKey {
	return MonthOf(m.FirstDay().AddDate(0, 1, 0))
}

// Before は m が other より前の月かを返します。
func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Schedule は期間月から 2 回目の支給日への明示的な対応表です。推測による補完は行いません。
type Schedule map[MonthKey]time.Time

// NewSchedule は "YYYY-MM" → "YYYY-MM-DD" の対応表を検証して Schedule を生成します。
// 支給日はすべて金曜日でなければなりません。
func NewSchedule(entries map[string]string) (Schedule, error) {
	schedule := make(Schedule, len(entries))
	for rawMonth, rawPayday := range entries {
		month, err := ParseMonthKey(rawMonth)
		if err != nil {
			return nil, err
		}
		payday, err := ParseDate(strings.TrimSpace(rawPayday))
		if err != nil {
			return nil, fmt.Errorf("payday for %s: %w", month, err)
		}
		if err := ValidatePayday(payday); err != nil {
			return nil, fmt.Errorf("payday for %s: %w", month, err)
		}
		if _, exists := schedule[month]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMonth, month)
		}
		schedule[month] = payday
	}
	return schedule, nil
}

// Payday は月に対応する 2 回目の支給日を返します。
func (s Schedule) Payday(month MonthKey) (time.Time, error) {
	payday, ok := s[month]
	if !ok {
		return time.Time{}, &UnmappedPeriodError{Month: month}
	}
	return payday, nil
}

// Span は月に対応する 4 週間の範囲を返します。
func (s Schedule) Span(month MonthKey) (Span, error) {
	payday, err := s.Payday(month)
	if err != nil {
		return Span{}, err
	}
	return SpanForPayday(payday), nil
}

// Months は登録済みの月を昇順で返します。
func (s Schedule) Months() []MonthKey {
	months := make([]MonthKey, 0, len(s))
	for m := range s {
		months = append(months, m)
	}
	sortMonths(months)
	return months
}

func sortMonths(months []MonthKey) {
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
}
