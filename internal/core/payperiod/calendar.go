// Package payperiod は隔週給与期間の暦計算と、月単位で記録された台帳行への期間の書き戻しを扱います。
//
// 勤務期間は月曜から翌々週の日曜までの 14 日間で、給与支給日はその 5 日後の金曜日です。
// 日付はすべて UTC の 0 時で表します。
package payperiod

import (
	"fmt"
	"time"
)

const (
	day = 24 * time.Hour

	// PeriodDays は 1 期間の日数です。
	PeriodDays = 14
	// PaydayOffsetDays は期間終了日から給与支給日までの日数です。
	PaydayOffsetDays = 5
	// PeriodsPerYear は 1 年あたりの期間数です。
	PeriodsPerYear = 26

	dateLayout = "2006-01-02"
)

// DefaultReferencePayday は期間の位相を決める既知の支給日です。
var DefaultReferencePayday = Date(2025, time.September, 26)

// Date は UTC 0 時の日付を返します。
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// DateOf は t の暦日を UTC 0 時で返します。
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate は YYYY-MM-DD 形式の日付を解釈します。
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// FormatDate は日付を YYYY-MM-DD 形式で返します。
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / day)
}

// floorDiv は負数でも切り捨て方向に割り算します。
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Period は 14 日間の勤務期間と支給日です。End は期間に含まれます。
type Period struct {
	Start  time.Time
	End    time.Time
	Payday time.Time
}

// FromPayday は支給日から勤務期間を求めます。
// End は支給日の 5 日前、Start は End の 13 日前です。
func FromPayday(payday time.Time) Period {
	payday = DateOf(payday)
	end := addDays(payday, -PaydayOffsetDays)
	return Period{
		Start:  addDays(end, -(PeriodDays - 1)),
		End:    end,
		Payday: payday,
	}
}

func fromStart(start time.Time) Period {
	start = DateOf(start)
	end := addDays(start, PeriodDays-1)
	return Period{
		Start:  start,
		End:    end,
		Payday: addDays(end, PaydayOffsetDays),
	}
}

// GenerateSequence は anchorStart から始まる連続した count 個の期間を返します。
// count が 0 以下なら空のスライスを返します。
func GenerateSequence(anchorStart time.Time, count int) []Period {
	if count <= 0 {
		return []Period{}
	}
	periods := make([]Period, count)
	p := fromStart(anchorStart)
	for i := range periods {
		periods[i] = p
		p = p.Next()
	}
	return periods
}

// Next は直後の期間を返します。
func (p Period) Next() Period {
	return fromStart(addDays(p.Start, PeriodDays))
}

// Contains は date が勤務期間に含まれるかを返します。
func (p Period) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

// String は "2025-09-08..2025-09-21 (payday 2025-09-26)" 形式で期間を返します。
func (p Period) String() string {
	return fmt.Sprintf("%s..%s (payday %s)", FormatDate(p.Start), FormatDate(p.End), FormatDate(p.Payday))
}

// Status は期間の進行状態です。
type Status string

const (
	StatusOpen       Status = "Open"
	StatusProcessing Status = "Processing"
	StatusClosed     Status = "Closed"
)

// Status は today 時点の期間の状態を返します。
// 終了済みなら Closed、期間中なら Processing、開始前なら Open です。
func (p Period) Status(today time.Time) Status {
	switch {
	case p.Contains(today):
		return StatusProcessing
	case DateOf(today).After(p.End):
		return StatusClosed
	default:
		return StatusOpen
	}
}

// Span は台帳行に書き戻す 4 週間分の範囲です。2 つの連続した期間と、それぞれの支給日を含みます。
type Span struct {
	Start   time.Time
	End     time.Time
	Payday1 time.Time
	Payday2 time.Time
}

// SpanForPayday は 2 回目の支給日から 4 週間の範囲を求めます。
func SpanForPayday(payday2 time.Time) Span {
	second := FromPayday(payday2)
	first := FromPayday(addDays(second.Payday, -PeriodDays))
	return Span{
		Start:   first.Start,
		End:     second.End,
		Payday1: first.Payday,
		Payday2: second.Payday,
	}
}

// Periods は範囲を構成する 2 つの期間を返します。
func (s Span) Periods() [2]Period {
	return [2]Period{FromPayday(s.Payday1), FromPayday(s.Payday2)}
}

// ValidatePayday は t が金曜日であることを確認します。
func ValidatePayday(t time.Time) error {
	if t.Weekday() != time.Friday {
		return fmt.Errorf("%w: %s is a %s", ErrPaydayNotFriday, FormatDate(t), t.Weekday())
	}
	return nil
}

// ForYear は year の 1 月 1 日以降で最初の支給日から始まる 26 期間を返します。
// 支給日は referencePayday から 14 日刻みで揃えます。
func ForYear(year int, referencePayday time.Time) []Period {
	ref := DateOf(referencePayday)
	jan1 := Date(year, time.January, 1)

	offset := daysBetween(ref, jan1)
	cycles := floorDiv(offset, PeriodDays)
	first := addDays(ref, cycles*PeriodDays)
	if first.Before(jan1) {
		first = addDays(first, PeriodDays)
	}

	return GenerateSequence(FromPayday(first).Start, PeriodsPerYear)
}

// Containing は date を勤務期間に含む期間を返します。
func Containing(date time.Time, referencePayday time.Time) Period {
	anchor := FromPayday(referencePayday)
	cycles := floorDiv(daysBetween(anchor.Start, date), PeriodDays)
	return fromStart(addDays(anchor.Start, cycles*PeriodDays))
}

// NextPayday は today 以降で最初の支給日の期間を返します。支給日当日はその期間を返します。
func NextPayday(today time.Time, referencePayday time.Time) Period {
	ref := DateOf(referencePayday)
	cycles := floorDiv(daysBetween(ref, today), PeriodDays)
	payday := addDays(ref, cycles*PeriodDays)
	if payday.Before(DateOf(today)) {
		payday = addDays(payday, PeriodDays)
	}
	return FromPayday(payday)
}
