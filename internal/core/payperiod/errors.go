package payperiod

import "errors"

var (
	ErrInvalidDate     = errors.New("payperiod: invalid date")
	ErrInvalidMonth    = errors.New("payperiod: invalid period month")
	ErrPaydayNotFriday = errors.New("payperiod: payday must be a Friday")
	ErrUnmappedPeriod  = errors.New("payperiod: unmapped period month")
	ErrDuplicateMonth  = errors.New("payperiod: duplicate period month")
	ErrInvalidTable    = errors.New("payperiod: invalid ledger table")
)

// UnmappedPeriodError は支給日の対応表に存在しない月を表します。
type UnmappedPeriodError struct {
	Month MonthKey
}

func (e *UnmappedPeriodError) Error() string {
	return "no payday mapping for " + e.Month.String()
}

func (e *UnmappedPeriodError) Unwrap() error {
	return ErrUnmappedPeriod
}
