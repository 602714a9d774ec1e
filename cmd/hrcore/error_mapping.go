package main

import (
	"errors"

	"github.com/ogurasousui/hrcore-identity/internal/adapters/spreadsheet"
	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/core/payperiod"
)

const (
	exitFailure         = 1
	exitInvalidArgument = 2
	exitNotFound        = 3
	exitConflict        = 4
)

// exitCode はエラーの種類に応じた終了コードを返します。
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidFirstName),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidSource),
		errors.Is(err, employee.ErrInvalidTable),
		errors.Is(err, employee.ErrSameEmployee),
		errors.Is(err, payperiod.ErrInvalidDate),
		errors.Is(err, payperiod.ErrInvalidMonth),
		errors.Is(err, payperiod.ErrPaydayNotFriday),
		errors.Is(err, payperiod.ErrInvalidTable),
		errors.Is(err, spreadsheet.ErrNoNameColumn),
		errors.Is(err, spreadsheet.ErrEmptySheet),
		errors.Is(err, spreadsheet.ErrNoWorksheet):
		return exitInvalidArgument
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return exitNotFound
	case errors.Is(err, employee.ErrEmailTaken), errors.Is(err, employee.ErrKeepRetired):
		return exitConflict
	default:
		return exitFailure
	}
}
