package payperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legacySchedule = map[string]string{
	"2025-05": "2025-06-06",
	"2025-06": "2025-06-20",
	"2025-07": "2025-07-18",
	"2025-08": "2025-08-29",
	"2025-09": "2025-09-26",
	"2025-10": "2025-10-24",
	"2025-11": "2025-11-21",
	"2025-12": "2025-12-19",
}

func TestParseMonthKey(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"2025-09", "2025-09-01", " 2025-09-15 "} {
		m, err := ParseMonthKey(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, MonthKey{Year: 2025, Month: time.September}, m)
		assert.Equal(t, "2025-09", m.String())
	}

	for _, raw := range []string{"", "September", "2025-13", "2025/09"} {
		_, err := ParseMonthKey(raw)
		assert.ErrorIs(t, err, ErrInvalidMonth, raw)
	}
}

func TestMonthKey_Navigation(t *testing.T) {
	t.Parallel()

	dec := MonthKey{Year: 2025, Month: time.December}
	assert.Equal(t, MonthKey{Year: 2026, Month: time.January}, dec.Next())
	assert.Equal(t, Date(2025, time.December, 1), dec.FirstDay())
	assert.True(t, dec.Before(dec.Next()))
	assert.False(t, dec.Next().Before(dec))
}

func TestNewSchedule(t *testing.T) {
	t.Parallel()

	schedule, err := NewSchedule(legacySchedule)
	require.NoError(t, err)
	require.Len(t, schedule, len(legacySchedule))

	months := schedule.Months()
	assert.Equal(t, "2025-05", months[0].String())
	assert.Equal(t, "2025-12", months[len(months)-1].String())

	span, err := schedule.Span(MonthKey{Year: 2025, Month: time.May})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-05", FormatDate(span.Start))
	assert.Equal(t, "2025-06-01", FormatDate(span.End))
	assert.Equal(t, "2025-05-23", FormatDate(span.Payday1))
	assert.Equal(t, "2025-06-06", FormatDate(span.Payday2))
}

func TestNewSchedule_Rejects(t *testing.T) {
	t.Parallel()

	_, err := NewSchedule(map[string]string{"2025-07": "2025-07-19"})
	assert.ErrorIs(t, err, ErrPaydayNotFriday)

	_, err = NewSchedule(map[string]string{"2025-07": "July 18"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = NewSchedule(map[string]string{"2025-09": "2025-09-26", "2025-09-01": "2025-09-26"})
	assert.ErrorIs(t, err, ErrDuplicateMonth)

	_, err = NewSchedule(map[string]string{"fall": "2025-09-26"})
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestSchedule_Unmapped(t *testing.T) {
	t.Parallel()

	schedule, err := NewSchedule(map[string]string{"2025-10": "2025-10-24"})
	require.NoError(t, err)

	_, err = schedule.Span(MonthKey{Year: 2025, Month: time.November})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedPeriod)
	assert.True(t, IsUnmapped(err))
	assert.Equal(t, "no payday mapping for 2025-11", err.Error())
}
