package payperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func TestFromPayday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		payday, start, end string
	}{
		{"2025-09-26", "2025-09-08", "2025-09-21"},
		{"2025-10-10", "2025-09-22", "2025-10-05"},
		{"2026-01-16", "2025-12-29", "2026-01-11"},
		{"2026-01-30", "2026-01-12", "2026-01-25"},
	}

	for _, tt := range tests {
		t.Run(tt.payday, func(t *testing.T) {
			t.Parallel()
			p := FromPayday(mustDate(t, tt.payday))
			assert.Equal(t, tt.start, FormatDate(p.Start))
			assert.Equal(t, tt.end, FormatDate(p.End))
			assert.Equal(t, tt.payday, FormatDate(p.Payday))
		})
	}
}

func TestFromPayday_WeekdaysForEveryFriday(t *testing.T) {
	t.Parallel()

	friday := Date(2024, time.January, 5)
	for i := 0; i < 200; i++ {
		payday := friday.AddDate(0, 0, 7*i)
		p := FromPayday(payday)

		assert.Equal(t, time.Monday, p.Start.Weekday(), payday)
		assert.Equal(t, time.Sunday, p.End.Weekday(), payday)
		assert.Equal(t, PeriodDays-1, daysBetween(p.Start, p.End))
		assert.Equal(t, PaydayOffsetDays, daysBetween(p.End, p.Payday))
	}
}

func TestFromPayday_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	p := FromPayday(time.Date(2026, time.January, 16, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2025-12-29", FormatDate(p.Start))
	assert.Equal(t, Date(2026, time.January, 16), p.Payday)
}

func TestGenerateSequence(t *testing.T) {
	t.Parallel()

	periods := GenerateSequence(Date(2025, time.December, 29), PeriodsPerYear)
	require.Len(t, periods, PeriodsPerYear)

	assert.Equal(t, "2026-01-16", FormatDate(periods[0].Payday))
	for i := 0; i+1 < len(periods); i++ {
		assert.Equal(t, periods[i].End.AddDate(0, 0, 1), periods[i+1].Start, "gap after period %d", i)
		assert.Equal(t, periods[i].Next(), periods[i+1])
	}
	for _, p := range periods {
		assert.Equal(t, FromPayday(p.Payday), p)
	}
}

func TestGenerateSequence_NonPositiveCount(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GenerateSequence(Date(2025, time.December, 29), 0))
	assert.Empty(t, GenerateSequence(Date(2025, time.December, 29), -3))
}

func TestSpanForPayday(t *testing.T) {
	t.Parallel()

	span := SpanForPayday(Date(2025, time.September, 26))

	assert.Equal(t, "2025-08-25", FormatDate(span.Start))
	assert.Equal(t, "2025-09-21", FormatDate(span.End))
	assert.Equal(t, "2025-09-12", FormatDate(span.Payday1))
	assert.Equal(t, "2025-09-26", FormatDate(span.Payday2))

	periods := span.Periods()
	assert.Equal(t, periods[0].End.AddDate(0, 0, 1), periods[1].Start)
	assert.Equal(t, span.Start, periods[0].Start)
	assert.Equal(t, span.End, periods[1].End)
}

func TestForYear(t *testing.T) {
	t.Parallel()

	periods := ForYear(2026, DefaultReferencePayday)
	require.Len(t, periods, PeriodsPerYear)
	assert.Equal(t, "2026-01-02", FormatDate(periods[0].Payday))
	assert.Equal(t, "2026-01-16", FormatDate(periods[1].Payday))
	assert.Equal(t, "2026-12-18", FormatDate(periods[25].Payday))

	periods = ForYear(2025, DefaultReferencePayday)
	assert.Equal(t, "2025-01-03", FormatDate(periods[0].Payday))
	assert.Contains(t, periods, FromPayday(DefaultReferencePayday))
}

func TestContaining(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date, payday string
	}{
		{"2025-09-08", "2025-09-26"},
		{"2025-09-21", "2025-09-26"},
		{"2025-09-22", "2025-10-10"},
		{"2025-09-07", "2025-09-12"},
		{"2026-01-01", "2026-01-16"},
		{"2024-02-29", "2024-03-15"},
	}

	for _, tt := range tests {
		p := Containing(mustDate(t, tt.date), DefaultReferencePayday)
		assert.Equal(t, tt.payday, FormatDate(p.Payday), tt.date)
		assert.True(t, p.Contains(mustDate(t, tt.date)), tt.date)
	}
}

func TestNextPayday(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2025-09-26", FormatDate(NextPayday(Date(2025, time.September, 25), DefaultReferencePayday).Payday))
	assert.Equal(t, "2025-09-26", FormatDate(NextPayday(Date(2025, time.September, 26), DefaultReferencePayday).Payday))
	assert.Equal(t, "2025-10-10", FormatDate(NextPayday(Date(2025, time.September, 27), DefaultReferencePayday).Payday))
}

func TestPeriod_Status(t *testing.T) {
	t.Parallel()

	p := FromPayday(Date(2025, time.September, 26))

	assert.Equal(t, StatusOpen, p.Status(Date(2025, time.September, 7)))
	assert.Equal(t, StatusProcessing, p.Status(Date(2025, time.September, 8)))
	assert.Equal(t, StatusProcessing, p.Status(time.Date(2025, time.September, 21, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, StatusClosed, p.Status(Date(2025, time.September, 22)))
}

func TestValidatePayday(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePayday(Date(2025, time.October, 24)))
	assert.ErrorIs(t, ValidatePayday(Date(2025, time.October, 25)), ErrPaydayNotFriday)
}
