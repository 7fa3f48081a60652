package inquiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDate(value)
	require.NoError(t, err)
	return d
}

func TestPeriodLabels(t *testing.T) {
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"},
		MonthsBetween(day(t, "2024-01-01"), day(t, "2024-03-31")))
	assert.Equal(t, []string{"Nov 2023", "Dec 2023", "Jan 2024"},
		MonthsBetween(day(t, "2023-11-30"), day(t, "2024-01-01")))
	assert.Equal(t, []string{"Q4 2023", "Q1 2024", "Q2 2024"},
		QuartersBetween(day(t, "2023-12-15"), day(t, "2024-04-01")))
	assert.Equal(t, []string{"2022", "2023", "2024"},
		YearsBetween(day(t, "2022-06-01"), day(t, "2024-01-01")))
	assert.Empty(t, MonthsBetween(day(t, "2024-02-01"), day(t, "2024-01-01")))
}

func TestQuartersCoverMidQuarterStart(t *testing.T) {
	periods := BuildPeriods(day(t, "2024-02-15"), day(t, "2024-04-10"), GroupByQuarter)
	require.Len(t, periods, 2)
	assert.Equal(t, "Q1 2024", periods[0].Label())
	assert.Equal(t, day(t, "2024-02-15"), periods[0].Start)
	assert.Equal(t, day(t, "2024-03-31"), periods[0].End)
	assert.Equal(t, "Q2 2024", periods[1].Label())
	assert.Equal(t, day(t, "2024-04-01"), periods[1].Start)
	assert.Equal(t, day(t, "2024-04-10"), periods[1].End)
}

func TestPeriodsCoverRangeWithoutGapsOrOverlaps(t *testing.T) {
	start := day(t, "2023-01-01")
	for _, grain := range []GroupBy{GroupByMonth, GroupByQuarter, GroupByYear} {
		for offset := 0; offset < 800; offset += 37 {
			for length := 0; length < 500; length += 29 {
				from := start.AddDate(0, 0, offset)
				to := from.AddDate(0, 0, length)
				periods := BuildPeriods(from, to, grain)
				require.NotEmpty(t, periods)

				assert.Equal(t, from, periods[0].Start, "%s %s..%s", grain, from, to)
				assert.Equal(t, to, periods[len(periods)-1].End, "%s %s..%s", grain, from, to)

				seen := make(map[string]bool)
				for i, p := range periods {
					assert.False(t, p.End.Before(p.Start))
					assert.False(t, seen[p.Label()], "duplicate label %s", p.Label())
					seen[p.Label()] = true
					if i > 0 {
						assert.Equal(t, periods[i-1].End.AddDate(0, 0, 1), p.Start, "%s gap before %s", grain, p.Label())
					}
				}
			}
		}
	}
}

func TestDisplaySpan(t *testing.T) {
	p := BuildPeriods(day(t, "2024-05-10"), day(t, "2024-06-20"), GroupByMonth)[1]
	assert.Equal(t, Span{From: day(t, "2024-06-01"), To: day(t, "2024-06-20")}, p.DisplaySpan(CurrencyTypePTD))
	assert.Equal(t, Span{From: day(t, "2024-01-01"), To: day(t, "2024-06-20")}, p.DisplaySpan(CurrencyTypeYTD))
	assert.Equal(t, p.Span(), p.DisplaySpan(CurrencyTypeTotalEntered))
}

func TestMonthsCovered(t *testing.T) {
	assert.Equal(t, 1, Span{From: day(t, "2024-01-15"), To: day(t, "2024-01-31")}.MonthsCovered())
	assert.Equal(t, 3, Span{From: day(t, "2024-01-01"), To: day(t, "2024-03-31")}.MonthsCovered())
	assert.Equal(t, 14, Span{From: day(t, "2023-12-01"), To: day(t, "2025-01-01")}.MonthsCovered())
}

func TestUnknownGrainFallsBackToMonth(t *testing.T) {
	periods := BuildPeriods(day(t, "2024-01-01"), day(t, "2024-02-29"), "")
	require.Len(t, periods, 2)
	assert.Equal(t, GroupByMonth, periods[0].Grain)
}
