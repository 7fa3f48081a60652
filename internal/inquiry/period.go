package inquiry

import (
	"fmt"
	"strconv"
	"time"
)

// Period is one report bucket. Start and End are the bucket's calendar span
// truncated to the report range; Bucket is the untruncated calendar start and
// drives the label.
type Period struct {
	Start  time.Time
	End    time.Time
	Bucket time.Time
	Grain  GroupBy
}

// Span returns the period-local activity span.
func (p Period) Span() Span { return Span{From: p.Start, To: p.End} }

// DisplaySpan returns the span rows of this period report on: the period
// itself, or Jan 1 of the period's year through its end in YTD mode.
func (p Period) DisplaySpan(ct CurrencyType) Span {
	if ct.IsYTD() {
		return Span{From: yearStart(p.Start), To: p.End}
	}
	return p.Span()
}

// Label formats the bucket for display: "Jan 2024", "Q1 2024" or "2024".
func (p Period) Label() string {
	switch p.Grain {
	case GroupByQuarter:
		return fmt.Sprintf("Q%d %d", quarterOf(p.Bucket.Month()), p.Bucket.Year())
	case GroupByYear:
		return strconv.Itoa(p.Bucket.Year())
	default:
		return p.Bucket.Format("Jan 2006")
	}
}

// Key identifies the period independently of its label.
func (p Period) Key() [2]time.Time { return [2]time.Time{p.Start, p.End} }

// BuildPeriods partitions [from, to] into ascending calendar buckets. The
// first and last buckets are truncated to the range so spans never overlap
// and leave no gaps.
func BuildPeriods(from, to time.Time, grain GroupBy) []Period {
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		return nil
	}

	var (
		cursor time.Time
		step   func(time.Time) time.Time
		end    func(time.Time) time.Time
	)
	switch grain {
	case GroupByQuarter:
		cursor = quarterStart(from)
		step = func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }
		end = func(t time.Time) time.Time { return t.AddDate(0, 3, -1) }
	case GroupByYear:
		cursor = yearStart(from)
		step = func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }
		end = func(t time.Time) time.Time { return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC) }
	default:
		grain = GroupByMonth
		cursor = monthStart(from)
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		end = func(t time.Time) time.Time { return t.AddDate(0, 1, -1) }
	}

	seen := make(map[time.Time]struct{})
	var periods []Period
	for ; !cursor.After(to); cursor = step(cursor) {
		if _, dup := seen[cursor]; dup {
			continue
		}
		seen[cursor] = struct{}{}
		p := Period{Start: cursor, End: end(cursor), Bucket: cursor, Grain: grain}
		if p.Start.Before(from) {
			p.Start = from
		}
		if p.End.After(to) {
			p.End = to
		}
		periods = append(periods, p)
	}
	return periods
}

// MonthsBetween returns "Mon YYYY" labels for every month touching [from, to].
func MonthsBetween(from, to time.Time) []string {
	return labels(BuildPeriods(from, to, GroupByMonth))
}

// QuartersBetween returns distinct "Qn YYYY" labels for every quarter touching
// [from, to].
func QuartersBetween(from, to time.Time) []string {
	return labels(BuildPeriods(from, to, GroupByQuarter))
}

// YearsBetween returns the years from from.Year() to to.Year() inclusive.
func YearsBetween(from, to time.Time) []string {
	return labels(BuildPeriods(from, to, GroupByYear))
}

func labels(periods []Period) []string {
	out := make([]string, 0, len(periods))
	for _, p := range periods {
		out = append(out, p.Label())
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func quarterStart(t time.Time) time.Time {
	month := time.Month((quarterOf(t.Month())-1)*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

func yearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
