package types

import (
	"time"

	"github.com/cockroachdb/errors"
)

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Date is a calendar day with no time-of-day or zone, the partition key of
// range queries.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errors.Mark(errors.Wrapf(err, "parse date %q", s), ErrInvalidDate)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

func (d Date) IsZero() bool { return d == Date{} }

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}
