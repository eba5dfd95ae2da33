// Package stock holds the ledger arithmetic: monthly periods, reconciliation of
// opening balance and flows into closing stock, and carry-forward planning for
// month close.
package stock

import (
	"errors"
	"fmt"
	"time"

	"medstock/internal/model"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year is out of range")
	ErrFuturePeriod = errors.New("period has not started yet")
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month int
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Validate checks the month and year ranges.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 2000 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// ValidateClosable additionally rejects months after the one containing now.
func (p Period) ValidateClosable(now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if PeriodOf(now).Before(p) {
		return ErrFuturePeriod
	}
	return nil
}

// Start is the first day of the month.
func (p Period) Start() model.Date {
	return model.Date{Time: time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)}
}

// End is the first day of the following month (exclusive bound).
func (p Period) End() model.Date {
	return p.Next().Start()
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Contains reports whether d falls inside the month.
func (p Period) Contains(d model.Date) bool {
	return d.Year() == p.Year && int(d.Month()) == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
