package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errMissingFields   = errors.New("please fill in all required fields")
	errInvalidQuantity = errors.New("quantity must be a positive whole number")
	errInvalidPeriod   = errors.New("enter a valid year and month (1-12)")
	errNoMedicine      = errors.New("select a medicine")
)

// parseQuantity accepts positive integers only.
func parseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || q <= 0 {
		return 0, errInvalidQuantity
	}
	return q, nil
}

// checkDispense blocks dispensing more than the cached stock.
func (s *State) checkDispense(medicineID string, qty int64) error {
	if avail := s.CurrentStock(medicineID); qty > avail {
		return fmt.Errorf("cannot dispense %d, only %d in stock", qty, avail)
	}
	return nil
}

func parsePeriod(year, month string) (int, int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 {
		return 0, 0, errInvalidPeriod
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, errInvalidPeriod
	}
	return y, m, nil
}
