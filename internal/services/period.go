package services

import (
	"time"

	apperrors "pennywise/internal/errors"
)

// validatePeriod checks a zero-based month and a calendar year.
func validatePeriod(month, year int) error {
	if month < 0 || month > 11 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 0 and 11")
	}
	if year < 1 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be between 1 and 9999")
	}
	return nil
}

// monthRange returns the UTC bounds [start, end) of a zero-based month in loc.
func monthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

// yearRange returns the UTC bounds [start, end) of a calendar year in loc.
func yearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(1, 0, 0).UTC()
}

// shiftMonth moves a zero-based (month, year) by delta months.
func shiftMonth(month, year, delta int) (int, int) {
	total := year*12 + month + delta
	return total % 12, total / 12
}
