package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateBookingReference creates a unique booking reference with timestamp
func GenerateBookingReference() string {
	now := time.Now()

	// Format: MCT-YYYYMMDD-HHMMSS-RANDOM
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("MCT-%s-%s-%s", datePart, timePart, randomPart)
}

// ParseDate parses a calendar date in YYYY-MM-DD form, ignoring time-of-day.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}
