package usecase

import (
	"fmt"

	"venue-booking/internal/data/entity"
)

// RateCard maps package type and duration to a price in ZAR. Hourly
// entries are per hour.
type RateCard map[entity.PackageType]map[entity.Duration]float64

// DefaultRateCard is the published Northcliff MCT rate card.
var DefaultRateCard = RateCard{
	entity.PackageBoardroom: {
		entity.DurationHalfDay: 3000,
		entity.DurationFullDay: 4500,
		entity.DurationHourly:  500,
	},
	entity.PackageConsultation: {
		entity.DurationHalfDay: 1200,
		entity.DurationFullDay: 2400,
		entity.DurationHourly:  500,
	},
	entity.PackageBoardroomConsultation: {
		entity.DurationHalfDay: 1600,
		entity.DurationFullDay: 3200,
		entity.DurationHourly:  500,
	},
}

var allPackages = []entity.PackageType{
	entity.PackageBoardroom,
	entity.PackageConsultation,
	entity.PackageBoardroomConsultation,
}

var allDurations = []entity.Duration{
	entity.DurationHalfDay,
	entity.DurationFullDay,
	entity.DurationHourly,
}

// Validate checks the card is exhaustive over every package and
// duration. Called at startup so a misconfigured card fails fast
// instead of surfacing as a zero price mid-booking.
func (rc RateCard) Validate() error {
	for _, pkg := range allPackages {
		rates, ok := rc[pkg]
		if !ok {
			return fmt.Errorf("rate card missing package %s", pkg)
		}
		for _, dur := range allDurations {
			price, ok := rates[dur]
			if !ok {
				return fmt.Errorf("rate card missing %s rate for package %s", dur, pkg)
			}
			if price <= 0 {
				return fmt.Errorf("rate card has non-positive %s rate for package %s", dur, pkg)
			}
		}
	}
	return nil
}

// Price computes the amount due. Hourly bookings multiply the hourly
// rate by the requested hours; hours defaults to 1 and is ignored for
// half-day and full-day bookings.
func (rc RateCard) Price(pkg entity.PackageType, dur entity.Duration, hours int) (float64, error) {
	rates, ok := rc[pkg]
	if !ok {
		return 0, fmt.Errorf("unknown package %s", pkg)
	}
	rate, ok := rates[dur]
	if !ok {
		return 0, fmt.Errorf("unknown duration %s for package %s", dur, pkg)
	}

	if dur != entity.DurationHourly {
		return rate, nil
	}

	if hours < 1 {
		hours = 1
	}
	return rate * float64(hours), nil
}
