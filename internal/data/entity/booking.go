package entity

import (
	"time"
)

type BookingStatus string

const (
	// BookingStatusAvailable is display-only: the calendar reports it for
	// dates with no active row. It is never persisted.
	BookingStatusAvailable BookingStatus = "available"
	BookingStatusReserved  BookingStatus = "reserved"
	BookingStatusBooked    BookingStatus = "booked"
)

type PackageType string

const (
	PackageBoardroom             PackageType = "boardroom"
	PackageConsultation          PackageType = "consultation"
	PackageBoardroomConsultation PackageType = "boardroom_consultation"
)

type Duration string

const (
	DurationHalfDay Duration = "half_day"
	DurationFullDay Duration = "full_day"
	DurationHourly  Duration = "hourly"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Booking is the sole persistent entity. At most one reserved or booked
// row may exist per BookingDate; the bookings table enforces this with a
// partial unique index over active statuses.
type Booking struct {
	Base
	BookingReference string         `db:"booking_reference"`
	BookingDate      time.Time      `db:"booking_date"` // date only, time-of-day ignored
	Status           BookingStatus  `db:"status"`
	Name             string         `db:"name"`
	Email            string         `db:"email"`
	Phone            string         `db:"phone"`
	PackageType      PackageType    `db:"package_type"`
	Duration         Duration       `db:"duration"`
	BookingTime      string         `db:"booking_time"`
	Price            float64        `db:"price"`
	Notes            *string        `db:"notes"`
	PaymentReference *string        `db:"payment_reference"`
	PaymentStatus    *PaymentStatus `db:"payment_status"`
	// ExpiresAt bounds how long a reserved row may hold its date while
	// payment is outstanding. Cleared on confirmation.
	ExpiresAt *time.Time `db:"expires_at"`
}

// Active reports whether the row currently blocks its date.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusReserved || b.Status == BookingStatusBooked
}
