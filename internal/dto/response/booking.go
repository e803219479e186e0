package response

import (
	"time"

	"venue-booking/internal/data/entity"
	"venue-booking/pkg/utils"
)

type AvailabilityResponse struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// CalendarResponse maps each date in the requested range to its status.
// Dates with no active booking report "available", which is synthesised
// here and never stored.
type CalendarResponse struct {
	From  string                          `json:"from"`
	To    string                          `json:"to"`
	Dates map[string]entity.BookingStatus `json:"dates"`
}

type BookingResponse struct {
	ID               string                `json:"id"`
	BookingReference string                `json:"booking_reference"`
	BookingDate      string                `json:"booking_date"`
	Status           entity.BookingStatus  `json:"status"`
	Name             string                `json:"name"`
	Email            string                `json:"email"`
	Phone            string                `json:"phone"`
	PackageType      entity.PackageType    `json:"package_type"`
	Duration         entity.Duration       `json:"duration"`
	BookingTime      string                `json:"booking_time"`
	Price            float64               `json:"price"`
	Notes            *string               `json:"notes,omitempty"`
	PaymentReference *string               `json:"payment_reference,omitempty"`
	PaymentStatus    *entity.PaymentStatus `json:"payment_status,omitempty"`
	ExpiresAt        *time.Time            `json:"expires_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// CheckoutResponse carries the signed redirect form the browser posts
// to the payment provider.
type CheckoutResponse struct {
	ProcessURL string            `json:"process_url"`
	Fields     map[string]string `json:"fields"`
}

type PackageRateResponse struct {
	PackageType entity.PackageType          `json:"package_type"`
	Rates       map[entity.Duration]float64 `json:"rates"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:               booking.ID.String(),
		BookingReference: booking.BookingReference,
		BookingDate:      utils.FormatDate(booking.BookingDate),
		Status:           booking.Status,
		Name:             booking.Name,
		Email:            booking.Email,
		Phone:            booking.Phone,
		PackageType:      booking.PackageType,
		Duration:         booking.Duration,
		BookingTime:      booking.BookingTime,
		Price:            booking.Price,
		Notes:            booking.Notes,
		PaymentReference: booking.PaymentReference,
		PaymentStatus:    booking.PaymentStatus,
		ExpiresAt:        booking.ExpiresAt,
		CreatedAt:        booking.CreatedAt,
	}
}
