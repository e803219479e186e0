package wire

import (
	"venue-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// GET /api/availability - Availability oracle for one date
	r.Get("/api/availability", bookingHandler.CheckAvailability)

	// GET /api/calendar - Date to status map for the calendar view
	r.Get("/api/calendar", bookingHandler.GetCalendar)

	// GET /api/packages - Rate card
	r.Get("/api/packages", bookingHandler.GetPackages)

	// POST /api/bookings - Create a reservation
	r.Post("/api/bookings", bookingHandler.CreateBooking)

	// GET /api/bookings/{id} - Booking status for the return page
	r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
}
