package wire

import (
	"venue-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// POST /api/bookings/{id}/checkout - Signed redirect form for payment
	r.Post("/api/bookings/{id}/checkout", paymentHandler.Checkout)

	// POST /api/payments/notify - Provider ITN webhook
	r.Post("/api/payments/notify", paymentHandler.Notify)
}
