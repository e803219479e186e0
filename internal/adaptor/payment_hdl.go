package adaptor

import (
	"net/http"
	"strings"

	"venue-booking/internal/payfast"
	"venue-booking/internal/usecase"
	"venue-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// Checkout handles POST /api/bookings/{id}/checkout
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	checkout, err := h.service.Checkout(r.Context(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "checkout")
		return
	}

	utils.ResponseSuccess(w, "success", checkout)
}

// Notify handles POST /api/payments/notify, the provider's ITN webhook.
// This endpoint is the only writer of the reserved -> booked transition;
// the browser return and cancel pages never confirm anything.
func (h *PaymentHandler) Notify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.ResponseBadRequest(w, "Invalid notification body", nil)
		return
	}

	notification := payfast.ParseNotification(r.PostForm)

	if err := h.service.HandleNotification(r.Context(), notification); err != nil {
		errMsg := err.Error()

		switch {
		case strings.Contains(errMsg, "invalid notification"),
			strings.Contains(errMsg, "not found"),
			strings.Contains(errMsg, "no booking reference"):
			// A forged or malformed notification is dropped with a 400;
			// the provider must not keep redelivering it.
			h.log.Warn("Notification dropped",
				zap.Error(err),
				zap.String("payment_id", notification.PaymentID),
			)
			utils.ResponseBadRequest(w, "notification rejected", nil)

		default:
			// Verified payment, storage failed. Respond 500 so the
			// provider redelivers; confirmation is idempotent, and the
			// payment id is logged for manual reconciliation.
			h.log.Error("Verified notification could not be applied",
				zap.Error(err),
				zap.String("payment_id", notification.PaymentID),
			)
			utils.ResponseInternalError(w, "notification could not be applied")
		}
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// handleServiceError maps service errors for payment operations
func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "invalid"):
		h.log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "cannot"):
		h.log.Warn(operation+" failed - invalid state",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
