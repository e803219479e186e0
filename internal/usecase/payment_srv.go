package usecase

import (
	"context"
	"fmt"

	"venue-booking/internal/data/entity"
	"venue-booking/internal/data/repository"
	"venue-booking/internal/dto/response"
	"venue-booking/internal/payfast"
	"venue-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentGateway is the provider surface the payment service consumes:
// build a redirect form, verify a notification. Satisfied by
// payfast.Client.
type PaymentGateway interface {
	CheckoutFields(bookingReference, customerName, customerEmail, itemName string, amount float64) (string, map[string]string)
	VerifyNotification(ctx context.Context, n *payfast.Notification, expectedAmount float64) error
}

type PaymentService interface {
	// Checkout builds the signed redirect form for a reserved booking.
	Checkout(ctx context.Context, bookingID string) (*response.CheckoutResponse, error)

	// HandleNotification processes one ITN delivery: verify against the
	// provider, then confirm the reservation. Browser return/cancel
	// pages never reach this path; they only read booking state.
	HandleNotification(ctx context.Context, n *payfast.Notification) error
}

type paymentService struct {
	repo    *repository.Repository
	booking BookingService
	gateway PaymentGateway
	log     *zap.Logger
}

func NewPaymentService(repo *repository.Repository, booking BookingService, gateway PaymentGateway, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:    repo,
		booking: booking,
		gateway: gateway,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) Checkout(ctx context.Context, bookingID string) (*response.CheckoutResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("checkout booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	if booking.Status != entity.BookingStatusReserved {
		return nil, fmt.Errorf("cannot check out booking in status %s", booking.Status)
	}

	itemName := fmt.Sprintf("Northcliff MCT - %s %s %s",
		booking.PackageType, booking.Duration, utils.FormatDate(booking.BookingDate))

	processURL, fields := s.gateway.CheckoutFields(
		booking.BookingReference,
		booking.Name,
		booking.Email,
		itemName,
		booking.Price,
	)

	s.log.Info("Checkout form issued",
		zap.String("booking_reference", booking.BookingReference),
		zap.Float64("amount", booking.Price),
	)

	return &response.CheckoutResponse{
		ProcessURL: processURL,
		Fields:     fields,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, n *payfast.Notification) error {
	if n.BookingReference == "" {
		return fmt.Errorf("notification has no booking reference")
	}

	booking, err := s.repo.Booking.FindByReference(ctx, n.BookingReference)
	if err != nil {
		return fmt.Errorf("load booking for notification %s: %w", n.PaymentID, err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s not found for notification %s", n.BookingReference, n.PaymentID)
	}

	if err := s.gateway.VerifyNotification(ctx, n, booking.Price); err != nil {
		s.log.Warn("Notification rejected",
			zap.Error(err),
			zap.String("booking_reference", n.BookingReference),
			zap.String("payment_id", n.PaymentID),
		)
		return fmt.Errorf("invalid notification %s: %w", n.PaymentID, err)
	}

	if _, err := s.booking.ConfirmPayment(ctx, n.BookingReference, n.PaymentID); err != nil {
		return err
	}

	return nil
}
