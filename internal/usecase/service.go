package usecase

import (
	"fmt"

	"venue-booking/internal/data/repository"
	"venue-booking/internal/payfast"
	"venue-booking/pkg/utils"

	"go.uber.org/zap"
)

// Service groups all services
type Service struct {
	Booking BookingService
	Payment PaymentService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) (*Service, error) {
	booking, err := NewBookingService(repo, config, log)
	if err != nil {
		return nil, fmt.Errorf("init booking service: %w", err)
	}

	gateway := payfast.NewClient(config.PayFast, log)

	return &Service{
		Booking: booking,
		Payment: NewPaymentService(repo, booking, gateway, log),
	}, nil
}
