package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venue-booking/internal/data/entity"
	"venue-booking/internal/data/repository"
	"venue-booking/internal/dto/request"
	"venue-booking/internal/dto/response"
	"venue-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCalendarRangeDays bounds the calendar query; the front end asks
// for one month at a time.
const maxCalendarRangeDays = 92

type BookingService interface {
	// Availability oracle
	CheckAvailability(ctx context.Context, date string) (*response.AvailabilityResponse, error)
	GetCalendar(ctx context.Context, from, to string) (*response.CalendarResponse, error)
	GetPackages(ctx context.Context) []response.PackageRateResponse

	// Reservation state machine
	CreateReservation(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ConfirmPayment(ctx context.Context, bookingReference, paymentReference string) (*response.BookingResponse, error)
	ReleaseExpired(ctx context.Context) (int64, error)
}

type bookingService struct {
	repo           *repository.Repository
	rates          RateCard
	reservationTTL time.Duration
	log            *zap.Logger
}

func NewBookingService(repo *repository.Repository, config *utils.Config, log *zap.Logger) (BookingService, error) {
	if err := DefaultRateCard.Validate(); err != nil {
		return nil, fmt.Errorf("validate rate card: %w", err)
	}

	ttl := time.Duration(config.Booking.ReservationTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &bookingService{
		repo:           repo,
		rates:          DefaultRateCard,
		reservationTTL: ttl,
		log:            log.With(zap.String("service", "booking")),
	}, nil
}

// CheckAvailability reports whether a date can still be booked. A
// storage failure is returned as an error, never as "available": the
// caller must refuse to proceed when availability is unknown.
func (s *bookingService) CheckAvailability(ctx context.Context, date string) (*response.AvailabilityResponse, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.Booking.FindActiveByDate(ctx, day)
	if err != nil {
		s.log.Error("Availability check failed", zap.Error(err), zap.String("date", date))
		return nil, fmt.Errorf("check availability for %s: %w", date, err)
	}

	return &response.AvailabilityResponse{
		Date:      date,
		Available: len(active) == 0 && !isPast(day),
	}, nil
}

func (s *bookingService) GetCalendar(ctx context.Context, from, to string) (*response.CalendarResponse, error) {
	fromDay, err := utils.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDay, err := utils.ParseDate(to)
	if err != nil {
		return nil, err
	}

	if toDay.Before(fromDay) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to, from)
	}
	if toDay.Sub(fromDay) > maxCalendarRangeDays*24*time.Hour {
		return nil, fmt.Errorf("invalid range: more than %d days", maxCalendarRangeDays)
	}

	bookings, err := s.repo.Booking.FindByDateRange(ctx, fromDay, toDay)
	if err != nil {
		s.log.Error("Calendar query failed", zap.Error(err))
		return nil, fmt.Errorf("get calendar %s..%s: %w", from, to, err)
	}

	dates := make(map[string]entity.BookingStatus)
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		dates[utils.FormatDate(day)] = entity.BookingStatusAvailable
	}
	for _, booking := range bookings {
		dates[utils.FormatDate(booking.BookingDate)] = booking.Status
	}

	return &response.CalendarResponse{From: from, To: to, Dates: dates}, nil
}

func (s *bookingService) GetPackages(ctx context.Context) []response.PackageRateResponse {
	packages := make([]response.PackageRateResponse, 0, len(allPackages))
	for _, pkg := range allPackages {
		rates := make(map[entity.Duration]float64, len(allDurations))
		for _, dur := range allDurations {
			rates[dur] = s.rates[pkg][dur]
		}
		packages = append(packages, response.PackageRateResponse{
			PackageType: pkg,
			Rates:       rates,
		})
	}
	return packages
}

// CreateReservation performs the absent -> reserved transition with a
// single conditional insert. There is no separate availability
// pre-check: the unique index on active dates decides the winner when
// two customers contend for one date.
func (s *bookingService) CreateReservation(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	day, err := utils.ParseDate(req.BookingDate)
	if err != nil {
		return nil, err
	}
	if isPast(day) {
		return nil, fmt.Errorf("cannot book past date %s", req.BookingDate)
	}

	price, err := s.rates.Price(entity.PackageType(req.PackageType), entity.Duration(req.Duration), req.Hours)
	if err != nil {
		return nil, fmt.Errorf("price booking: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.reservationTTL)
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingReference: utils.GenerateBookingReference(),
		BookingDate:      day,
		Status:           entity.BookingStatusReserved,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		PackageType:      entity.PackageType(req.PackageType),
		Duration:         entity.Duration(req.Duration),
		BookingTime:      req.BookingTime,
		Price:            price,
		Notes:            req.Notes,
		ExpiresAt:        &expiresAt,
	}

	// A storage failure here aborts the flow before the customer is
	// handed to the payment provider.
	if err := s.repo.Booking.CreateReserved(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrDateUnavailable) {
			return nil, err
		}
		s.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("date", req.BookingDate),
		)
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.log.Info("Reservation created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_reference", booking.BookingReference),
		zap.String("date", req.BookingDate),
		zap.String("package", req.PackageType),
		zap.Float64("price", price),
		zap.Time("expires_at", expiresAt),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ConfirmPayment performs reserved -> booked for a verified payment.
// Replays of the same confirmation are no-ops: the transition applies
// at most once per booking.
func (s *bookingService) ConfirmPayment(ctx context.Context, bookingReference, paymentReference string) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByReference(ctx, bookingReference)
	if err != nil {
		return nil, fmt.Errorf("confirm payment for %s: %w", bookingReference, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingReference)
	}

	if booking.Status == entity.BookingStatusBooked {
		if booking.PaymentReference != nil && *booking.PaymentReference == paymentReference {
			s.log.Info("Duplicate payment confirmation ignored",
				zap.String("booking_reference", bookingReference),
				zap.String("payment_reference", paymentReference),
			)
			resp := response.BookingToResponse(booking)
			return &resp, nil
		}
		return nil, fmt.Errorf("booking %s already booked under a different payment reference", bookingReference)
	}

	confirmed, err := s.repo.Booking.Confirm(ctx, booking.ID, paymentReference)
	if err != nil {
		// Money has moved but the record could not be updated. Surface
		// the transaction id for manual reconciliation; never retry
		// here.
		s.log.Error("Payment captured but booking could not be confirmed, manual reconciliation required",
			zap.Error(err),
			zap.String("booking_reference", bookingReference),
			zap.String("payment_reference", paymentReference),
		)
		return nil, fmt.Errorf("payment %s received but booking %s could not be confirmed, contact support with this transaction id: %w",
			paymentReference, bookingReference, err)
	}

	if !confirmed {
		// Lost a race with another delivery of the same notification.
		booking, err = s.repo.Booking.FindByReference(ctx, bookingReference)
		if err != nil || booking == nil {
			return nil, fmt.Errorf("booking %s vanished during confirmation", bookingReference)
		}
		if booking.Status != entity.BookingStatusBooked ||
			booking.PaymentReference == nil || *booking.PaymentReference != paymentReference {
			return nil, fmt.Errorf("booking %s is not confirmable", bookingReference)
		}
		resp := response.BookingToResponse(booking)
		return &resp, nil
	}

	s.log.Info("Booking confirmed",
		zap.String("booking_reference", bookingReference),
		zap.String("payment_reference", paymentReference),
	)

	booking, err = s.repo.Booking.FindByReference(ctx, bookingReference)
	if err != nil || booking == nil {
		return nil, fmt.Errorf("reload booking %s after confirmation: %w", bookingReference, err)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ReleaseExpired frees dates held by reservations whose payment never
// arrived within the TTL.
func (s *bookingService) ReleaseExpired(ctx context.Context) (int64, error) {
	released, err := s.repo.Booking.ReleaseExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("release expired reservations: %w", err)
	}
	return released, nil
}

func isPast(day time.Time) bool {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return day.Before(today)
}
