package repository

import (
	"venue-booking/pkg/database"

	"go.uber.org/zap"
)

// Repository groups all repositories
type Repository struct {
	Booking BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Booking: NewBookingRepository(db, log),
	}
}
