package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venue-booking/internal/data/entity"
	"venue-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDateUnavailable is returned when an insert loses the race for a
// date: another reserved or booked row already holds it.
var ErrDateUnavailable = errors.New("date is already reserved or booked")

const bookingColumns = `id, booking_reference, booking_date, status, name, email, phone,
		package_type, duration, booking_time, price, notes,
		payment_reference, payment_status, expires_at, created_at, updated_at`

type BookingRepository interface {
	// CreateReserved inserts a new reserved row. The partial unique
	// index on active dates makes the insert itself the availability
	// check; a conflicting date returns ErrDateUnavailable.
	CreateReserved(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByReference(ctx context.Context, reference string) (*entity.Booking, error)

	// Business queries
	FindActiveByDate(ctx context.Context, date time.Time) ([]*entity.Booking, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error)
	Confirm(ctx context.Context, bookingID uuid.UUID, paymentReference string) (bool, error)
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) CreateReserved(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.BookingReference,
		booking.BookingDate,
		booking.Status,
		booking.Name,
		booking.Email,
		booking.Phone,
		booking.PackageType,
		booking.Duration,
		booking.BookingTime,
		booking.Price,
		booking.Notes,
		booking.PaymentReference,
		booking.PaymentStatus,
		booking.ExpiresAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.log.Warn("Date conflict on booking insert",
				zap.String("booking_reference", booking.BookingReference),
				zap.Time("booking_date", booking.BookingDate),
			)
			return ErrDateUnavailable
		}

		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_reference", booking.BookingReference),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingReference, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanRow(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`

	booking, err := r.scanRow(r.db.QueryRow(ctx, query, reference))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by reference",
			zap.Error(err),
			zap.String("booking_reference", reference),
		)
		return nil, fmt.Errorf("find booking by reference %s: %w", reference, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindActiveByDate(ctx context.Context, date time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_date = $1 AND status IN ('reserved', 'booked')
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		r.log.Error("Failed to find bookings by date",
			zap.Error(err),
			zap.Time("booking_date", date),
		)
		return nil, fmt.Errorf("find bookings by date %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *bookingRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_date BETWEEN $1 AND $2 AND status IN ('reserved', 'booked')
		ORDER BY booking_date
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find bookings by date range",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("find bookings between %s and %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// Confirm transitions a reserved booking to booked and stores the
// provider reference. Returns false without error when the row was not
// in reserved state, so the caller can decide whether that is an
// idempotent replay or a real failure.
func (r *bookingRepository) Confirm(ctx context.Context, bookingID uuid.UUID, paymentReference string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'booked', payment_reference = $2, payment_status = 'completed',
		    expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'reserved'
	`

	result, err := r.db.Exec(ctx, query, bookingID, paymentReference)
	if err != nil {
		r.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_reference", paymentReference),
		)
		return false, fmt.Errorf("confirm booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM bookings WHERE status = 'reserved' AND expires_at IS NOT NULL AND expires_at < $1`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to release expired reservations", zap.Error(err))
		return 0, fmt.Errorf("release expired reservations: %w", err)
	}

	released := result.RowsAffected()
	if released > 0 {
		r.log.Info("Expired reservations released", zap.Int64("count", released))
	}

	return released, nil
}

func (r *bookingRepository) scanRow(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.BookingReference,
		&booking.BookingDate,
		&booking.Status,
		&booking.Name,
		&booking.Email,
		&booking.Phone,
		&booking.PackageType,
		&booking.Duration,
		&booking.BookingTime,
		&booking.Price,
		&booking.Notes,
		&booking.PaymentReference,
		&booking.PaymentStatus,
		&booking.ExpiresAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) scanRows(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanRow(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}
