package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"venue-booking/internal/data/entity"
	"venue-booking/internal/data/repository"
	"venue-booking/internal/dto/request"
	"venue-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBookingRepo is an in-memory BookingRepository that enforces the
// same one-active-row-per-date rule as the partial unique index.
type fakeBookingRepo struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]*entity.Booking
	failReads   bool
	failCreate  bool
	failConfirm bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{rows: make(map[uuid.UUID]*entity.Booking)}
}

var errStorageDown = errors.New("storage down")

func (f *fakeBookingRepo) CreateReserved(ctx context.Context, booking *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate {
		return errStorageDown
	}

	for _, row := range f.rows {
		if row.Active() && row.BookingDate.Equal(booking.BookingDate) {
			return repository.ErrDateUnavailable
		}
	}

	clone := *booking
	f.rows[booking.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failReads {
		return nil, errStorageDown
	}

	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (f *fakeBookingRepo) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failReads {
		return nil, errStorageDown
	}

	for _, row := range f.rows {
		if row.BookingReference == reference {
			clone := *row
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindActiveByDate(ctx context.Context, date time.Time) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failReads {
		return nil, errStorageDown
	}

	var active []*entity.Booking
	for _, row := range f.rows {
		if row.Active() && row.BookingDate.Equal(date) {
			clone := *row
			active = append(active, &clone)
		}
	}
	return active, nil
}

func (f *fakeBookingRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failReads {
		return nil, errStorageDown
	}

	var matched []*entity.Booking
	for _, row := range f.rows {
		if row.Active() && !row.BookingDate.Before(from) && !row.BookingDate.After(to) {
			clone := *row
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}

func (f *fakeBookingRepo) Confirm(ctx context.Context, bookingID uuid.UUID, paymentReference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failConfirm {
		return false, errStorageDown
	}

	row, ok := f.rows[bookingID]
	if !ok || row.Status != entity.BookingStatusReserved {
		return false, nil
	}

	row.Status = entity.BookingStatusBooked
	row.PaymentReference = &paymentReference
	completed := entity.PaymentStatusCompleted
	row.PaymentStatus = &completed
	row.ExpiresAt = nil
	row.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeBookingRepo) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var released int64
	for id, row := range f.rows {
		if row.Status == entity.BookingStatusReserved && row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
			delete(f.rows, id)
			released++
		}
	}
	return released, nil
}

func (f *fakeBookingRepo) expireReservation(t *testing.T, reference string) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.BookingReference == reference {
			past := time.Now().Add(-time.Minute)
			row.ExpiresAt = &past
			return
		}
	}
	t.Fatalf("no reservation with reference %s", reference)
}

func newTestService(t *testing.T, fake *fakeBookingRepo) BookingService {
	t.Helper()

	cfg := &utils.Config{
		Booking: utils.BookingConfig{ReservationTTLMinutes: 30},
	}
	service, err := NewBookingService(&repository.Repository{Booking: fake}, cfg, zap.NewNop())
	require.NoError(t, err)
	return service
}

func futureDate(t *testing.T, daysAhead int) string {
	t.Helper()
	return time.Now().UTC().AddDate(0, 0, daysAhead).Format("2006-01-02")
}

func validRequest(date string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		Name:        "Thandi Nkosi",
		Email:       "thandi@example.com",
		Phone:       "+27111234567",
		BookingDate: date,
		BookingTime: "08:00",
		PackageType: "boardroom",
		Duration:    "half_day",
	}
}

func TestCheckAvailability(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	free := futureDate(t, 14)
	taken := futureDate(t, 15)

	_, err := service.CreateReservation(ctx, validRequest(taken))
	require.NoError(t, err)

	tests := []struct {
		name      string
		date      string
		available bool
	}{
		{name: "free date", date: free, available: true},
		{name: "reserved date", date: taken, available: false},
		{name: "past date", date: "2020-01-15", available: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.CheckAvailability(ctx, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.available, got.Available)
		})
	}
}

func TestCheckAvailability_FailsClosed(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)

	fake.failReads = true

	// A storage failure must never read as "available".
	got, err := service.CheckAvailability(context.Background(), futureDate(t, 7))
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestCreateReservation(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()
	date := futureDate(t, 30)

	booking, err := service.CreateReservation(ctx, validRequest(date))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusReserved, booking.Status)
	assert.Equal(t, date, booking.BookingDate)
	assert.Equal(t, 3000.0, booking.Price)
	assert.NotEmpty(t, booking.BookingReference)
	require.NotNil(t, booking.ExpiresAt)
	assert.True(t, booking.ExpiresAt.After(time.Now()))
	assert.Len(t, fake.rows, 1)
}

func TestCreateReservation_Rejections(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	taken := futureDate(t, 10)
	_, err := service.CreateReservation(ctx, validRequest(taken))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*request.CreateBookingRequest)
		wantErr error
	}{
		{
			name:    "date already reserved",
			mutate:  func(r *request.CreateBookingRequest) { r.BookingDate = taken },
			wantErr: repository.ErrDateUnavailable,
		},
		{
			name:   "past date",
			mutate: func(r *request.CreateBookingRequest) { r.BookingDate = "2020-01-15" },
		},
		{
			name:   "missing email",
			mutate: func(r *request.CreateBookingRequest) { r.Email = "" },
		},
		{
			name:   "unknown package",
			mutate: func(r *request.CreateBookingRequest) { r.PackageType = "penthouse" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(futureDate(t, 20))
			tt.mutate(req)

			_, err := service.CreateReservation(ctx, req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	// Rejections must not leave rows behind
	assert.Len(t, fake.rows, 1)
}

func TestCreateReservation_StorageFailureAbortsFlow(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)

	fake.failCreate = true

	_, err := service.CreateReservation(context.Background(), validRequest(futureDate(t, 5)))
	assert.Error(t, err)
	assert.Empty(t, fake.rows)
}

func TestCreateReservation_ConcurrentAttempts(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	date := futureDate(t, 45)

	const attempts = 8
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := service.CreateReservation(context.Background(), validRequest(date))
			results <- err
		}()
	}
	start.Done()

	var successes, conflicts int
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case errors.Is(err, repository.ErrDateUnavailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, fake.rows, 1)
}

func TestConfirmPayment(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	reserved, err := service.CreateReservation(ctx, validRequest(futureDate(t, 21)))
	require.NoError(t, err)

	booked, err := service.ConfirmPayment(ctx, reserved.BookingReference, "PF-10001")
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusBooked, booked.Status)
	require.NotNil(t, booked.PaymentReference)
	assert.Equal(t, "PF-10001", *booked.PaymentReference)
	require.NotNil(t, booked.PaymentStatus)
	assert.Equal(t, entity.PaymentStatusCompleted, *booked.PaymentStatus)
	assert.Nil(t, booked.ExpiresAt)
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	reserved, err := service.CreateReservation(ctx, validRequest(futureDate(t, 22)))
	require.NoError(t, err)

	first, err := service.ConfirmPayment(ctx, reserved.BookingReference, "PF-10002")
	require.NoError(t, err)

	// Replaying the same confirmation must not double-apply
	second, err := service.ConfirmPayment(ctx, reserved.BookingReference, "PF-10002")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, entity.BookingStatusBooked, second.Status)
	assert.Len(t, fake.rows, 1)
}

func TestConfirmPayment_DifferentReferenceRejected(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	reserved, err := service.CreateReservation(ctx, validRequest(futureDate(t, 23)))
	require.NoError(t, err)

	_, err = service.ConfirmPayment(ctx, reserved.BookingReference, "PF-10003")
	require.NoError(t, err)

	_, err = service.ConfirmPayment(ctx, reserved.BookingReference, "PF-99999")
	assert.ErrorContains(t, err, "different payment reference")
}

func TestConfirmPayment_UnknownBooking(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)

	_, err := service.ConfirmPayment(context.Background(), "MCT-unknown", "PF-10004")
	assert.ErrorContains(t, err, "not found")
}

func TestConfirmPayment_StorageFailureSurfacesTransactionID(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	reserved, err := service.CreateReservation(ctx, validRequest(futureDate(t, 24)))
	require.NoError(t, err)

	fake.failConfirm = true

	_, err = service.ConfirmPayment(ctx, reserved.BookingReference, "PF-10005")
	require.Error(t, err)
	// The customer paid; the error must carry the transaction id for
	// manual reconciliation.
	assert.ErrorContains(t, err, "PF-10005")
	assert.ErrorContains(t, err, "contact support")
}

func TestGetCalendar(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	reservedDate := futureDate(t, 3)
	bookedDate := futureDate(t, 4)

	_, err := service.CreateReservation(ctx, validRequest(reservedDate))
	require.NoError(t, err)

	booking, err := service.CreateReservation(ctx, validRequest(bookedDate))
	require.NoError(t, err)
	_, err = service.ConfirmPayment(ctx, booking.BookingReference, "PF-10006")
	require.NoError(t, err)

	calendar, err := service.GetCalendar(ctx, futureDate(t, 1), futureDate(t, 7))
	require.NoError(t, err)

	assert.Len(t, calendar.Dates, 7)
	assert.Equal(t, entity.BookingStatusReserved, calendar.Dates[reservedDate])
	assert.Equal(t, entity.BookingStatusBooked, calendar.Dates[bookedDate])
	assert.Equal(t, entity.BookingStatusAvailable, calendar.Dates[futureDate(t, 5)])
}

func TestGetCalendar_BadRanges(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	_, err := service.GetCalendar(ctx, futureDate(t, 7), futureDate(t, 1))
	assert.ErrorContains(t, err, "invalid range")

	_, err = service.GetCalendar(ctx, futureDate(t, 0), futureDate(t, 400))
	assert.ErrorContains(t, err, "invalid range")
}

func TestReleaseExpired(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()
	date := futureDate(t, 12)

	reserved, err := service.CreateReservation(ctx, validRequest(date))
	require.NoError(t, err)

	// Nothing to release while the reservation is within its TTL
	released, err := service.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)

	fake.expireReservation(t, reserved.BookingReference)

	released, err = service.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	// The date is free to book again
	_, err = service.CreateReservation(ctx, validRequest(date))
	assert.NoError(t, err)
}

func TestReleaseExpired_NeverTouchesBooked(t *testing.T) {
	fake := newFakeBookingRepo()
	service := newTestService(t, fake)
	ctx := context.Background()

	booking, err := service.CreateReservation(ctx, validRequest(futureDate(t, 13)))
	require.NoError(t, err)
	_, err = service.ConfirmPayment(ctx, booking.BookingReference, "PF-10007")
	require.NoError(t, err)

	released, err := service.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
	assert.Len(t, fake.rows, 1)
}
