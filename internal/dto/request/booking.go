package request

type CreateBookingRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required,min=7,max=20"`
	BookingDate string  `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime string  `json:"booking_time" validate:"required"`
	PackageType string  `json:"package_type" validate:"required,oneof=boardroom consultation boardroom_consultation"`
	Duration    string  `json:"duration" validate:"required,oneof=half_day full_day hourly"`
	Hours       int     `json:"hours" validate:"omitempty,min=1,max=10"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
