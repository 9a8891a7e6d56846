package services

import "errors"

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrTableHasBookings   = errors.New("table still has upcoming bookings")
)
