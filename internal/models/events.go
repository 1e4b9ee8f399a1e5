package models

import "time"

// NATS Event Types
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingFailed    = "booking.failed"
	EventSeatsSwept       = "seats.swept"
)

// BookingConfirmedEvent is emitted after a booking reaches CONFIRMED and its
// seats are booked. Consumed by the notification service.
type BookingConfirmedEvent struct {
	BookingID   int64     `json:"booking_id"`
	ShowID      int64     `json:"show_id"`
	UserID      int64     `json:"user_id"`
	TotalAmount int64     `json:"total_amount"`
	PaymentID   string    `json:"payment_id"`
	Seats       []SeatKey `json:"seats"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingFailedEvent is emitted when a pending booking transitions to FAILED.
type BookingFailedEvent struct {
	BookingID int64     `json:"booking_id"`
	ShowID    int64     `json:"show_id"`
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// SeatsSweptEvent reports a sweep pass that reclaimed expired holds.
type SeatsSweptEvent struct {
	Released  int64     `json:"released"`
	Timestamp time.Time `json:"timestamp"`
}
