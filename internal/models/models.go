package models

import "time"

// CreateShowRequest sets up a show and its seat grid in one call. Every
// physical seat on the screen gets a SeatInstance row.
type CreateShowRequest struct {
	MovieTitle  string    `json:"movie_title" binding:"required"`
	Screen      string    `json:"screen" binding:"required"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	Price       int64     `json:"price" binding:"required"`
	Rows        int       `json:"rows" binding:"required"`
	SeatsPerRow int       `json:"seats_per_row" binding:"required"`
}

type CreateShowResponse struct {
	ID         int64 `json:"id"`
	TotalSeats int   `json:"total_seats"`
}

// SeatView is a seat as presented to callers: the status is the effective
// one, with expired holds already reported FREE.
type SeatView struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

type ListSeatsResponse []SeatView

type CreateBookingRequest struct {
	ShowID int64     `json:"show_id" binding:"required"`
	Seats  []SeatKey `json:"seats" binding:"required"`
}

// CreateBookingResponse carries what the client needs for the payment step.
type CreateBookingResponse struct {
	BookingID   int64  `json:"booking_id"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	Receipt     string `json:"receipt"`
}

// ConfirmBookingRequest is the payment proof delivered by the client after
// the provider-side checkout.
type ConfirmBookingRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type CancelBookingRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type ListBookingsResponseItem struct {
	ID          int64  `json:"id"`
	ShowID      int64  `json:"show_id"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	IsPaid      bool   `json:"is_paid"`
}
