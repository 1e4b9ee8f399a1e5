package models

import (
	"time"
)

// Seat statuses
const (
	SeatFree   = "FREE"
	SeatHeld   = "HELD"
	SeatBooked = "BOOKED"
)

// Booking statuses
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingFailed    = "FAILED"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Show represents a scheduled screening. Immutable after creation; Price is
// the per-seat price in minor currency units (paise).
type Show struct {
	ID         int64     `json:"id" db:"id"`
	MovieTitle string    `json:"movie_title" db:"movie_title"`
	Screen     string    `json:"screen" db:"screen"`
	StartsAt   time.Time `json:"starts_at" db:"starts_at"`
	Price      int64     `json:"price" db:"price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SeatKey identifies a seat within a show.
type SeatKey struct {
	Row    string `json:"row" binding:"required"`
	Number int    `json:"number" binding:"required"`
}

// SeatInstance is the durable per-show seat record. Holder and HeldAt are
// both set or both null; a BOOKED seat has them cleared.
type SeatInstance struct {
	ID        string     `json:"id" db:"id"`
	ShowID    int64      `json:"show_id" db:"show_id"`
	Row       string     `json:"row" db:"row_label"`
	Number    int        `json:"number" db:"seat_number"`
	Status    string     `json:"status" db:"status"`
	Holder    *int64     `json:"holder,omitempty" db:"holder"`
	HeldAt    *time.Time `json:"held_at,omitempty" db:"held_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Key returns the seat's position within its show.
func (s *SeatInstance) Key() SeatKey {
	return SeatKey{Row: s.Row, Number: s.Number}
}

// CurrentlyHeld reports whether the seat has a live hold. "Held" is never a
// stored flag: every reader recomputes it from held_at plus the configured
// timeout so a lapsed hold reads as free everywhere at once.
func (s *SeatInstance) CurrentlyHeld(now time.Time, timeout time.Duration) bool {
	if s.Status != SeatHeld || s.HeldAt == nil {
		return false
	}
	return now.Before(s.HeldAt.Add(timeout))
}

// HoldExpired reports whether the seat carries a hold whose window has lapsed.
func (s *SeatInstance) HoldExpired(now time.Time, timeout time.Duration) bool {
	return s.Status == SeatHeld && s.HeldAt != nil && !now.Before(s.HeldAt.Add(timeout))
}

// EffectiveStatus is the status as observed by callers: a seat whose hold has
// expired is reported FREE even before the sweeper reclaims it.
func (s *SeatInstance) EffectiveStatus(now time.Time, timeout time.Duration) string {
	if s.HoldExpired(now, timeout) {
		return SeatFree
	}
	return s.Status
}

// Booking groups the seats of one show held by one user. TotalAmount is
// computed once at creation (seat count times show price, in minor units)
// and never recomputed.
type Booking struct {
	ID          int64          `json:"id" db:"id"`
	ShowID      int64          `json:"show_id" db:"show_id"`
	UserID      int64          `json:"user_id" db:"user_id"`
	Status      string         `json:"status" db:"status"`
	TotalAmount int64          `json:"total_amount" db:"total_amount"`
	IsPaid      bool           `json:"is_paid" db:"is_paid"`
	OrderID     *string        `json:"order_id,omitempty" db:"order_id"`
	PaymentID   *string        `json:"payment_id,omitempty" db:"payment_id"`
	Signature   *string        `json:"-" db:"signature"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	Seats       []SeatInstance `json:"seats,omitempty"` // Not from DB, filled separately
}

// PaymentOrder is the provider-side order created for a booking. The IDs are
// opaque strings owned by the payment provider.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}
