package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookmyseat/internal/apperr"
	"bookmyseat/internal/logger"
	"bookmyseat/internal/models"
)

// BookingStore persists bookings. ConfirmPaid and FailPending must apply the
// booking transition and the seat transitions in one atomic unit, guarded on
// the booking still being PENDING.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking, seatIDs []string) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
	GetSeats(ctx context.Context, bookingID int64) ([]models.SeatInstance, error)
	SetOrder(ctx context.Context, bookingID int64, orderID string) error
	ConfirmPaid(ctx context.Context, bookingID, holder int64, paymentID, signature string) error
	FailPending(ctx context.Context, bookingID, holder int64) error
}

type ShowStore interface {
	GetByID(ctx context.Context, id int64) (*models.Show, error)
}

// PaymentGateway is the external payment provider: order creation is an
// untrusted network call, signature verification is local.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// EventPublisher delivers booking outcome events to the notification
// service. Best-effort: publish failures never roll anything back.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

type BookingService struct {
	bookings     BookingStore
	shows        ShowStore
	reservations *ReservationManager
	payments     PaymentGateway
	publisher    EventPublisher
	currency     string
}

func NewBookingService(bookings BookingStore, shows ShowStore, reservations *ReservationManager, payments PaymentGateway, publisher EventPublisher, currency string) *BookingService {
	return &BookingService{
		bookings:     bookings,
		shows:        shows,
		reservations: reservations,
		payments:     payments,
		publisher:    publisher,
		currency:     currency,
	}
}

// Create holds the requested seats, opens a PENDING booking for them and
// registers a payment order for the total. If the order cannot be created
// the seats are released again before the error surfaces: a failed request
// leaves no orphaned holds behind.
func (s *BookingService) Create(ctx context.Context, req *models.CreateBookingRequest, userID int64) (*models.CreateBookingResponse, error) {
	show, err := s.shows.GetByID(ctx, req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperr.ErrShowNotFound
	}

	seats, err := s.reservations.Acquire(ctx, req.ShowID, req.Seats, userID)
	if err != nil {
		return nil, err
	}

	// Seat count times per-seat price, both in minor units. Computed once
	// here and never recomputed.
	totalAmount := int64(len(seats)) * show.Price

	booking := &models.Booking{
		ShowID:      req.ShowID,
		UserID:      userID,
		Status:      models.BookingPending,
		TotalAmount: totalAmount,
	}

	if err := s.bookings.Create(ctx, booking, seatIDs(seats)); err != nil {
		if relErr := s.reservations.Release(ctx, seats); relErr != nil {
			logger.WithContext(ctx).Error("Failed to release seats after booking create error",
				"error", relErr,
				"show_id", req.ShowID)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	receipt := fmt.Sprintf("booking_%d", booking.ID)
	order, err := s.payments.CreateOrder(ctx, totalAmount, s.currency, receipt)
	if err != nil {
		s.fail(ctx, booking, "payment order creation failed")
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamUnavailable, err)
	}

	if err := s.bookings.SetOrder(ctx, booking.ID, order.ID); err != nil {
		s.fail(ctx, booking, "storing payment order failed")
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"show_id", req.ShowID,
		"seats", len(seats),
		"total_amount", totalAmount,
		"order_id", order.ID)

	return &models.CreateBookingResponse{
		BookingID:   booking.ID,
		TotalAmount: totalAmount,
		Currency:    s.currency,
		OrderID:     order.ID,
		Receipt:     receipt,
	}, nil
}

// ConfirmPayment finalizes a booking from the client's payment proof. The
// proof is verified first; the booking and its seats then transition in one
// atomic step, so a duplicate callback or a racing cancel sees
// ErrAlreadyFinalized and changes nothing.
func (s *BookingService) ConfirmPayment(ctx context.Context, req *models.ConfirmBookingRequest, userID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, apperr.ErrNotOwner
	}
	if booking.Status != models.BookingPending {
		return nil, apperr.ErrAlreadyFinalized
	}

	orderMatches := booking.OrderID != nil && *booking.OrderID == req.OrderID
	if !orderMatches || !s.payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.fail(ctx, booking, "payment verification failed")
		return nil, apperr.ErrVerificationFailed
	}

	if err := s.bookings.ConfirmPaid(ctx, booking.ID, userID, req.PaymentID, req.Signature); err != nil {
		if errors.Is(err, apperr.ErrAlreadyFinalized) {
			return nil, err
		}
		if errors.Is(err, apperr.ErrHoldLost) {
			// The hold lapsed during checkout and the seats are gone.
			s.fail(ctx, booking, "seat hold expired before confirmation")
			return nil, err
		}
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	booking.Status = models.BookingConfirmed
	booking.IsPaid = true
	booking.PaymentID = &req.PaymentID
	booking.Signature = &req.Signature

	seats, err := s.bookings.GetSeats(ctx, booking.ID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to load seats for confirmation event",
			"error", err,
			"booking_id", booking.ID)
	}
	seatKeys := make([]models.SeatKey, len(seats))
	for i := range seats {
		seatKeys[i] = seats[i].Key()
	}

	event := models.BookingConfirmedEvent{
		BookingID:   booking.ID,
		ShowID:      booking.ShowID,
		UserID:      booking.UserID,
		TotalAmount: booking.TotalAmount,
		PaymentID:   req.PaymentID,
		Seats:       seatKeys,
		Timestamp:   time.Now(),
	}
	if err := s.publisher.Publish(models.EventBookingConfirmed, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking confirmed event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingConfirmed)
	}

	logger.WithContext(ctx).Info("Booking confirmed",
		"booking_id", booking.ID,
		"payment_id", req.PaymentID)

	return booking, nil
}

// Cancel fails a booking on the user's request, releasing its seats. Only
// legal while PENDING; the transition is one-way.
func (s *BookingService) Cancel(ctx context.Context, req *models.CancelBookingRequest, userID int64) error {
	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return apperr.ErrBookingNotFound
	}
	if booking.UserID != userID {
		return apperr.ErrNotOwner
	}

	if err := s.bookings.FailPending(ctx, booking.ID, booking.UserID); err != nil {
		return err
	}

	s.publishFailed(ctx, booking, "cancelled by user")

	logger.WithContext(ctx).Info("Booking cancelled", "booking_id", booking.ID)
	return nil
}

func (s *BookingService) List(ctx context.Context, userID int64) ([]models.ListBookingsResponseItem, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	result := make([]models.ListBookingsResponseItem, len(bookings))
	for i, booking := range bookings {
		result[i] = models.ListBookingsResponseItem{
			ID:          booking.ID,
			ShowID:      booking.ShowID,
			Status:      booking.Status,
			TotalAmount: booking.TotalAmount,
			IsPaid:      booking.IsPaid,
		}
	}

	return result, nil
}

// fail moves a pending booking to FAILED and frees its held seats. Losing
// the PENDING race here is fine: someone else already finalized it.
func (s *BookingService) fail(ctx context.Context, booking *models.Booking, reason string) {
	if err := s.bookings.FailPending(ctx, booking.ID, booking.UserID); err != nil {
		if !errors.Is(err, apperr.ErrAlreadyFinalized) {
			logger.WithContext(ctx).Error("Failed to fail booking",
				"error", err,
				"booking_id", booking.ID)
		}
		return
	}

	booking.Status = models.BookingFailed
	s.publishFailed(ctx, booking, reason)
}

func (s *BookingService) publishFailed(ctx context.Context, booking *models.Booking, reason string) {
	event := models.BookingFailedEvent{
		BookingID: booking.ID,
		ShowID:    booking.ShowID,
		UserID:    booking.UserID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventBookingFailed, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking failed event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingFailed)
	}
}
