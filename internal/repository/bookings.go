package repository

import (
	"context"
	"database/sql"

	"bookmyseat/internal/apperr"
	"bookmyseat/internal/database"
	"bookmyseat/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts the booking and its seat associations in one transaction.
// The seat set is fixed here and never changes afterwards.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking, seatIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bookings (show_id, user_id, status, total_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		booking.ShowID,
		booking.UserID,
		booking.Status,
		booking.TotalAmount,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return err
	}

	for _, seatID := range seatIDs {
		insertQuery := `INSERT INTO booking_seats (booking_id, seat_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, insertQuery, booking.ID, seatID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, show_id, user_id, status, total_amount, is_paid,
		       order_id, payment_id, signature, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.ShowID,
		&booking.UserID,
		&booking.Status,
		&booking.TotalAmount,
		&booking.IsPaid,
		&booking.OrderID,
		&booking.PaymentID,
		&booking.Signature,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT id, show_id, user_id, status, total_amount, is_paid,
		       order_id, payment_id, signature, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.ShowID,
			&booking.UserID,
			&booking.Status,
			&booking.TotalAmount,
			&booking.IsPaid,
			&booking.OrderID,
			&booking.PaymentID,
			&booking.Signature,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// GetSeats returns the seat instances associated with a booking.
func (r *BookingRepository) GetSeats(ctx context.Context, bookingID int64) ([]models.SeatInstance, error) {
	query := `
		SELECT s.id, s.show_id, s.row_label, s.seat_number, s.status, s.holder, s.held_at, s.updated_at
		FROM show_seats s
		JOIN booking_seats bs ON bs.seat_id = s.id
		WHERE bs.booking_id = $1
		ORDER BY s.row_label, s.seat_number`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.SeatInstance
	for rows.Next() {
		var seat models.SeatInstance
		err := rows.Scan(
			&seat.ID,
			&seat.ShowID,
			&seat.Row,
			&seat.Number,
			&seat.Status,
			&seat.Holder,
			&seat.HeldAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

// SetOrder stores the external payment order id created for the booking.
func (r *BookingRepository) SetOrder(ctx context.Context, bookingID int64, orderID string) error {
	query := `UPDATE bookings SET order_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, orderID, bookingID)
	return err
}

// ConfirmPaid finalizes a booking in one transaction: the PENDING to
// CONFIRMED transition and the HELD to BOOKED transition of its seats either
// both happen or neither does. The status guard on the bookings row
// serializes confirm against a concurrent cancel or duplicate callback; the
// losing writer sees zero affected rows and gets ErrAlreadyFinalized.
func (r *BookingRepository) ConfirmPaid(ctx context.Context, bookingID, holder int64, paymentID, signature string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings
		SET status = 'CONFIRMED', is_paid = TRUE, payment_id = $1, signature = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'PENDING'`
	result, err := tx.ExecContext(ctx, query, paymentID, signature, bookingID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.ErrAlreadyFinalized
	}

	seatIDs, err := seatIDsForBookingTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}

	if err := bookSeatsTx(ctx, tx, seatIDs, holder); err != nil {
		return err
	}

	return tx.Commit()
}

// FailPending transitions a PENDING booking to FAILED and frees the seats it
// still holds. FAILED is terminal: the booking keeps the historical seat
// associations but never owns the seats again.
func (r *BookingRepository) FailPending(ctx context.Context, bookingID, holder int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings
		SET status = 'FAILED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`
	result, err := tx.ExecContext(ctx, query, bookingID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.ErrAlreadyFinalized
	}

	seatIDs, err := seatIDsForBookingTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}

	if err := releaseHeldSeatsTx(ctx, tx, seatIDs, holder); err != nil {
		return err
	}

	return tx.Commit()
}

func seatIDsForBookingTx(ctx context.Context, tx *sql.Tx, bookingID int64) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = $1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seatIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seatIDs = append(seatIDs, id)
	}
	return seatIDs, rows.Err()
}
