package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookmyseat/internal/apperr"
	"bookmyseat/internal/database"
	"bookmyseat/internal/models"

	"github.com/lib/pq"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// AcquireSeats atomically holds every requested seat for holder, or holds
// none of them. The targeted rows are locked with FOR UPDATE (ordered, to
// avoid deadlocks between overlapping requests), evaluated against the hold
// policy with expired holds treated as free, and flipped to HELD in one
// UPDATE. Re-acquiring a seat already held by the same user refreshes its
// held_at.
func (r *SeatRepository) AcquireSeats(ctx context.Context, showID int64, keys []models.SeatKey, holder int64, now time.Time, timeout time.Duration) ([]models.SeatInstance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT id, show_id, row_label, seat_number, status, holder, held_at, updated_at
		FROM show_seats
		WHERE show_id = $1 AND (row_label, seat_number) IN (`
	args := []interface{}{showID}
	argIndex := 2
	for i, key := range keys {
		if i > 0 {
			query += ","
		}
		query += fmt.Sprintf("($%d, $%d)", argIndex, argIndex+1)
		args = append(args, key.Row, key.Number)
		argIndex += 2
	}
	query += `)
		ORDER BY row_label, seat_number
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

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
			rows.Close()
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	if len(seats) != len(keys) {
		missing := missingKey(keys, seats)
		return nil, &apperr.SeatConflictError{Row: missing.Row, Number: missing.Number, Reason: apperr.ReasonUnknown}
	}

	seatIDs := make([]string, 0, len(seats))
	for i := range seats {
		seat := &seats[i]
		if seat.Status == models.SeatBooked {
			return nil, &apperr.SeatConflictError{Row: seat.Row, Number: seat.Number, Reason: apperr.ReasonBooked}
		}
		// A lapsed hold counts as free; a live hold by the same user is
		// eligible and gets its window refreshed below.
		if seat.CurrentlyHeld(now, timeout) && *seat.Holder != holder {
			return nil, &apperr.SeatConflictError{Row: seat.Row, Number: seat.Number, Reason: apperr.ReasonHeldByUser}
		}
		seatIDs = append(seatIDs, seat.ID)
	}

	updateQuery := `
		UPDATE show_seats
		SET status = 'HELD', holder = $1, held_at = $2, updated_at = NOW()
		WHERE id = ANY($3)`
	if _, err := tx.ExecContext(ctx, updateQuery, holder, now, pq.Array(seatIDs)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	heldAt := now
	for i := range seats {
		seats[i].Status = models.SeatHeld
		seats[i].Holder = &holder
		seats[i].HeldAt = &heldAt
	}
	return seats, nil
}

func missingKey(keys []models.SeatKey, found []models.SeatInstance) models.SeatKey {
	present := make(map[models.SeatKey]bool, len(found))
	for _, seat := range found {
		present[seat.Key()] = true
	}
	for _, key := range keys {
		if !present[key] {
			return key
		}
	}
	return keys[0]
}

// ReleaseSeats frees the given seats. Releasing an already-free seat is a
// no-op; a BOOKED seat is never touched.
func (r *SeatRepository) ReleaseSeats(ctx context.Context, seatIDs []string) error {
	query := `
		UPDATE show_seats
		SET status = 'FREE', holder = NULL, held_at = NULL, updated_at = NOW()
		WHERE id = ANY($1) AND status <> 'BOOKED'`
	_, err := r.db.ExecContext(ctx, query, pq.Array(seatIDs))
	return err
}

// CommitHeld transitions the given seats from HELD by holder to BOOKED.
// Every seat must still carry the hold; otherwise nothing changes and
// ErrHoldLost is returned.
func (r *SeatRepository) CommitHeld(ctx context.Context, seatIDs []string, holder int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := bookSeatsTx(ctx, tx, seatIDs, holder); err != nil {
		return err
	}

	return tx.Commit()
}

// bookSeatsTx is the only statement that produces BOOKED seats. It requires
// every seat to be HELD by holder at the moment of the write; the caller's
// transaction rolls back when any seat lost its hold in the meantime.
func bookSeatsTx(ctx context.Context, tx *sql.Tx, seatIDs []string, holder int64) error {
	query := `
		UPDATE show_seats
		SET status = 'BOOKED', holder = NULL, held_at = NULL, updated_at = NOW()
		WHERE id = ANY($1) AND status = 'HELD' AND holder = $2`
	result, err := tx.ExecContext(ctx, query, pq.Array(seatIDs), holder)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(seatIDs)) {
		return apperr.ErrHoldLost
	}
	return nil
}

// releaseHeldSeatsTx frees seats still held by holder. Seats meanwhile
// booked, swept or re-acquired by someone else are left alone.
func releaseHeldSeatsTx(ctx context.Context, tx *sql.Tx, seatIDs []string, holder int64) error {
	query := `
		UPDATE show_seats
		SET status = 'FREE', holder = NULL, held_at = NULL, updated_at = NOW()
		WHERE id = ANY($1) AND status = 'HELD' AND holder = $2`
	_, err := tx.ExecContext(ctx, query, pq.Array(seatIDs), holder)
	return err
}

// ReleaseExpired frees every seat whose hold started at or before cutoff.
// The status and held_at checks sit in the WHERE clause, so a seat that was
// refreshed, re-acquired or booked since it was observed no longer matches:
// the sweep can never blindly overwrite a live hold.
func (r *SeatRepository) ReleaseExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE show_seats
		SET status = 'FREE', holder = NULL, held_at = NULL, updated_at = NOW()
		WHERE status = 'HELD' AND held_at <= $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SeatRepository) GetByShowID(ctx context.Context, showID int64, page, pageSize int, row *string, status *string) ([]models.SeatInstance, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, show_id, row_label, seat_number, status, holder, held_at, updated_at
		FROM show_seats
		WHERE show_id = $1`
	args = append(args, showID)
	argIndex++

	if row != nil {
		query += fmt.Sprintf(" AND row_label = $%d", argIndex)
		args = append(args, *row)
		argIndex++
	}

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY row_label, seat_number"

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
