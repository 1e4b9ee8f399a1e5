package service

import (
	"context"
	"fmt"
	"time"

	"bookmyseat/internal/logger"
	"bookmyseat/internal/models"
)

// SeatStore is the durable seat table the reservation manager runs against.
// Implementations must make AcquireSeats atomic across concurrent callers:
// two overlapping requests can never both succeed for the same seat.
type SeatStore interface {
	AcquireSeats(ctx context.Context, showID int64, keys []models.SeatKey, holder int64, now time.Time, timeout time.Duration) ([]models.SeatInstance, error)
	ReleaseSeats(ctx context.Context, seatIDs []string) error
	CommitHeld(ctx context.Context, seatIDs []string, holder int64) error
	ReleaseExpired(ctx context.Context, cutoff time.Time) (int64, error)
	GetByShowID(ctx context.Context, showID int64, page, pageSize int, row *string, status *string) ([]models.SeatInstance, error)
}

// ReservationManager hands out time-bounded seat holds. The hold timeout is
// an explicit construction parameter; every expiry decision in the package
// derives from it and the stored held_at, nothing else.
type ReservationManager struct {
	seats       SeatStore
	holdTimeout time.Duration
}

func NewReservationManager(seats SeatStore, holdTimeout time.Duration) *ReservationManager {
	return &ReservationManager{
		seats:       seats,
		holdTimeout: holdTimeout,
	}
}

// HoldTimeout returns the configured hold window.
func (m *ReservationManager) HoldTimeout() time.Duration {
	return m.holdTimeout
}

// Acquire holds all requested seats for requester, all-or-nothing. Seats
// already held by the same requester are refreshed; seats booked or live-held
// by someone else fail the whole request with a seat conflict.
func (m *ReservationManager) Acquire(ctx context.Context, showID int64, keys []models.SeatKey, requester int64) ([]models.SeatInstance, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}

	keys = dedupeKeys(keys)

	seats, err := m.seats.AcquireSeats(ctx, showID, keys, requester, time.Now(), m.holdTimeout)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Debug("Seats held",
		"show_id", showID,
		"user_id", requester,
		"count", len(seats))

	return seats, nil
}

// Release frees the given seats. Safe on already-free seats; booked seats
// are never touched.
func (m *ReservationManager) Release(ctx context.Context, seats []models.SeatInstance) error {
	if len(seats) == 0 {
		return nil
	}
	return m.seats.ReleaseSeats(ctx, seatIDs(seats))
}

// Commit books seats currently held by holder. This is the only path that
// produces BOOKED seats, and it is not reversible here.
func (m *ReservationManager) Commit(ctx context.Context, seats []models.SeatInstance, holder int64) error {
	if len(seats) == 0 {
		return nil
	}
	return m.seats.CommitHeld(ctx, seatIDs(seats), holder)
}

// SweepExpired releases every seat whose hold window has lapsed. Run by the
// background sweeper; bookings are deliberately left alone.
func (m *ReservationManager) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-m.holdTimeout)
	return m.seats.ReleaseExpired(ctx, cutoff)
}

// ListSeats returns the seat map with effective statuses: a seat whose hold
// has lapsed is reported FREE even if the sweeper has not reclaimed it yet.
func (m *ReservationManager) ListSeats(ctx context.Context, showID int64, page, pageSize int, row *string, status *string) (models.ListSeatsResponse, error) {
	seats, err := m.seats.GetByShowID(ctx, showID, page, pageSize, row, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}

	now := time.Now()
	result := make(models.ListSeatsResponse, len(seats))
	for i := range seats {
		seat := &seats[i]
		result[i] = models.SeatView{
			ID:     seat.ID,
			Row:    seat.Row,
			Number: seat.Number,
			Status: seat.EffectiveStatus(now, m.holdTimeout),
		}
	}

	return result, nil
}

func seatIDs(seats []models.SeatInstance) []string {
	ids := make([]string, len(seats))
	for i := range seats {
		ids[i] = seats[i].ID
	}
	return ids
}

func dedupeKeys(keys []models.SeatKey) []models.SeatKey {
	seen := make(map[models.SeatKey]bool, len(keys))
	result := keys[:0:0]
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			result = append(result, key)
		}
	}
	return result
}
