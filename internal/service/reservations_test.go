package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"bookmyseat/internal/apperr"
	"bookmyseat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSeatStore is an in-memory SeatStore with the same atomicity contract as
// the Postgres implementation: acquire and commit are all-or-nothing under a
// single lock.
type memSeatStore struct {
	mu     sync.Mutex
	seats  map[string]*models.SeatInstance
	nextID int
}

func newMemSeatStore() *memSeatStore {
	return &memSeatStore{seats: make(map[string]*models.SeatInstance)}
}

func (m *memSeatStore) addSeats(showID int64, rows int, seatsPerRow int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for r := 0; r < rows; r++ {
		label := string(rune('A' + r))
		for n := 1; n <= seatsPerRow; n++ {
			m.nextID++
			id := fmt.Sprintf("seat-%d", m.nextID)
			m.seats[id] = &models.SeatInstance{
				ID:     id,
				ShowID: showID,
				Row:    label,
				Number: n,
				Status: models.SeatFree,
			}
		}
	}
}

func (m *memSeatStore) find(showID int64, key models.SeatKey) *models.SeatInstance {
	for _, seat := range m.seats {
		if seat.ShowID == showID && seat.Row == key.Row && seat.Number == key.Number {
			return seat
		}
	}
	return nil
}

func (m *memSeatStore) AcquireSeats(_ context.Context, showID int64, keys []models.SeatKey, holder int64, now time.Time, timeout time.Duration) ([]models.SeatInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	picked := make([]*models.SeatInstance, 0, len(keys))
	for _, key := range keys {
		seat := m.find(showID, key)
		if seat == nil {
			return nil, &apperr.SeatConflictError{Row: key.Row, Number: key.Number, Reason: apperr.ReasonUnknown}
		}
		if seat.Status == models.SeatBooked {
			return nil, &apperr.SeatConflictError{Row: seat.Row, Number: seat.Number, Reason: apperr.ReasonBooked}
		}
		if seat.CurrentlyHeld(now, timeout) && *seat.Holder != holder {
			return nil, &apperr.SeatConflictError{Row: seat.Row, Number: seat.Number, Reason: apperr.ReasonHeldByUser}
		}
		picked = append(picked, seat)
	}

	result := make([]models.SeatInstance, 0, len(picked))
	for _, seat := range picked {
		h := holder
		t := now
		seat.Status = models.SeatHeld
		seat.Holder = &h
		seat.HeldAt = &t
		result = append(result, *seat)
	}
	return result, nil
}

func (m *memSeatStore) ReleaseSeats(_ context.Context, seatIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seatIDs {
		seat, ok := m.seats[id]
		if !ok || seat.Status == models.SeatBooked {
			continue
		}
		seat.Status = models.SeatFree
		seat.Holder = nil
		seat.HeldAt = nil
	}
	return nil
}

func (m *memSeatStore) CommitHeld(_ context.Context, seatIDs []string, holder int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seatIDs {
		seat, ok := m.seats[id]
		if !ok || seat.Status != models.SeatHeld || seat.Holder == nil || *seat.Holder != holder {
			return apperr.ErrHoldLost
		}
	}
	for _, id := range seatIDs {
		seat := m.seats[id]
		seat.Status = models.SeatBooked
		seat.Holder = nil
		seat.HeldAt = nil
	}
	return nil
}

// releaseHeldBy mirrors the repository's holder-guarded release used when a
// booking fails.
func (m *memSeatStore) releaseHeldBy(seatIDs []string, holder int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seatIDs {
		seat, ok := m.seats[id]
		if !ok || seat.Status != models.SeatHeld || seat.Holder == nil || *seat.Holder != holder {
			continue
		}
		seat.Status = models.SeatFree
		seat.Holder = nil
		seat.HeldAt = nil
	}
}

func (m *memSeatStore) ReleaseExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var released int64
	for _, seat := range m.seats {
		if seat.Status == models.SeatHeld && seat.HeldAt != nil && !seat.HeldAt.After(cutoff) {
			seat.Status = models.SeatFree
			seat.Holder = nil
			seat.HeldAt = nil
			released++
		}
	}
	return released, nil
}

func (m *memSeatStore) GetByShowID(_ context.Context, showID int64, page, pageSize int, row *string, status *string) ([]models.SeatInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.SeatInstance
	for _, seat := range m.seats {
		if seat.ShowID != showID {
			continue
		}
		if row != nil && seat.Row != *row {
			continue
		}
		if status != nil && seat.Status != *status {
			continue
		}
		result = append(result, *seat)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Row != result[j].Row {
			return result[i].Row < result[j].Row
		}
		return result[i].Number < result[j].Number
	})
	offset := (page - 1) * pageSize
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (m *memSeatStore) statusOf(showID int64, key models.SeatKey) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat := m.find(showID, key)
	if seat == nil {
		return ""
	}
	return seat.Status
}

func (m *memSeatStore) heldAtOf(showID int64, key models.SeatKey) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat := m.find(showID, key)
	if seat == nil {
		return nil
	}
	return seat.HeldAt
}

func newTestManager(timeout time.Duration) (*ReservationManager, *memSeatStore) {
	store := newMemSeatStore()
	store.addSeats(1, 3, 10)
	return NewReservationManager(store, timeout), store
}

func TestAcquireHoldsAllSeats(t *testing.T) {
	manager, store := newTestManager(5 * time.Minute)

	keys := []models.SeatKey{{Row: "A", Number: 1}, {Row: "A", Number: 2}, {Row: "B", Number: 5}}
	seats, err := manager.Acquire(context.Background(), 1, keys, 42)
	require.NoError(t, err)
	assert.Len(t, seats, 3)

	for _, key := range keys {
		assert.Equal(t, models.SeatHeld, store.statusOf(1, key))
	}
}

func TestAcquireAllOrNothing(t *testing.T) {
	manager, store := newTestManager(5 * time.Minute)

	_, err := manager.Acquire(context.Background(), 1, []models.SeatKey{{Row: "A", Number: 1}}, 7)
	require.NoError(t, err)

	// A1 is taken, so the whole second request must fail and leave A2 free
	_, err = manager.Acquire(context.Background(), 1, []models.SeatKey{{Row: "A", Number: 2}, {Row: "A", Number: 1}}, 8)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	var conflict *apperr.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "A", conflict.Row)
	assert.Equal(t, 1, conflict.Number)
	assert.Equal(t, apperr.ReasonHeldByUser, conflict.Reason)

	assert.Equal(t, models.SeatFree, store.statusOf(1, models.SeatKey{Row: "A", Number: 2}))
}

func TestAcquireUnknownSeat(t *testing.T) {
	manager, _ := newTestManager(5 * time.Minute)

	_, err := manager.Acquire(context.Background(), 1, []models.SeatKey{{Row: "Z", Number: 99}}, 7)
	require.Error(t, err)

	var conflict *apperr.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, apperr.ReasonUnknown, conflict.Reason)
}

func TestAcquireEmptyRequest(t *testing.T) {
	manager, _ := newTestManager(5 * time.Minute)

	_, err := manager.Acquire(context.Background(), 1, nil, 7)
	assert.Error(t, err)
}

func TestAcquireDedupesKeys(t *testing.T) {
	manager, _ := newTestManager(5 * time.Minute)

	keys := []models.SeatKey{{Row: "A", Number: 1}, {Row: "A", Number: 1}, {Row: "A", Number: 2}}
	seats, err := manager.Acquire(context.Background(), 1, keys, 7)
	require.NoError(t, err)
	assert.Len(t, seats, 2)
}

func TestAcquireConcurrentDisjoint(t *testing.T) {
	manager, store := newTestManager(5 * time.Minute)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	sets := [][]models.SeatKey{
		{{Row: "A", Number: 1}, {Row: "A", Number: 2}},
		{{Row: "B", Number: 1}, {Row: "B", Number: 2}},
	}

	for i := range sets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = manager.Acquire(context.Background(), 1, sets[i], int64(100+i))
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, models.SeatHeld, store.statusOf(1, models.SeatKey{Row: "A", Number: 1}))
	assert.Equal(t, models.SeatHeld, store.statusOf(1, models.SeatKey{Row: "B", Number: 2}))
}

func TestAcquireOverlapSingleWinner(t *testing.T) {
	manager, _ := newTestManager(5 * time.Minute)

	const contenders = 16
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	key := []models.SeatKey{{Row: "C", Number: 7}}

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = manager.Acquire(context.Background(), 1, key, int64(200+i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperr.IsConflict(err), "losers must see a seat conflict, got %v", err)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestAcquireIdempotentForSameHolder(t *testing.T) {
	manager, store := newTestManager(5 * time.Minute)
	key := models.SeatKey{Row: "A", Number: 3}

	_, err := manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 42)
	require.NoError(t, err)
	first := store.heldAtOf(1, key)
	require.NotNil(t, first)

	time.Sleep(5 * time.Millisecond)

	// Same user again refreshes the hold instead of conflicting
	_, err = manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 42)
	require.NoError(t, err)
	second := store.heldAtOf(1, key)
	require.NotNil(t, second)
	assert.True(t, second.After(*first), "held_at must be refreshed")
}

func TestExpiredHoldCanBeReacquired(t *testing.T) {
	manager, _ := newTestManager(30 * time.Millisecond)
	key := []models.SeatKey{{Row: "B", Number: 4}}

	_, err := manager.Acquire(context.Background(), 1, key, 1)
	require.NoError(t, err)

	// Inside the window the seat is defended
	_, err = manager.Acquire(context.Background(), 1, key, 2)
	require.Error(t, err)

	time.Sleep(40 * time.Millisecond)

	// After the window another user takes it over without any sweep
	_, err = manager.Acquire(context.Background(), 1, key, 2)
	assert.NoError(t, err)
}

func TestCommitBooksHeldSeats(t *testing.T) {
	manager, store := newTestManager(5 * time.Minute)
	key := models.SeatKey{Row: "A", Number: 5}

	seats, err := manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 9)
	require.NoError(t, err)

	require.NoError(t, manager.Commit(context.Background(), seats, 9))
	assert.Equal(t, models.SeatBooked, store.statusOf(1, key))

	// Booked seats reject any further acquire
	_, err = manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 10)
	require.Error(t, err)
	var conflict *apperr.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, apperr.ReasonBooked, conflict.Reason)
}

func TestCommitFailsWhenHoldWasReacquired(t *testing.T) {
	manager, _ := newTestManager(30 * time.Millisecond)
	key := []models.SeatKey{{Row: "B", Number: 9}}

	seats, err := manager.Acquire(context.Background(), 1, key, 1)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = manager.Acquire(context.Background(), 1, key, 2)
	require.NoError(t, err)

	err = manager.Commit(context.Background(), seats, 1)
	assert.ErrorIs(t, err, apperr.ErrHoldLost)
}

func TestSweepReleasesOnlyExpiredHolds(t *testing.T) {
	store := newMemSeatStore()
	store.addSeats(1, 2, 5)
	manager := NewReservationManager(store, 30*time.Millisecond)

	stale := models.SeatKey{Row: "A", Number: 1}
	fresh := models.SeatKey{Row: "A", Number: 2}

	_, err := manager.Acquire(context.Background(), 1, []models.SeatKey{stale}, 1)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = manager.Acquire(context.Background(), 1, []models.SeatKey{fresh}, 2)
	require.NoError(t, err)

	released, err := manager.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	assert.Equal(t, models.SeatFree, store.statusOf(1, stale))
	assert.Equal(t, models.SeatHeld, store.statusOf(1, fresh))

	// Second pass finds nothing
	released, err = manager.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)
}

func TestSweepNeverTouchesBookedSeats(t *testing.T) {
	manager, store := newTestManager(30 * time.Millisecond)
	key := models.SeatKey{Row: "C", Number: 1}

	seats, err := manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 1)
	require.NoError(t, err)
	require.NoError(t, manager.Commit(context.Background(), seats, 1))

	time.Sleep(40 * time.Millisecond)

	released, err := manager.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)
	assert.Equal(t, models.SeatBooked, store.statusOf(1, key))
}

func TestListSeatsReportsExpiredHoldsAsFree(t *testing.T) {
	manager, _ := newTestManager(30 * time.Millisecond)
	key := models.SeatKey{Row: "A", Number: 1}

	_, err := manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 1)
	require.NoError(t, err)

	seats, err := manager.ListSeats(context.Background(), 1, 1, 100, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, seats)
	assert.Equal(t, models.SeatHeld, seats[0].Status)

	time.Sleep(40 * time.Millisecond)

	// The row still says HELD, callers see FREE
	seats, err = manager.ListSeats(context.Background(), 1, 1, 100, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SeatFree, seats[0].Status)
}

func TestReleaseIsSafeOnFreeSeats(t *testing.T) {
	manager, store := newTestManager(5 * time.Minute)
	key := models.SeatKey{Row: "A", Number: 1}

	seats, err := manager.Acquire(context.Background(), 1, []models.SeatKey{key}, 1)
	require.NoError(t, err)

	require.NoError(t, manager.Release(context.Background(), seats))
	assert.Equal(t, models.SeatFree, store.statusOf(1, key))

	// Releasing again is a no-op
	require.NoError(t, manager.Release(context.Background(), seats))
	assert.Equal(t, models.SeatFree, store.statusOf(1, key))
}
