package jobs

import (
	"context"
	"log/slog"
	"time"

	"bookmyseat/internal/models"
	"bookmyseat/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var seatsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "seats_swept_total",
		Help: "Total number of expired seat holds released by the sweeper.",
	},
)

// EventPublisher mirrors the messaging client's publish surface.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// HoldSweeper reclaims seats whose hold lapsed without a confirmation, so an
// abandoned checkout frees its seats without any further request. It never
// reads or writes bookings: a booking whose seats were swept stays PENDING
// until its own confirm attempt fails.
type HoldSweeper struct {
	reservations *service.ReservationManager
	publisher    EventPublisher
	interval     time.Duration
	ticker       *time.Ticker
	done         chan bool
}

func NewHoldSweeper(reservations *service.ReservationManager, publisher EventPublisher, interval time.Duration) *HoldSweeper {
	return &HoldSweeper{
		reservations: reservations,
		publisher:    publisher,
		interval:     interval,
		done:         make(chan bool),
	}
}

// Start begins the background sweep loop. The first pass runs immediately.
func (s *HoldSweeper) Start(ctx context.Context) {
	slog.Info("Starting hold sweeper",
		"interval", s.interval.String(),
		"hold_timeout", s.reservations.HoldTimeout().String())

	s.ticker = time.NewTicker(s.interval)

	go s.sweep(ctx)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				go s.sweep(ctx)
			case <-s.done:
				slog.Info("Hold sweeper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (s *HoldSweeper) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
}

func (s *HoldSweeper) sweep(ctx context.Context) {
	released, err := s.reservations.SweepExpired(ctx)
	if err != nil {
		slog.Error("Sweep failed", "error", err)
		return
	}

	if released == 0 {
		slog.Debug("No expired holds found")
		return
	}

	slog.Info("Released expired holds", "count", released)
	seatsSweptTotal.Add(float64(released))

	event := models.SeatsSweptEvent{
		Released:  released,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventSeatsSwept, event); err != nil {
		slog.Error("Failed to publish sweep event",
			"error", err,
			"event_type", models.EventSeatsSwept)
	}
}
