package service

import (
	"time"

	"bookmyseat/internal/external"
	"bookmyseat/internal/messaging"
	"bookmyseat/internal/repository"
)

type Services struct {
	Shows        *ShowService
	Reservations *ReservationManager
	Bookings     *BookingService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, paymentClient *external.PaymentClient, currency string, holdTimeout time.Duration) *Services {
	showService := NewShowService(repos.Shows)
	reservations := NewReservationManager(repos.Seats, holdTimeout)
	bookingService := NewBookingService(repos.Bookings, repos.Shows, reservations, paymentClient, natsClient, currency)

	return &Services{
		Shows:        showService,
		Reservations: reservations,
		Bookings:     bookingService,
	}
}
