package repository

import (
	"bookmyseat/internal/database"
)

type Repositories struct {
	Shows    *ShowRepository
	Seats    *SeatRepository
	Bookings *BookingRepository
	Users    *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Shows:    NewShowRepository(db),
		Seats:    NewSeatRepository(db),
		Bookings: NewBookingRepository(db),
		Users:    NewUserRepository(db),
	}
}
