package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createShowsTable,
		createShowSeatsTable,
		createBookingsTable,
		createBookingSeatsTable,
		createHeldSeatsIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);`

const createShowsTable = `
CREATE TABLE IF NOT EXISTS shows (
    id SERIAL PRIMARY KEY,
    movie_title VARCHAR(500) NOT NULL,
    screen VARCHAR(100) NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    price BIGINT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (price >= 0)
);`

const createShowSeatsTable = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";
CREATE TABLE IF NOT EXISTS show_seats (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
    row_label VARCHAR(2) NOT NULL,
    seat_number INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'FREE',
    holder INTEGER,
    held_at TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(show_id, row_label, seat_number),
    CHECK (status IN ('FREE', 'HELD', 'BOOKED')),
    CHECK ((holder IS NULL) = (held_at IS NULL))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    total_amount BIGINT NOT NULL,
    is_paid BOOLEAN NOT NULL DEFAULT FALSE,
    order_id VARCHAR(255),
    payment_id VARCHAR(255),
    signature VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('PENDING', 'CONFIRMED', 'FAILED'))
);`

const createBookingSeatsTable = `
CREATE TABLE IF NOT EXISTS booking_seats (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    seat_id UUID NOT NULL REFERENCES show_seats(id) ON DELETE CASCADE,

    UNIQUE(booking_id, seat_id)
);`

const createHeldSeatsIndex = `
CREATE INDEX IF NOT EXISTS show_seats_held_idx
ON show_seats (held_at) WHERE status = 'HELD';`
