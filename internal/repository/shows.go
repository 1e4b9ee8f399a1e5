package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bookmyseat/internal/database"
	"bookmyseat/internal/models"
)

type ShowRepository struct {
	db *database.DB
}

func NewShowRepository(db *database.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

// CreateWithSeats inserts the show and one seat instance per physical seat
// on its screen in a single transaction. Seat instances are created exactly
// once, at show-setup time, and only their status/holder/held_at ever change.
func (r *ShowRepository) CreateWithSeats(ctx context.Context, show *models.Show, seatRows, seatsPerRow int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO shows (movie_title, screen, starts_at, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		show.MovieTitle,
		show.Screen,
		show.StartsAt,
		show.Price,
	).Scan(&show.ID, &show.CreatedAt)
	if err != nil {
		return 0, err
	}

	total := 0
	for row := 0; row < seatRows; row++ {
		label := rowLabel(row)
		for seat := 1; seat <= seatsPerRow; seat++ {
			insertQuery := `
				INSERT INTO show_seats (show_id, row_label, seat_number, status)
				VALUES ($1, $2, $3, 'FREE')`
			if _, err := tx.ExecContext(ctx, insertQuery, show.ID, label, seat); err != nil {
				return 0, err
			}
			total++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// rowLabel maps a zero-based row index to A..Z, then AA..AZ and so on.
func rowLabel(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return fmt.Sprintf("%c%c", 'A'+index/26-1, 'A'+index%26)
}

func (r *ShowRepository) GetByID(ctx context.Context, id int64) (*models.Show, error) {
	show := &models.Show{}
	query := `
		SELECT id, movie_title, screen, starts_at, price, created_at
		FROM shows
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&show.ID,
		&show.MovieTitle,
		&show.Screen,
		&show.StartsAt,
		&show.Price,
		&show.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return show, err
}
