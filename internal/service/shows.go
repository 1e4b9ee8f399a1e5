package service

import (
	"context"
	"fmt"

	"bookmyseat/internal/apperr"
	"bookmyseat/internal/logger"
	"bookmyseat/internal/models"
	"bookmyseat/internal/repository"
)

type ShowService struct {
	shows *repository.ShowRepository
}

func NewShowService(shows *repository.ShowRepository) *ShowService {
	return &ShowService{shows: shows}
}

// Create sets up a show and its full seat grid.
func (s *ShowService) Create(ctx context.Context, req *models.CreateShowRequest) (*models.CreateShowResponse, error) {
	if req.Rows < 1 || req.SeatsPerRow < 1 {
		return nil, fmt.Errorf("rows and seats_per_row must be positive")
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	show := &models.Show{
		MovieTitle: req.MovieTitle,
		Screen:     req.Screen,
		StartsAt:   req.StartsAt,
		Price:      req.Price,
	}

	total, err := s.shows.CreateWithSeats(ctx, show, req.Rows, req.SeatsPerRow)
	if err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	logger.WithContext(ctx).Info("Show created",
		"show_id", show.ID,
		"movie_title", show.MovieTitle,
		"total_seats", total)

	return &models.CreateShowResponse{ID: show.ID, TotalSeats: total}, nil
}

func (s *ShowService) Get(ctx context.Context, id int64) (*models.Show, error) {
	show, err := s.shows.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperr.ErrShowNotFound
	}
	return show, nil
}
