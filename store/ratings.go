// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"context"
	"fmt"
	"laundrolink-server/models"
	"strings"
)

// CreateRating validates and inserts r. An empty customer name is stored as
// "Anonymous".
func (s *Store) CreateRating(ctx context.Context, r *models.Rating) error {
	if r.Score < models.MinScore || r.Score > models.MaxScore {
		return models.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", models.MinScore, models.MaxScore))
	}
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	if r.CustomerName == "" {
		r.CustomerName = models.AnonymousCustomer
	}

	if err := s.gw.Insert(ctx, r); err != nil {
		return fmt.Errorf("create rating for provider %d: %w", r.ProviderID, err)
	}
	return nil
}

// ListRatingsForProvider returns the newest ratings first. A limit of zero or
// less returns all of them.
func (s *Store) ListRatingsForProvider(ctx context.Context, providerID uint, limit int) ([]models.Rating, error) {
	query := "SELECT * FROM ratings WHERE provider_id = ? ORDER BY created_at DESC, id DESC"
	args := []any{providerID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var ratings []models.Rating
	if err := s.gw.QueryAll(ctx, &ratings, query, args...); err != nil {
		return nil, fmt.Errorf("list ratings for provider %d: %w", providerID, err)
	}
	return ratings, nil
}

// AverageAndCount returns (0, 0) for a provider without ratings.
func (s *Store) AverageAndCount(ctx context.Context, providerID uint) (float64, int64, error) {
	var agg struct {
		AvgRating  float64
		NumReviews int64
	}
	err := s.gw.QueryOne(ctx, &agg,
		"SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS num_reviews FROM ratings WHERE provider_id = ?",
		providerID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("rating aggregate for provider %d: %w", providerID, err)
	}
	return agg.AvgRating, agg.NumReviews, nil
}
