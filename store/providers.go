// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"context"
	"errors"
	"fmt"
	"laundrolink-server/db"
	"laundrolink-server/models"
	"math"
	"sort"
	"strings"
)

// CreateProvider inserts p and fills its ID. A phone number that is already
// registered yields models.ErrDuplicatePhone.
func (s *Store) CreateProvider(ctx context.Context, p *models.Provider) error {
	if p.CountryCode == "" {
		p.CountryCode = models.DefaultCountryCode
	}
	if p.ProfilePic == "" {
		p.ProfilePic = models.DefaultProfilePic
	}
	if p.Services == nil {
		p.Services = models.ServiceList{}
	}

	if err := s.gw.Insert(ctx, p); err != nil {
		if db.IsUniqueViolation(err) {
			return models.ErrDuplicatePhone
		}
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

func (s *Store) FindProviderByPhone(ctx context.Context, phone string) (*models.Provider, error) {
	var p models.Provider
	if err := s.gw.QueryOne(ctx, &p, "SELECT * FROM providers WHERE phone = ? LIMIT 1", phone); err != nil {
		return nil, wrapLookup("find provider by phone", err)
	}
	return &p, nil
}

func (s *Store) FindProviderByID(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := s.gw.QueryOne(ctx, &p, "SELECT * FROM providers WHERE id = ? LIMIT 1", id); err != nil {
		return nil, wrapLookup("find provider by id", err)
	}
	return &p, nil
}

// UpdateProvider writes every profile column of p, including the password
// digest. The caller keeps the old digest when the password is unchanged.
func (s *Store) UpdateProvider(ctx context.Context, p *models.Provider) error {
	_, err := s.gw.Execute(ctx, `UPDATE providers SET
		name = ?, country_code = ?, area = ?, price_per_kg = ?, delivery_fee = ?,
		services = ?, phone = ?, password = ?, description = ?, profile_pic = ?
		WHERE id = ?`,
		p.Name, p.CountryCode, p.Area, p.PricePerKg, p.DeliveryFee,
		p.Services, p.Phone, p.Password, p.Description, p.ProfilePic,
		p.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.ErrDuplicatePhone
		}
		return fmt.Errorf("update provider %d: %w", p.ID, err)
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, providerID uint, passwordHash string) error {
	n, err := s.gw.Execute(ctx, "UPDATE providers SET password = ? WHERE id = ?", passwordHash, providerID)
	if err != nil {
		return fmt.Errorf("update password for provider %d: %w", providerID, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListProviders returns every provider with its average rating, rounded to one
// decimal, and its review count.
func (s *Store) ListProviders(ctx context.Context, sortBy string) ([]models.ProviderSummary, error) {
	var rows []models.ProviderSummary
	err := s.gw.QueryAll(ctx, &rows, `SELECT p.*,
		COALESCE(AVG(r.rating), 0) AS avg_rating,
		COUNT(r.id) AS num_reviews
		FROM providers p
		LEFT JOIN ratings r ON r.provider_id = p.id
		GROUP BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	for i := range rows {
		rows[i].AvgRating = math.Round(rows[i].AvgRating*10) / 10
	}
	sortProviders(rows, sortBy)
	return rows, nil
}

func sortProviders(rows []models.ProviderSummary, sortBy string) {
	switch sortBy {
	case SortByRating:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].AvgRating > rows[j].AvgRating
		})
	case SortAlphabetically:
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
				return rows[i].ID > rows[j].ID
			}
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		})
	}
}

func wrapLookup(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
