// SPDX-License-Identifier: GPL-3.0-only

package tokens

import (
	"context"
	"errors"
	"fmt"
	"laundrolink-server/commons"
	"laundrolink-server/db"
	"laundrolink-server/metrics"
	"laundrolink-server/models"

	"github.com/google/uuid"
)

// IssueReviewToken stores a new random review token for providerID. Tokens
// are UUIDv4 and collisions are not retried.
func (m *Manager) IssueReviewToken(ctx context.Context, providerID uint) (string, error) {
	now := m.now()
	rec := &models.ReviewToken{
		ProviderID: providerID,
		Token:      uuid.NewString(),
		ExpiresAt:  now.Add(m.reviewTTL),
		CreatedAt:  now,
	}
	if err := m.gw.Insert(ctx, rec); err != nil {
		return "", fmt.Errorf("issue review token for provider %d: %w", providerID, err)
	}

	metrics.TokensIssued.WithLabelValues(metrics.KindReview).Inc()
	commons.Logger.Debugf("Issued review token for provider %d, expires %s", providerID, rec.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
	return rec.Token, nil
}

// LookupReviewToken returns the live record for token, or
// models.ErrInvalidOrExpired when it is absent or expired.
func (m *Manager) LookupReviewToken(ctx context.Context, token string) (*models.ReviewToken, error) {
	rec, err := m.lookupReview(ctx, m.gw, token)
	if errors.Is(err, models.ErrInvalidOrExpired) {
		metrics.TokensRejected.WithLabelValues(metrics.KindReview).Inc()
	}
	return rec, err
}

// ConsumeReviewToken deletes the token and runs use in one transaction, and
// returns the provider the token belonged to. A token already consumed by a
// concurrent request yields models.ErrInvalidOrExpired.
func (m *Manager) ConsumeReviewToken(ctx context.Context, token string, use UseFunc) (uint, error) {
	var providerID uint
	err := m.gw.Transaction(ctx, func(tx db.Gateway) error {
		rec, err := m.lookupReview(ctx, tx, token)
		if err != nil {
			return err
		}

		n, err := tx.Execute(ctx, "DELETE FROM review_tokens WHERE id = ?", rec.ID)
		if err != nil {
			return fmt.Errorf("delete review token: %w", err)
		}
		if n != 1 {
			return models.ErrInvalidOrExpired
		}

		providerID = rec.ProviderID
		if use != nil {
			return use(tx, rec.ProviderID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidOrExpired) {
			metrics.TokensRejected.WithLabelValues(metrics.KindReview).Inc()
		}
		return 0, err
	}

	metrics.TokensConsumed.WithLabelValues(metrics.KindReview).Inc()
	return providerID, nil
}

func (m *Manager) lookupReview(ctx context.Context, gw db.Gateway, token string) (*models.ReviewToken, error) {
	if token == "" {
		return nil, models.ErrInvalidOrExpired
	}

	var rec models.ReviewToken
	err := gw.QueryOne(ctx, &rec, "SELECT * FROM review_tokens WHERE token = ? LIMIT 1", token)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("lookup review token: %w", err)
	}
	if rec.Expired(m.now()) {
		return nil, models.ErrInvalidOrExpired
	}
	return &rec, nil
}
