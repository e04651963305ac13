// SPDX-License-Identifier: GPL-3.0-only

package tokens

import (
	"context"
	"errors"
	"fmt"
	"laundrolink-server/commons"
	"laundrolink-server/crypto"
	"laundrolink-server/db"
	"laundrolink-server/metrics"
	"laundrolink-server/models"
)

// IssueResetToken replaces any reset token of providerID with a new one and
// returns the raw secret. Only its hash is stored.
func (m *Manager) IssueResetToken(ctx context.Context, providerID uint) (string, error) {
	raw, err := crypto.GenerateRandomString("", resetSecretBytes, "base64url")
	if err != nil {
		return "", fmt.Errorf("generate reset secret: %w", err)
	}
	hash, err := m.hasher.HashPassword(raw)
	if err != nil {
		return "", fmt.Errorf("hash reset secret: %w", err)
	}

	now := m.now()
	rec := &models.PasswordReset{
		ProviderID: providerID,
		TokenHash:  hash,
		ExpiresAt:  now.Add(m.resetTTL),
		CreatedAt:  now,
	}

	err = m.gw.Transaction(ctx, func(tx db.Gateway) error {
		if _, err := tx.Execute(ctx, "DELETE FROM password_resets WHERE provider_id = ?", providerID); err != nil {
			return fmt.Errorf("delete old reset tokens: %w", err)
		}
		return tx.Insert(ctx, rec)
	})
	if err != nil {
		return "", fmt.Errorf("issue reset token for provider %d: %w", providerID, err)
	}

	metrics.TokensIssued.WithLabelValues(metrics.KindReset).Inc()
	commons.Logger.Debugf("Issued reset token for provider %d", providerID)
	return raw, nil
}

// LookupResetToken compares raw against the hash of every live reset token.
// The first match wins.
func (m *Manager) LookupResetToken(ctx context.Context, raw string) (*models.PasswordReset, error) {
	rec, err := m.lookupReset(ctx, raw)
	if errors.Is(err, models.ErrInvalidOrExpired) {
		metrics.TokensRejected.WithLabelValues(metrics.KindReset).Inc()
	}
	return rec, err
}

// ConsumeResetToken deletes the matching reset token and runs use in one
// transaction. It returns the provider the token belonged to.
func (m *Manager) ConsumeResetToken(ctx context.Context, raw string, use UseFunc) (uint, error) {
	rec, err := m.lookupReset(ctx, raw)
	if err == nil {
		err = m.gw.Transaction(ctx, func(tx db.Gateway) error {
			n, err := tx.Execute(ctx, "DELETE FROM password_resets WHERE id = ?", rec.ID)
			if err != nil {
				return fmt.Errorf("delete reset token: %w", err)
			}
			if n != 1 {
				return models.ErrInvalidOrExpired
			}
			if use != nil {
				return use(tx, rec.ProviderID)
			}
			return nil
		})
	}
	if err != nil {
		if errors.Is(err, models.ErrInvalidOrExpired) {
			metrics.TokensRejected.WithLabelValues(metrics.KindReset).Inc()
		}
		return 0, err
	}

	metrics.TokensConsumed.WithLabelValues(metrics.KindReset).Inc()
	return rec.ProviderID, nil
}

func (m *Manager) lookupReset(ctx context.Context, raw string) (*models.PasswordReset, error) {
	if raw == "" {
		return nil, models.ErrInvalidOrExpired
	}

	var recs []models.PasswordReset
	if err := m.gw.QueryAll(ctx, &recs, "SELECT * FROM password_resets ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list reset tokens: %w", err)
	}

	now := m.now()
	for i := range recs {
		if recs[i].Expired(now) {
			continue
		}
		if m.hasher.VerifyPassword(raw, recs[i].TokenHash) {
			return &recs[i], nil
		}
	}
	return nil, models.ErrInvalidOrExpired
}
