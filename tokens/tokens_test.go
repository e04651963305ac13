// SPDX-License-Identifier: GPL-3.0-only

package tokens

import (
	"context"
	"errors"
	"laundrolink-server/crypto"
	"laundrolink-server/db"
	"laundrolink-server/db/dbtest"
	"laundrolink-server/models"
	"laundrolink-server/store"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	gw      db.Gateway
	store   *store.Store
	clock   *fakeClock
	manager *Manager
	crypto  *crypto.Crypto
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := dbtest.Gateway(t)
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := &crypto.Crypto{ArgonTime: 1, ArgonMemory: 1024, ArgonThreads: 1, ArgonKeyLen: 32, ArgonSaltLen: 16}
	return &fixture{
		gw:      gw,
		store:   store.New(gw),
		clock:   clock,
		crypto:  c,
		manager: NewManager(gw, c, WithClock(clock.Now)),
	}
}

func (f *fixture) provider(t *testing.T, id uint, phone string) *models.Provider {
	t.Helper()
	p := &models.Provider{ID: id, Name: "Fresh Folds", Area: "Westlands", Phone: phone, Password: "old-digest"}
	if err := f.store.CreateProvider(context.Background(), p); err != nil {
		t.Fatalf("CreateProvider failed: %v", err)
	}
	return p
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := f.gw.QueryOne(context.Background(), &n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("Count %s failed: %v", table, err)
	}
	return n
}

func rateWith(score int) UseFunc {
	return func(tx db.Gateway, providerID uint) error {
		return store.New(tx).CreateRating(context.Background(), &models.Rating{ProviderID: providerID, Score: score})
	}
}

func TestReviewTokenConsumedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	token, err := f.manager.IssueReviewToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueReviewToken failed: %v", err)
	}

	rec, err := f.manager.LookupReviewToken(ctx, token)
	if err != nil {
		t.Fatalf("LookupReviewToken failed: %v", err)
	}
	if rec.ProviderID != p.ID || !rec.ExpiresAt.Equal(f.clock.Now().Add(ReviewTokenTTL)) {
		t.Errorf("Unexpected record: %+v", rec)
	}

	providerID, err := f.manager.ConsumeReviewToken(ctx, token, rateWith(5))
	if err != nil {
		t.Fatalf("ConsumeReviewToken failed: %v", err)
	}
	if providerID != p.ID {
		t.Errorf("Expected provider %d, got %d", p.ID, providerID)
	}

	if _, err := f.manager.ConsumeReviewToken(ctx, token, rateWith(5)); !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Errorf("Expected ErrInvalidOrExpired on reuse, got %v", err)
	}
	if _, err := f.manager.LookupReviewToken(ctx, token); !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Errorf("Expected ErrInvalidOrExpired on lookup after use, got %v", err)
	}

	if n := f.count(t, "ratings"); n != 1 {
		t.Errorf("Expected exactly one rating, got %d", n)
	}
	if n := f.count(t, "review_tokens"); n != 0 {
		t.Errorf("Expected the token row to be deleted, got %d", n)
	}
}

func TestReviewTokenExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	token, err := f.manager.IssueReviewToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueReviewToken failed: %v", err)
	}

	f.clock.Advance(ReviewTokenTTL - time.Second)
	if _, err := f.manager.LookupReviewToken(ctx, token); err != nil {
		t.Errorf("Expected token valid just before expiry, got %v", err)
	}

	f.clock.Advance(2 * time.Second)
	if _, err := f.manager.ConsumeReviewToken(ctx, token, rateWith(4)); !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Errorf("Expected ErrInvalidOrExpired at T+48h+1s, got %v", err)
	}
	if n := f.count(t, "ratings"); n != 0 {
		t.Errorf("Expected no rating for expired token, got %d", n)
	}
}

func TestReviewTokenUnknown(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "not-a-token"} {
		if _, err := f.manager.LookupReviewToken(context.Background(), token); !errors.Is(err, models.ErrInvalidOrExpired) {
			t.Errorf("Expected ErrInvalidOrExpired for %q, got %v", token, err)
		}
	}
}

func TestReviewTokenFailedSideEffectKeepsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	token, err := f.manager.IssueReviewToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueReviewToken failed: %v", err)
	}

	_, err = f.manager.ConsumeReviewToken(ctx, token, rateWith(9))
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	if _, err := f.manager.LookupReviewToken(ctx, token); err != nil {
		t.Errorf("Expected token to survive a failed side effect, got %v", err)
	}
	if _, err := f.manager.ConsumeReviewToken(ctx, token, rateWith(3)); err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
}

func TestReviewTokenConcurrentConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	token, err := f.manager.IssueReviewToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueReviewToken failed: %v", err)
	}

	const attempts = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.manager.ConsumeReviewToken(ctx, token, rateWith(5))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if !errors.Is(err, models.ErrInvalidOrExpired) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one successful consume, got %d", wins)
	}
	if n := f.count(t, "ratings"); n != 1 {
		t.Errorf("Expected exactly one rating, got %d", n)
	}
}

func TestReviewTokenUnknownProvider(t *testing.T) {
	f := newFixture(t)

	if _, err := f.manager.IssueReviewToken(context.Background(), 404); err == nil {
		t.Error("Expected foreign key failure for unknown provider")
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	raw, err := f.manager.IssueResetToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}
	if len(raw) != 43 || strings.ContainsAny(raw, "+/=") {
		t.Errorf("Expected 43 char unpadded base64url secret, got %q", raw)
	}

	rec, err := f.manager.LookupResetToken(ctx, raw)
	if err != nil {
		t.Fatalf("LookupResetToken failed: %v", err)
	}
	if rec.ProviderID != p.ID {
		t.Errorf("Expected provider %d, got %d", p.ID, rec.ProviderID)
	}

	providerID, err := f.manager.ConsumeResetToken(ctx, raw, func(tx db.Gateway, id uint) error {
		return store.New(tx).UpdatePassword(ctx, id, "new-digest")
	})
	if err != nil {
		t.Fatalf("ConsumeResetToken failed: %v", err)
	}
	if providerID != p.ID {
		t.Errorf("Expected provider %d, got %d", p.ID, providerID)
	}

	got, _ := f.store.FindProviderByID(ctx, p.ID)
	if got.Password != "new-digest" {
		t.Errorf("Expected password updated, got %q", got.Password)
	}

	if _, err := f.manager.ConsumeResetToken(ctx, raw, nil); !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Errorf("Expected ErrInvalidOrExpired on reuse, got %v", err)
	}
}

func TestResetTokenSecondIssueInvalidatesFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	first, err := f.manager.IssueResetToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}
	second, err := f.manager.IssueResetToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	if _, err := f.manager.LookupResetToken(ctx, first); !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Errorf("Expected first token invalidated, got %v", err)
	}
	if _, err := f.manager.LookupResetToken(ctx, second); err != nil {
		t.Errorf("Expected second token valid, got %v", err)
	}
	if n := f.count(t, "password_resets"); n != 1 {
		t.Errorf("Expected a single live reset token, got %d", n)
	}
}

func TestResetTokenNotStoredInClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	raw, err := f.manager.IssueResetToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	var recs []models.PasswordReset
	if err := f.gw.QueryAll(ctx, &recs, "SELECT * FROM password_resets"); err != nil {
		t.Fatalf("QueryAll failed: %v", err)
	}
	for _, r := range recs {
		if strings.Contains(r.TokenHash, raw) {
			t.Errorf("Raw secret found in stored hash %q", r.TokenHash)
		}
		if !strings.HasPrefix(r.TokenHash, "$argon2id$") {
			t.Errorf("Expected argon2id digest, got %q", r.TokenHash)
		}
	}

	var n int64
	if err := f.gw.QueryOne(ctx, &n, "SELECT COUNT(*) FROM password_resets WHERE token_hash = ?", raw); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Error("Raw secret discoverable by value")
	}
}

func TestResetTokenExpiredLeavesPasswordUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 7, "+254712345678")

	raw, err := f.manager.IssueResetToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	f.clock.Advance(ResetTokenTTL + time.Second)
	_, err = f.manager.ConsumeResetToken(ctx, raw, func(tx db.Gateway, id uint) error {
		return store.New(tx).UpdatePassword(ctx, id, "new-digest")
	})
	if !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Fatalf("Expected ErrInvalidOrExpired, got %v", err)
	}

	got, _ := f.store.FindProviderByID(ctx, 7)
	if got.Password != "old-digest" {
		t.Errorf("Expected unchanged password, got %q", got.Password)
	}
}

func TestResetTokenWrongSecretAndIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.provider(t, 0, "+254712345678")
	b := f.provider(t, 0, "+254712345679")

	rawB, err := f.manager.IssueResetToken(ctx, b.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}
	if _, err := f.manager.IssueResetToken(ctx, a.ID); err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	if _, err := f.manager.LookupResetToken(ctx, "wrong-secret"); !errors.Is(err, models.ErrInvalidOrExpired) {
		t.Errorf("Expected wrong secret rejected, got %v", err)
	}

	rec, err := f.manager.LookupResetToken(ctx, rawB)
	if err != nil {
		t.Fatalf("Expected provider B token to survive A's issue, got %v", err)
	}
	if rec.ProviderID != b.ID {
		t.Errorf("Expected provider %d, got %d", b.ID, rec.ProviderID)
	}
}

func TestResetTokenFailedSideEffectKeepsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, 0, "+254712345678")

	raw, err := f.manager.IssueResetToken(ctx, p.ID)
	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	boom := errors.New("boom")
	if _, err := f.manager.ConsumeResetToken(ctx, raw, func(db.Gateway, uint) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if _, err := f.manager.LookupResetToken(ctx, raw); err != nil {
		t.Errorf("Expected token to survive, got %v", err)
	}
}
