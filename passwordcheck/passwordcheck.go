// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"laundrolink-server/commons"
	"laundrolink-server/models"
	"net/http"
	"strings"
	"time"
	"unicode"
)

const Field = "password"

var (
	pwnedRangeURL = "https://api.pwnedpasswords.com/range/"
	httpClient    = &http.Client{Timeout: 5 * time.Second}
)

// ValidateMatch checks the new/confirm pair of the reset form.
func ValidateMatch(password, confirm string) error {
	if password == "" || confirm == "" {
		return models.NewValidationError(Field, "Please fill in all fields.")
	}
	if password != confirm {
		return models.NewValidationError(Field, "Passwords do not match.")
	}
	return nil
}

// ValidatePassword applies the configured password policy. The breach check
// fails open: an unreachable range API never rejects a password.
func ValidatePassword(ctx context.Context, password string) error {
	minLength := commons.GetEnvInt("PASSWORD_MIN_LENGTH", 8)
	if len([]rune(password)) < minLength {
		return models.NewValidationError(Field, fmt.Sprintf("Password must be at least %d characters long.", minLength))
	}

	if commons.GetEnvBool("PASSWORD_REQUIRE_COMPLEXITY", false) {
		if !hasUppercase(password) {
			return models.NewValidationError(Field, "Password must contain at least one uppercase letter.")
		}
		if !hasLowercase(password) {
			return models.NewValidationError(Field, "Password must contain at least one lowercase letter.")
		}
		if !hasDigit(password) {
			return models.NewValidationError(Field, "Password must contain at least one digit.")
		}
		if !hasSpecialChar(password) {
			return models.NewValidationError(Field, "Password must contain at least one special character (e.g., !@#$%).")
		}
	}

	if commons.GetEnvBool("PWNED_PASSWORDS_ENABLED", false) {
		pwned, err := checkPasswordPwned(ctx, password)
		if err != nil {
			commons.Logger.Error("Error checking pwned passwords:", err)
		}
		if pwned {
			return models.NewValidationError(Field, "Password has been found in data breaches; choose a different one.")
		}
	}

	return nil
}

func checkPasswordPwned(ctx context.Context, password string) (bool, error) {
	hasher := sha1.New()
	hasher.Write([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(hasher.Sum(nil)))

	prefix, suffix := hash[:5], hash[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pwnedRangeURL+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("HIBP API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("HIBP API returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read HIBP response: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		if parts := strings.Split(line, ":"); len(parts) == 2 {
			if strings.TrimSpace(parts[0]) == suffix {
				return true, nil
			}
		}
	}
	return false, nil
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecialChar(s string) bool {
	for _, r := range s {
		if unicode.IsSymbol(r) || unicode.IsPunct(r) {
			return true
		}
	}
	return false
}
