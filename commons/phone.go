// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone parses phone in the region of countryCode (e.g. "+254") and
// returns it in E.164 form. Numbers already carrying a "+" prefix keep their
// own country.
func NormalizePhone(phone, countryCode string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("phone number is required")
	}

	region := "KE"
	if cc, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(countryCode), "+")); err == nil {
		if r := phonenumbers.GetRegionCodeForCountryCode(cc); r != "" && r != "ZZ" {
			region = r
		}
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// PhoneDigits strips everything but digits, as used by wa.me links.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
