// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"laundrolink-server/commons"
	"laundrolink-server/models"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// bindProviderForm reads and validates the provider fields shared by
// registration and the dashboard. The password is left unchecked.
func bindProviderForm(c echo.Context) (*ProviderForm, error) {
	form := &ProviderForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		CountryCode: strings.TrimSpace(c.FormValue("country_code")),
		Area:        strings.TrimSpace(c.FormValue("area")),
		Password:    c.FormValue("password"),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	if form.CountryCode == "" {
		form.CountryCode = models.DefaultCountryCode
	}

	if form.Name == "" {
		return nil, models.NewValidationError("name", "Please enter your business name.")
	}
	if form.Area == "" {
		return nil, models.NewValidationError("area", "Please enter the area you serve.")
	}

	var err error
	if form.PricePerKg, err = parseAmount(c.FormValue("price")); err != nil {
		return nil, models.NewValidationError("price", "Please enter a valid price per kg.")
	}
	if form.DeliveryFee, err = parseAmount(c.FormValue("delivery")); err != nil {
		return nil, models.NewValidationError("delivery", "Please enter a valid delivery fee.")
	}

	if params, err := c.FormParams(); err == nil {
		form.Services = models.NewServiceList(params["services"]...)
	}

	form.Phone, err = commons.NormalizePhone(c.FormValue("phone"), form.CountryCode)
	if err != nil {
		return nil, models.NewValidationError("phone", "Please enter a valid phone number.")
	}

	return form, nil
}

func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// parseScore accepts only whole stars.
func parseScore(raw string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || score < models.MinScore || score > models.MaxScore {
		return 0, models.NewValidationError("rating", "Please choose a rating between 1 and 5.")
	}
	return score, nil
}

// lookupPhones returns the phone numbers a login or reset form may refer to:
// the normalized number first, then the raw input so legacy rows still match.
func lookupPhones(c echo.Context) []string {
	raw := strings.TrimSpace(c.FormValue("phone"))
	if raw == "" {
		return nil
	}
	country := strings.TrimSpace(c.FormValue("country_code"))
	if country == "" {
		country = models.DefaultCountryCode
	}
	if phone, err := commons.NormalizePhone(raw, country); err == nil && phone != raw {
		return []string{phone, raw}
	}
	return []string{raw}
}

// findProviderByForm looks up the provider named by the form's phone and
// country code. It returns models.ErrNotFound when no candidate matches.
func (h *Handler) findProviderByForm(c echo.Context) (*models.Provider, error) {
	for _, phone := range lookupPhones(c) {
		provider, err := h.Store.FindProviderByPhone(c.Request().Context(), phone)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		return provider, err
	}
	return nil, models.ErrNotFound
}
