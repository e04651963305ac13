// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"laundrolink-server/middlewares"
	"laundrolink-server/models"
)

// Page carries what every template needs.
type Page struct {
	Flashes   []middlewares.Flash
	CSRFToken string
	Session   *middlewares.SessionClaims
}

type IndexPage struct {
	Page
	Providers []models.ProviderSummary
	SortBy    string
}

type RegisterPage struct {
	Page
	ShowSuccess bool
	RedirectURL string
}

type LoginPage struct {
	Page
}

type DashboardPage struct {
	Page
	Provider   *models.Provider
	Feedbacks  []models.Rating
	AvgRating  float64
	NumReviews int64
}

type ServicePage struct {
	Page
	Provider *models.Provider
	// Feedbacks holds the latest review only.
	Feedbacks  []models.Rating
	AvgRating  float64
	NumReviews int64
}

type ReviewsPage struct {
	Page
	Provider  *models.Provider
	Feedbacks []models.Rating
}

type LeaveReviewPage struct {
	Page
	Token        string
	ProviderName string
	ShowThankYou bool
	RedirectURL  string
}

type ForgotPasswordPage struct {
	Page
	Submitted bool
	// ResetLink is only set when the link is delivered inline.
	ResetLink string
}

type ResetPasswordPage struct {
	Page
	Token string
}

// ProviderForm is the registration and dashboard form.
type ProviderForm struct {
	Name        string
	CountryCode string
	Area        string
	PricePerKg  float64
	DeliveryFee float64
	Services    models.ServiceList
	Phone       string
	Password    string
	Description string
}

const (
	ReviewCompletionThankYou = "thank_you"
	ReviewCompletionRedirect = "redirect"
)
