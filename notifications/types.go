// SPDX-License-Identifier: GPL-3.0-only

package notifications

type NotificationTypes string

const (
	ResetLink NotificationTypes = "RESET_LINK"
)

type NotificationProviders string

const (
	// Inline hands the link back to the caller for display.
	Inline NotificationProviders = "inline"
	Mock   NotificationProviders = "mock"
)

type NotificationData struct {
	ProviderID   uint   `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	Phone        string `json:"phone"`
	Link         string `json:"link"`
}

// DeepLinker builds the external messaging link customers follow to contact
// a provider.
type DeepLinker interface {
	ServiceRequestURL(phone, providerName, reviewLink string) string
}
