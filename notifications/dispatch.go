// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"fmt"
	"laundrolink-server/commons"
	"strings"
)

// ProviderFromEnv reads RESET_LINK_PROVIDER. Links go out of band (mock)
// unless inline delivery is asked for explicitly.
func ProviderFromEnv() NotificationProviders {
	switch p := NotificationProviders(strings.ToLower(commons.GetEnv("RESET_LINK_PROVIDER", string(Mock)))); p {
	case Inline:
		commons.Logger.Warn("RESET_LINK_PROVIDER=inline shows reset links on the page, use it for development only")
		return p
	case Mock:
		return p
	default:
		commons.Logger.Warnf("Unknown RESET_LINK_PROVIDER %q, falling back to %s", p, Mock)
		return Mock
	}
}

// DispatchNotification delivers data through provider. It reports whether the
// caller is expected to show the link itself.
func DispatchNotification(_type NotificationTypes, provider NotificationProviders, data NotificationData) (bool, error) {
	commons.Logger.Debugf("Dispatching notification:\n- type=%s\n- provider=%s", _type, provider)

	var (
		inline bool
		err    error
	)
	switch _type {
	case ResetLink:
		inline, err = dispatchResetLink(provider, data)
	default:
		err = fmt.Errorf("unsupported notification type: %s", _type)
	}

	if err != nil {
		commons.Logger.Errorf("Failed to dispatch notification:\n%v", err)
		return false, err
	}

	commons.Logger.Infof("Notification dispatched successfully:\n- type=%s\n- provider=%s", _type, provider)
	return inline, nil
}

func dispatchResetLink(provider NotificationProviders, data NotificationData) (bool, error) {
	if data.Link == "" {
		return false, fmt.Errorf("'link' field is required")
	}

	switch provider {
	case Inline:
		return true, nil
	case Mock:
		return false, MockResetLinkClient(data)
	default:
		return false, fmt.Errorf("unsupported reset link provider: %s", provider)
	}
}

func MockResetLinkClient(data NotificationData) error {
	commons.Logger.Info("=== MOCK RESET LINK NOTIFICATION ===")
	commons.Logger.Infof("Provider: %d (%s)", data.ProviderID, data.ProviderName)
	commons.Logger.Infof("To: %s", data.Phone)
	commons.Logger.Infof("Link: %s", data.Link)
	commons.Logger.Info("=== RESET LINK MOCK COMPLETE ===")
	return nil
}
