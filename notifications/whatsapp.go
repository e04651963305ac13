// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"fmt"
	"laundrolink-server/commons"
	"net/url"
	"strings"
)

const whatsAppBaseURL = "https://wa.me/"

type WhatsApp struct{}

func (WhatsApp) ServiceRequestURL(phone, providerName, reviewLink string) string {
	message := fmt.Sprintf("Hi %s! \n"+
		"I found your service on LaundroLink and would like to request laundry service.\n\n"+
		"Could you please let me know your availability and pickup details? Thanks!\n\n"+
		"After the service, I will leave you a review:\n%s",
		providerName, reviewLink)

	// wa.me expects %20 for spaces.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBaseURL + commons.PhoneDigits(phone) + "?text=" + text
}
