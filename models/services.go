// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceCodes lists the known services in form order.
var ServiceCodes = []string{
	"wash_fold",
	"wash_iron",
	"ironing_only",
	"bedding_duvet",
	"curtains",
	"carpet",
	"shoes",
	"leather",
	"dry_cleaning",
	"stain_removal",
}

// ServiceLabels maps stored service codes to the labels shown to customers.
var ServiceLabels = map[string]string{
	"wash_fold":     "Wash & Fold",
	"wash_iron":     "Wash & Iron",
	"ironing_only":  "Ironing Only",
	"bedding_duvet": "Bedding & Duvet Cleaning",
	"curtains":      "Curtains Cleaning",
	"carpet":        "Carpet Cleaning",
	"shoes":         "Shoes Cleaning",
	"leather":       "Leather Garments Cleaning",
	"dry_cleaning":  "Dry Cleaning",
	"stain_removal": "Stain Removal",
}

// ServiceList is persisted as a comma separated string. Scanning also accepts
// a JSON array, which older rows may hold.
type ServiceList []string

func ParseServiceList(raw string) ServiceList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ServiceList{}
	}

	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return NewServiceList(items...)
		}
	}

	return NewServiceList(strings.Split(raw, ",")...)
}

// NewServiceList trims each code and drops empty ones.
func NewServiceList(codes ...string) ServiceList {
	list := make(ServiceList, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			list = append(list, code)
		}
	}
	return list
}

func (s ServiceList) String() string {
	return strings.Join(s, ", ")
}

// Labels returns the display label for each code, falling back to the code.
func (s ServiceList) Labels() []string {
	labels := make([]string, 0, len(s))
	for _, code := range s {
		if label, ok := ServiceLabels[code]; ok {
			labels = append(labels, label)
			continue
		}
		labels = append(labels, code)
	}
	return labels
}

func (s ServiceList) Display() string {
	return strings.Join(s.Labels(), ", ")
}

func (s ServiceList) Contains(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

func (s ServiceList) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *ServiceList) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = ServiceList{}
	case string:
		*s = ParseServiceList(v)
	case []byte:
		*s = ParseServiceList(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ServiceList", value)
	}
	return nil
}
