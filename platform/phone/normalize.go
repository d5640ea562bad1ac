// Package phone normalizes business phone numbers captured by discovery.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

var countryAliases = map[string]string{
	"usa":            "US",
	"united states":  "US",
	"canada":         "CA",
	"united kingdom": "GB",
	"uk":             "GB",
	"australia":      "AU",
}

// Region maps a lead country (ISO code or common name) to a phonenumbers
// region. Unknown values fall back to US.
func Region(country string) string {
	c := strings.TrimSpace(country)
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	if region, ok := countryAliases[strings.ToLower(c)]; ok {
		return region
	}
	return defaultRegion
}

// NormalizeE164 formats input as E.164 using country for numbers without a
// leading +. Unparseable or invalid numbers come back trimmed but otherwise
// untouched.
func NormalizeE164(input, country string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, Region(country))
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
