// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcodagnone/geokit/spatial"
	"github.com/jcodagnone/geokit/utils/textutils"
)

// PrecisionUnknown is the precision of results whose provider said nothing
// about accuracy.
const PrecisionUnknown = "unknown"

// GeoLoc is the result of a geocoding call. It homogenizes the responses of
// the different providers.
type GeoLoc struct {
	Point spatial.LatLng

	StreetAddress string
	City          string
	State         string
	PostalCode    string
	CountryCode   string

	// Success is true for successful lookups.
	Success bool
	// Provider is the name of the provider that answered.
	Provider string
	// Precision is a free form accuracy indicator, such as "address" or "city".
	Precision string

	fullAddress string
}

// NewGeoLoc returns an unsuccessful result with unknown precision.
func NewGeoLoc() *GeoLoc {
	return &GeoLoc{Precision: PrecisionUnknown}
}

// LatLng implements spatial.Mappable.
func (g *GeoLoc) LatLng() spatial.LatLng {
	return g.Point
}

// SetCity stores the city with each word capitalized.
func (g *GeoLoc) SetCity(city string) {
	g.City = textutils.TitleCase(city)
}

// SetStreetAddress stores the street address with each word capitalized.
func (g *GeoLoc) SetStreetAddress(address string) {
	g.StreetAddress = textutils.TitleCase(address)
}

// SetFullAddress stores the full address as reported by the provider.
func (g *GeoLoc) SetFullAddress(address string) {
	g.fullAddress = strings.TrimSpace(address)
}

// IsUS reports whether the result is in the United States.
func (g *GeoLoc) IsUS() bool {
	return g.CountryCode == "US"
}

// FullAddress returns the address reported by the provider or, when there is
// none, the non empty address parts joined by commas. For example:
// "100 Spear St, San Francisco, CA, 94105, US".
func (g *GeoLoc) FullAddress() string {
	if g.fullAddress != "" {
		return g.fullAddress
	}

	parts := make([]string, 0, 5)

	for _, s := range []string{g.StreetAddress, g.City, g.State, g.PostalCode, g.CountryCode} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, ", ")
}

// StreetNumber is the leading run of digits of the street address.
func (g *GeoLoc) StreetNumber() string {
	i := strings.IndexFunc(g.StreetAddress, func(r rune) bool { return r < '0' || r > '9' })
	if i < 0 {
		return g.StreetAddress
	}

	return g.StreetAddress[:i]
}

// StreetName is what remains of the street address after the street number.
func (g *GeoLoc) StreetName() string {
	return strings.TrimSpace(g.StreetAddress[len(g.StreetNumber()):])
}

// AsMap returns the public view of the result.
func (g *GeoLoc) AsMap() map[string]any {
	return map[string]any{
		"success":           g.Success,
		"lat":               g.Point.Lat,
		"lng":               g.Point.Lng,
		"country_code":      g.CountryCode,
		"city":              g.City,
		"state":             g.State,
		"postal_code":       g.PostalCode,
		"street_address":    g.StreetAddress,
		"provider":          g.Provider,
		"full_address":      g.FullAddress(),
		"is_us":             g.IsUS(),
		"coordinate_string": g.Point.String(),
		"precision":         g.Precision,
	}
}

// MarshalJSON encodes the AsMap view.
func (g *GeoLoc) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.AsMap())
}

func (g *GeoLoc) String() string {
	return fmt.Sprintf(
		"Provider: %s\nStreet: %s\nCity: %s\nState: %s\nPostal code: %s\nLatitude: %v\nLongitude: %v\nCountry: %s\nSuccess: %t",
		g.Provider, g.StreetAddress, g.City, g.State, g.PostalCode, g.Point.Lat, g.Point.Lng, g.CountryCode, g.Success,
	)
}
