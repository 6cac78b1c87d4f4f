// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/jcodagnone/geokit/spatial"
)

const nominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the OpenStreetMap Nominatim search API. Its usage
// policy asks for an identifying User-Agent and at most one request per
// second, both of which are enforced by the Fetcher.
type NominatimGeocoder struct {
	baseURL string
	fetcher Fetcher
}

// NewNominatimGeocoder creates a Nominatim provider. An empty baseURL uses the
// public instance.
func NewNominatimGeocoder(fetcher Fetcher, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = nominatimURL
	}

	return &NominatimGeocoder{baseURL: strings.TrimSuffix(baseURL, "/"), fetcher: fetcher}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	AddressType string `json:"addresstype"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Name implements Provider.
func (n *NominatimGeocoder) Name() string {
	return "nominatim"
}

// Geocode implements Provider.
func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (*GeoLoc, error) {
	params := url.Values{
		"q":              {address},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	body, err := n.fetcher.Fetch(ctx, n.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeParse, Message: "decoding nominatim response", Err: err}
	}

	if len(results) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "address not found"}
	}

	r := results[0]

	point, err := spatial.ParseLatLng(r.Lat, r.Lon)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeParse, Message: "nominatim coordinates", Err: err}
	}

	loc := NewGeoLoc()
	loc.Point = point
	loc.Provider = n.Name()
	loc.Precision = nominatimPrecision(r.AddressType)
	loc.SetFullAddress(r.DisplayName)

	street := strings.TrimSpace(r.Address.HouseNumber + " " + r.Address.Road)
	if street != "" {
		loc.SetStreetAddress(street)
	}

	for _, city := range []string{r.Address.City, r.Address.Town, r.Address.Village} {
		if city != "" {
			loc.SetCity(city)

			break
		}
	}

	loc.State = r.Address.State
	loc.PostalCode = r.Address.Postcode
	loc.CountryCode = strings.ToUpper(r.Address.CountryCode)
	loc.Success = true

	return loc, nil
}

func nominatimPrecision(addressType string) string {
	switch addressType {
	case "building", "house", "place":
		return "address"
	case "road":
		return "street"
	case "postcode":
		return "zip"
	case "city", "town", "village", "suburb", "neighbourhood":
		return "city"
	case "state":
		return "state"
	case "country":
		return "country"
	default:
		return PrecisionUnknown
	}
}
