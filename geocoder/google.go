// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleOptions configures a GoogleGeocoder.
type GoogleOptions struct {
	APIKey string
	// Region biases results, e.g. "us"
	Region string
	// BaseURL overrides the geocoding endpoint
	BaseURL string
}

// GoogleGeocoder uses Google Maps Geocoding API.
type GoogleGeocoder struct {
	options GoogleOptions
	fetcher Fetcher
}

// NewGoogleGeocoder creates a new Google Maps geocoder.
func NewGoogleGeocoder(fetcher Fetcher, options GoogleOptions) *GoogleGeocoder {
	if options.BaseURL == "" {
		options.BaseURL = googleGeocodeURL
	}

	return &GoogleGeocoder{options: options, fetcher: fetcher}
}

type googleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type googleMapsResponse struct {
	Results []struct {
		AddressComponents []googleAddressComponent `json:"address_components"`
		Geometry          struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Name implements Provider.
func (g *GoogleGeocoder) Name() string {
	return "google"
}

// Geocode implements Provider.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*GeoLoc, error) {
	params := url.Values{}
	params.Set("address", address)

	if g.options.APIKey != "" {
		params.Set("key", g.options.APIKey)
	}

	if g.options.Region != "" {
		params.Set("region", g.options.Region)
	}

	body, err := g.fetcher.Fetch(ctx, g.options.BaseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var gmResp googleMapsResponse
	if err := json.Unmarshal(body, &gmResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeParse, Message: "decoding google response", Err: err}
	}

	if gmResp.Status != "OK" {
		return nil, googleStatusError(gmResp.Status, gmResp.ErrorMessage)
	}

	if len(gmResp.Results) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results found for " + address}
	}

	result := gmResp.Results[0]

	loc := NewGeoLoc()
	loc.Point.Lat = result.Geometry.Location.Lat
	loc.Point.Lng = result.Geometry.Location.Lng
	loc.Provider = g.Name()
	loc.Precision = googlePrecision(result.Geometry.LocationType)
	loc.SetFullAddress(result.FormattedAddress)

	var number, route string

	for _, c := range result.AddressComponents {
		switch {
		case slices.Contains(c.Types, "street_number"):
			number = c.LongName
		case slices.Contains(c.Types, "route"):
			route = c.ShortName
		case slices.Contains(c.Types, "locality"):
			loc.SetCity(c.LongName)
		case slices.Contains(c.Types, "administrative_area_level_1"):
			loc.State = c.ShortName
		case slices.Contains(c.Types, "postal_code"):
			loc.PostalCode = c.LongName
		case slices.Contains(c.Types, "country"):
			loc.CountryCode = c.ShortName
		}
	}

	switch {
	case number != "" && route != "":
		loc.SetStreetAddress(number + " " + route)
	case route != "":
		loc.SetStreetAddress(route)
	}

	loc.Success = true

	return loc, nil
}

// googlePrecision maps location_type into a confidence level.
func googlePrecision(locationType string) string {
	switch locationType {
	case "ROOFTOP":
		return "high"
	case "RANGE_INTERPOLATED":
		return "high" // Common for intersections - Google handles these well
	case "GEOMETRIC_CENTER":
		return "medium"
	case "APPROXIMATE":
		return "low"
	default:
		return PrecisionUnknown
	}
}

func googleStatusError(status, message string) *GeocodingError {
	e := &GeocodingError{Message: fmt.Sprintf("google maps status: %s", status)}
	if message != "" {
		e.Message += " (" + message + ")"
	}

	switch status {
	case "ZERO_RESULTS":
		e.Type = ErrorTypeNotFound
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		e.Type = ErrorTypeQuotaExceeded
	case "REQUEST_DENIED", "INVALID_REQUEST":
		e.Type = ErrorTypeInvalidRequest
	default:
		e.Type = ErrorTypeUnknown
	}

	return e
}
