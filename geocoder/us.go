// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/url"
	"strings"

	"github.com/jcodagnone/geokit/spatial"
)

const usGeocoderURL = "http://geocoder.us/service/csv/geocode"

// USGeocoder uses the geocoder.us CSV service. A successful answer looks like
// "37.792528,-122.393981,100 Spear St,San Francisco,CA,94105"; failures are a
// free text line such as "2: couldn't find this address! sorry".
type USGeocoder struct {
	baseURL string
	fetcher Fetcher
}

// NewUSGeocoder creates a geocoder.us provider. An empty baseURL uses the
// public service.
func NewUSGeocoder(fetcher Fetcher, baseURL string) *USGeocoder {
	if baseURL == "" {
		baseURL = usGeocoderURL
	}

	return &USGeocoder{baseURL: baseURL, fetcher: fetcher}
}

// Name implements Provider.
func (g *USGeocoder) Name() string {
	return "us"
}

// Geocode implements Provider.
func (g *USGeocoder) Geocode(ctx context.Context, address string) (*GeoLoc, error) {
	body, err := g.fetcher.Fetch(ctx, g.baseURL+"?address="+url.QueryEscape(address))
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	record, err := r.Read()
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeParse, Message: "reading geocoder.us response", Err: err}
	}

	if len(record) < 6 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "geocoder.us: " + strings.Join(record, ",")}
	}

	point, err := spatial.ParseLatLng(record[0], record[1])
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeParse, Message: "geocoder.us coordinates", Err: err}
	}

	loc := NewGeoLoc()
	loc.Point = point
	loc.SetStreetAddress(record[2])
	loc.SetCity(record[3])
	loc.State = strings.TrimSpace(record[4])
	loc.PostalCode = strings.TrimSpace(record[5])
	loc.CountryCode = "US"
	loc.Provider = g.Name()
	loc.Success = true

	return loc, nil
}
