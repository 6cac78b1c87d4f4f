// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"encoding/json"
	"testing"

	"github.com/jcodagnone/geokit/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spear() *GeoLoc {
	loc := NewGeoLoc()
	loc.Point = spatial.LatLng{Lat: 37.792528, Lng: -122.393981}
	loc.SetStreetAddress("100 spear st")
	loc.SetCity("san francisco")
	loc.State = "CA"
	loc.PostalCode = "94105"
	loc.CountryCode = "US"
	loc.Provider = "google"
	loc.Success = true

	return loc
}

func TestNewGeoLoc(t *testing.T) {
	loc := NewGeoLoc()

	assert.False(t, loc.Success)
	assert.Equal(t, PrecisionUnknown, loc.Precision)
	assert.Empty(t, loc.FullAddress())
}

func TestGeoLocSettersTitleCase(t *testing.T) {
	loc := spear()

	assert.Equal(t, "100 Spear St", loc.StreetAddress)
	assert.Equal(t, "San Francisco", loc.City)
}

func TestGeoLocFullAddress(t *testing.T) {
	loc := spear()
	assert.Equal(t, "100 Spear St, San Francisco, CA, 94105, US", loc.FullAddress())

	loc.SetFullAddress(" 100 Spear Street, San Francisco, CA 94105, USA ")
	assert.Equal(t, "100 Spear Street, San Francisco, CA 94105, USA", loc.FullAddress())

	partial := NewGeoLoc()
	partial.City = "Austin"
	partial.State = "TX"
	assert.Equal(t, "Austin, TX", partial.FullAddress())
}

func TestGeoLocStreetParts(t *testing.T) {
	tests := []struct {
		street string
		number string
		name   string
	}{
		{"100 Spear St", "100", "Spear St"},
		{"Spear St", "", "Spear St"},
		{"1600", "1600", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.street, func(t *testing.T) {
			loc := &GeoLoc{StreetAddress: tt.street}
			assert.Equal(t, tt.number, loc.StreetNumber())
			assert.Equal(t, tt.name, loc.StreetName())
		})
	}
}

func TestGeoLocIsUS(t *testing.T) {
	loc := spear()
	assert.True(t, loc.IsUS())

	loc.CountryCode = "UY"
	assert.False(t, loc.IsUS())
}

func TestGeoLocIsMappable(t *testing.T) {
	var m spatial.Mappable = spear()

	assert.Equal(t, spatial.LatLng{Lat: 37.792528, Lng: -122.393981}, m.LatLng())
}

func TestGeoLocAsMap(t *testing.T) {
	m := spear().AsMap()

	assert.Len(t, m, 13)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "37.792528,-122.393981", m["coordinate_string"])
	assert.Equal(t, "100 Spear St, San Francisco, CA, 94105, US", m["full_address"])
	assert.Equal(t, true, m["is_us"])
	assert.Equal(t, PrecisionUnknown, m["precision"])
}

func TestGeoLocMarshalJSON(t *testing.T) {
	data, err := json.Marshal(spear())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.InDelta(t, 37.792528, got["lat"], 1e-9)
	assert.Equal(t, "San Francisco", got["city"])
	assert.Equal(t, "google", got["provider"])
}

func TestGeoLocString(t *testing.T) {
	s := spear().String()

	assert.Contains(t, s, "Provider: google")
	assert.Contains(t, s, "City: San Francisco")
	assert.Contains(t, s, "Success: true")
}
