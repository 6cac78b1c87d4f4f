// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"testing"

	"github.com/jcodagnone/geokit/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationAddress(t *testing.T) {
	loc := &Location{Street: "100 Spear St", City: "San Francisco", State: "CA", PostalCode: "94105"}

	assert.Equal(t, "100 Spear St San Francisco,CA 94105", loc.Address())
}

func TestLocationGeocode(t *testing.T) {
	loc := &Location{Street: "100 Spear St", City: "San Francisco", State: "CA", PostalCode: "94105"}
	spear := spatial.LatLng{Lat: 37.792528, Lng: -122.393981}

	require.NoError(t, loc.Geocode(context.Background(), addressBook(map[string]spatial.LatLng{
		loc.Address(): spear,
	})))

	assert.Equal(t, spear, loc.LatLng())
	assert.Equal(t, "100 Spear St San Francisco,CA 94105, USA", loc.FullAddress)
}

func TestLocationGeocodeBlankAddress(t *testing.T) {
	err := (&Location{}).Geocode(context.Background(), addressBook(nil))

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "address: Could not geocode address", err.Error())
}

func TestLocationIsMappable(t *testing.T) {
	var m spatial.Mappable = &Location{}
	assert.Equal(t, spatial.LatLng{}, m.LatLng())

	b := spatial.NewBounds(spatial.LatLng{Lat: 29, Lng: -98}, spatial.LatLng{Lat: 31, Lng: -95})
	assert.True(t, b.Contains(at("a", "Austin", austin)))
}
