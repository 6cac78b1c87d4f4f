// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatLng(t *testing.T) {
	p, err := ParseLatLng("32.91663", " -96.982841")
	require.NoError(t, err)
	assert.Equal(t, LatLng{Lat: 32.91663, Lng: -96.982841}, p)

	_, err = ParseLatLng("north", "1")
	assert.Error(t, err)

	_, err = ParseLatLng("1", "")
	assert.Error(t, err)
}

func TestLatLngFormatting(t *testing.T) {
	p := LatLng{Lat: 37.792528, Lng: -122.393981}

	assert.Equal(t, "37.792528,-122.393981", p.String())
	assert.Equal(t, "POINT(-122.393981 37.792528)", p.WKT())

	lat, lng := p.ToPair()
	assert.Equal(t, 37.792528, lat)
	assert.Equal(t, -122.393981, lng)
}

func TestLatLngEquality(t *testing.T) {
	a := LatLng{Lat: 1, Lng: 2}

	assert.True(t, a.Equal(LatLng{Lat: 1, Lng: 2}))
	assert.False(t, a.Equal(LatLng{Lat: 1, Lng: 2.0000000001}))
	assert.Equal(t, a, a.LatLng())
}

func TestLatLngCells(t *testing.T) {
	cells, err := dallas.Cells(5, 8)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	assert.Equal(t, 5, cells[0].Resolution())
	assert.Equal(t, 8, cells[1].Resolution())
	assert.True(t, cells[0].IsValid())

	_, err = dallas.Cells(16)
	assert.Error(t, err)
}
