// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package spatial models geographical coordinates and the spherical math
// around them: distances, headings, endpoints, midpoints and bounds.
package spatial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"
)

// LatLng represents a geographical point with latitude and longitude in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Mappable is implemented by anything that can be placed on a map.
type Mappable interface {
	LatLng() LatLng
}

// ParseLatLng builds a LatLng from two numeric strings.
func ParseLatLng(lat, lng string) (LatLng, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("spatial: invalid latitude %q: %w", lat, err)
	}

	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("spatial: invalid longitude %q: %w", lng, err)
	}

	return LatLng{Lat: la, Lng: ln}, nil
}

// LatLng implements Mappable.
func (p LatLng) LatLng() LatLng {
	return p
}

// String returns the comma separated "lat,lng" form.
func (p LatLng) String() string {
	return formatFloat(p.Lat) + "," + formatFloat(p.Lng)
}

// WKT returns the well known text representation, which puts longitude first.
func (p LatLng) WKT() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// ToPair returns latitude and longitude.
func (p LatLng) ToPair() (float64, float64) {
	return p.Lat, p.Lng
}

// Equal reports exact equality of both fields.
func (p LatLng) Equal(o LatLng) bool {
	return p.Lat == o.Lat && p.Lng == o.Lng
}

// Cells returns the H3 cell containing the point at each of the given resolutions.
func (p LatLng) Cells(resolutions ...int) ([]h3.Cell, error) {
	latLng := h3.NewLatLng(p.Lat, p.Lng)
	cells := make([]h3.Cell, 0, len(resolutions))

	for _, res := range resolutions {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return nil, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		cells = append(cells, cell)
	}

	return cells, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
