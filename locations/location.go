// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package locations stores postal addresses together with their coordinates.
// Records are geocoded before they are saved.
package locations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcodagnone/geokit/geocoder"
	"github.com/jcodagnone/geokit/spatial"
	"github.com/uber/h3-go/v4"
)

// MinCellResolution and MaxCellResolution bound the H3 resolutions indexed
// for each location.
const (
	MinCellResolution = 1
	MaxCellResolution = 8
)

// Geocoder resolves an address. *geocoder.MultiGeocoder implements it.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoder.GeoLoc, error)
}

// Location is a postal address and, once geocoded, its coordinates.
type Location struct {
	ID          int64           `json:"id"`
	Street      string          `json:"street"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	PostalCode  string          `json:"postal_code"`
	Point       *spatial.LatLng `json:"point,omitempty"`
	FullAddress string          `json:"full_address,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Cells holds the H3 cell of Point for each indexed resolution, lowest first.
	Cells []h3.Cell `json:"-"`
}

// ValidationError names the offending field of a Location.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Address is the text sent to the geocoder.
func (l *Location) Address() string {
	return fmt.Sprintf("%s %s,%s %s", l.Street, l.City, l.State, l.PostalCode)
}

// LatLng implements spatial.Mappable. Locations without coordinates map to
// the zero LatLng.
func (l *Location) LatLng() spatial.LatLng {
	if l.Point == nil {
		return spatial.LatLng{}
	}

	return *l.Point
}

// Geocode looks up the address and copies the coordinates and the full
// address into the location.
func (l *Location) Geocode(ctx context.Context, g Geocoder) error {
	if strings.TrimSpace(l.Street+l.City+l.State+l.PostalCode) == "" {
		return &ValidationError{Field: "address", Message: "Could not geocode address", Err: geocoder.ErrGeocodeFailed}
	}

	loc, err := g.Geocode(ctx, l.Address())
	if err != nil {
		return &ValidationError{Field: "address", Message: "Could not geocode address", Err: err}
	}

	p := loc.Point
	l.Point = &p
	l.FullAddress = loc.FullAddress()

	return nil
}

// Validate checks the coordinate ranges.
func (l *Location) Validate() error {
	if l.Point == nil {
		return &ValidationError{Field: "point", Message: "is missing"}
	}

	if l.Point.Lat < -90 || l.Point.Lat > 90 {
		return &ValidationError{Field: "lat", Message: fmt.Sprintf("must be between -90 and 90 (got %f)", l.Point.Lat)}
	}

	if l.Point.Lng < -180 || l.Point.Lng > 180 {
		return &ValidationError{Field: "lng", Message: fmt.Sprintf("must be between -180 and 180 (got %f)", l.Point.Lng)}
	}

	return nil
}

func (l *Location) computeCells() error {
	if l.Point == nil {
		l.Cells = nil

		return nil
	}

	resolutions := make([]int, 0, MaxCellResolution-MinCellResolution+1)
	for res := MinCellResolution; res <= MaxCellResolution; res++ {
		resolutions = append(resolutions, res)
	}

	cells, err := l.Point.Cells(resolutions...)
	if err != nil {
		return err
	}

	l.Cells = cells

	return nil
}
