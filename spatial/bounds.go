// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

// Bounds is a rectangle defined by its south west and north east corners.
// A rectangle whose SW longitude is greater than its NE longitude wraps
// around the 180° meridian.
type Bounds struct {
	SW LatLng `json:"sw"`
	NE LatLng `json:"ne"`
}

// NewBounds creates a Bounds. Corners are not reordered: inverted latitudes
// yield a rectangle that contains nothing.
func NewBounds(sw, ne LatLng) Bounds {
	return Bounds{SW: sw, NE: ne}
}

// FromPointAndRadius returns the bounds circumscribing the circle of the given
// radius around point.
func FromPointAndRadius(point LatLng, radius float64, units Units) Bounds {
	p0 := point.Endpoint(0, radius, units)
	p90 := point.Endpoint(90, radius, units)
	p180 := point.Endpoint(180, radius, units)
	p270 := point.Endpoint(270, radius, units)

	return Bounds{
		SW: LatLng{Lat: p180.Lat, Lng: p270.Lng},
		NE: LatLng{Lat: p0.Lat, Lng: p90.Lng},
	}
}

// Center returns the geodesic midpoint between the corners.
func (b Bounds) Center() LatLng {
	return b.SW.MidpointTo(b.NE, DefaultUnits)
}

// CrossesMeridian reports whether the bounds wrap around the 180° meridian.
func (b Bounds) CrossesMeridian() bool {
	return b.SW.Lng > b.NE.Lng
}

// Contains reports whether the point lies strictly inside the bounds. Points
// on an edge are outside.
func (b Bounds) Contains(point Mappable) bool {
	p := point.LatLng()

	res := p.Lat > b.SW.Lat && p.Lat < b.NE.Lat
	if b.CrossesMeridian() {
		return res && (p.Lng < b.NE.Lng || p.Lng > b.SW.Lng)
	}

	return res && p.Lng < b.NE.Lng && p.Lng > b.SW.Lng
}

// String returns "sw_lat,sw_lng,ne_lat,ne_lng".
func (b Bounds) String() string {
	return b.SW.String() + "," + b.NE.String()
}

// ToPairs returns both corners as [lat, lng] pairs.
func (b Bounds) ToPairs() [2][2]float64 {
	return [2][2]float64{{b.SW.Lat, b.SW.Lng}, {b.NE.Lat, b.NE.Lng}}
}

// Equal reports whether both corners are equal.
func (b Bounds) Equal(o Bounds) bool {
	return b.SW.Equal(o.SW) && b.NE.Equal(o.NE)
}
