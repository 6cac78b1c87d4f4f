// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"
	"math"
	"strings"
)

const (
	// KmsPerMile is the mile to kilometer factor.
	KmsPerMile = 1.609
	// EarthRadiusInMiles is the sphere radius used for spherical math.
	EarthRadiusInMiles = 3963.19
	// EarthRadiusInKms is EarthRadiusInMiles expressed in kilometers.
	EarthRadiusInKms = EarthRadiusInMiles * KmsPerMile
	// MilesPerLatitudeDegree is an empirical constant used by the flat formula.
	MilesPerLatitudeDegree = 69.1
	// KmsPerLatitudeDegree is MilesPerLatitudeDegree expressed in kilometers.
	KmsPerLatitudeDegree = MilesPerLatitudeDegree * KmsPerMile

	latitudeDegrees = EarthRadiusInMiles / MilesPerLatitudeDegree
)

// Units selects the distance unit. The zero value is Miles.
type Units int

const (
	// Miles is the default unit.
	Miles Units = iota
	// Kilometers unit.
	Kilometers
)

// DefaultUnits is used when callers have no preference.
const DefaultUnits = Miles

func (u Units) String() string {
	if u == Kilometers {
		return "kms"
	}

	return "miles"
}

// ParseUnits parses a unit name as accepted by the CLI and the HTTP API.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "miles", "mile", "mi":
		return Miles, nil
	case "kms", "km", "kilometers", "kilometres":
		return Kilometers, nil
	default:
		return Miles, fmt.Errorf("spatial: unknown units %q", s)
	}
}

// Formula selects the distance formula. The zero value is Sphere.
type Formula int

const (
	// Sphere uses the spherical law of cosines.
	Sphere Formula = iota
	// Flat uses a planar approximation, cheap but inaccurate over long distances.
	Flat
)

// DefaultFormula is used when callers have no preference.
const DefaultFormula = Sphere

func (f Formula) String() string {
	if f == Flat {
		return "flat"
	}

	return "sphere"
}

// ParseFormula parses a formula name.
func ParseFormula(s string) (Formula, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sphere", "spherical":
		return Sphere, nil
	case "flat":
		return Flat, nil
	default:
		return Sphere, fmt.Errorf("spatial: unknown formula %q", s)
	}
}

// Distance returns the distance between two points.
func Distance(from, to LatLng, units Units, formula Formula) float64 {
	// acos of a value a hair over 1.0 is NaN
	if from.Equal(to) {
		return 0.0
	}

	if formula == Flat {
		dLat := unitsPerLatitudeDegree(units) * (from.Lat - to.Lat)
		dLng := unitsPerLongitudeDegree(from.Lat, units) * (from.Lng - to.Lng)

		return math.Sqrt(dLat*dLat + dLng*dLng)
	}

	lat1, lat2 := deg2rad(from.Lat), deg2rad(to.Lat)

	return earthRadius(units) * math.Acos(
		math.Sin(lat1)*math.Sin(lat2)+
			math.Cos(lat1)*math.Cos(lat2)*math.Cos(deg2rad(to.Lng)-deg2rad(from.Lng)),
	)
}

// Heading returns the initial bearing in degrees in [0, 360) from one point to
// another, where 0 is north and 90 is east.
func Heading(from, to LatLng) float64 {
	dLng := deg2rad(to.Lng - from.Lng)
	fromLat := deg2rad(from.Lat)
	toLat := deg2rad(to.Lat)

	y := math.Sin(dLng) * math.Cos(toLat)
	x := math.Cos(fromLat)*math.Sin(toLat) - math.Sin(fromLat)*math.Cos(toLat)*math.Cos(dLng)

	return math.Mod(rad2deg(math.Atan2(y, x))+360, 360)
}

// Endpoint solves the direct problem: the point reached from start after
// travelling distance along heading (degrees).
func Endpoint(start LatLng, heading, distance float64, units Units) LatLng {
	radius := earthRadius(units)
	lat := deg2rad(start.Lat)
	lng := deg2rad(start.Lng)
	h := deg2rad(heading)
	angular := distance / radius

	endLat := math.Asin(math.Sin(lat)*math.Cos(angular) +
		math.Cos(lat)*math.Sin(angular)*math.Cos(h))

	endLng := lng + math.Atan2(math.Sin(h)*math.Sin(angular)*math.Cos(lat),
		math.Cos(angular)-math.Sin(lat)*math.Sin(endLat))

	return LatLng{Lat: rad2deg(endLat), Lng: rad2deg(endLng)}
}

// Midpoint returns the point halfway along the great circle between two points.
func Midpoint(from, to LatLng, units Units) LatLng {
	heading := Heading(from, to)
	distance := Distance(from, to, units, Sphere)

	return Endpoint(from, heading, distance/2, units)
}

// DistanceTo returns the distance to another point.
func (p LatLng) DistanceTo(other LatLng, units Units, formula Formula) float64 {
	return Distance(p, other, units, formula)
}

// HeadingTo returns the heading towards another point.
func (p LatLng) HeadingTo(other LatLng) float64 {
	return Heading(p, other)
}

// HeadingFrom returns the heading from another point towards p.
func (p LatLng) HeadingFrom(other LatLng) float64 {
	return Heading(other, p)
}

// Endpoint returns the point reached after travelling distance along heading.
func (p LatLng) Endpoint(heading, distance float64, units Units) LatLng {
	return Endpoint(p, heading, distance, units)
}

// MidpointTo returns the midpoint between p and other.
func (p LatLng) MidpointTo(other LatLng, units Units) LatLng {
	return Midpoint(p, other, units)
}

func deg2rad(degrees float64) float64 {
	return degrees / 180.0 * math.Pi
}

func rad2deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func earthRadius(units Units) float64 {
	if units == Kilometers {
		return EarthRadiusInKms
	}

	return EarthRadiusInMiles
}

func unitsPerLatitudeDegree(units Units) float64 {
	if units == Kilometers {
		return KmsPerLatitudeDegree
	}

	return MilesPerLatitudeDegree
}

// unitsPerLongitudeDegree shrinks towards the poles.
func unitsPerLongitudeDegree(lat float64, units Units) float64 {
	milesPerLongitudeDegree := math.Abs(latitudeDegrees * math.Cos(deg2rad(lat)))
	if units == Kilometers {
		return milesPerLongitudeDegree * KmsPerMile
	}

	return milesPerLongitudeDegree
}
