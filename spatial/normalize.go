// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// latLngRegex matches "37.1234,-129.1234" and "37.1234 -129.1234".
var latLngRegex = regexp.MustCompile(`^(-?\d+\.?\d*)[, ] ?(-?\d+\.?\d*)$`)

// ErrNoLocator is returned when free text needs geocoding but no Locator was set.
var ErrNoLocator = errors.New("spatial: no locator configured to resolve addresses")

// Locator resolves a free text address into a point.
type Locator interface {
	Locate(ctx context.Context, address string) (LatLng, error)
}

// Input is anything the Normalizer knows how to turn into a LatLng. The set of
// implementations is closed: Text, Pair, LatLng and Mapped.
type Input interface {
	isInput()
}

// Text is either a "lat,lng" string or an address to be geocoded.
type Text string

// Pair is a [lat, lng] tuple.
type Pair [2]float64

// Mapped wraps a record that exposes its own coordinates.
type Mapped struct {
	Mappable
}

func (Text) isInput()   {}
func (Pair) isInput()   {}
func (LatLng) isInput() {}
func (Mapped) isInput() {}

// NormalizationError reports an input that cannot be interpreted as a point.
type NormalizationError struct {
	Input any
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("spatial: %v (%T) cannot be normalized to a LatLng", e.Input, e.Input)
}

// Normalizer turns heterogeneous inputs into a LatLng, geocoding free text
// through its Locator.
type Normalizer struct {
	locator Locator
}

// NewNormalizer creates a Normalizer. The locator may be nil, in which case
// addresses fail with ErrNoLocator.
func NewNormalizer(locator Locator) *Normalizer {
	return &Normalizer{locator: locator}
}

// Normalize resolves the input. Only Text that is not a coordinate pair
// triggers a remote lookup.
func (n *Normalizer) Normalize(ctx context.Context, in Input) (LatLng, error) {
	switch v := in.(type) {
	case Text:
		return n.normalizeText(ctx, string(v))
	case Pair:
		return LatLng{Lat: v[0], Lng: v[1]}, nil
	case LatLng:
		return v, nil
	case Mapped:
		if v.Mappable == nil {
			return LatLng{}, &NormalizationError{Input: in}
		}

		return v.LatLng(), nil
	default:
		return LatLng{}, &NormalizationError{Input: in}
	}
}

func (n *Normalizer) normalizeText(ctx context.Context, s string) (LatLng, error) {
	s = strings.TrimSpace(s)

	if match := latLngRegex.FindStringSubmatch(s); match != nil {
		return ParseLatLng(match[1], match[2])
	}

	if n == nil || n.locator == nil {
		return LatLng{}, ErrNoLocator
	}

	p, err := n.locator.Locate(ctx, s)
	if err != nil {
		return LatLng{}, fmt.Errorf("geocoding %q: %w", s, err)
	}

	return p, nil
}

// NormalizeBounds normalizes both corners, in sw, ne order.
func (n *Normalizer) NormalizeBounds(ctx context.Context, sw, ne Input) (Bounds, error) {
	swp, err := n.Normalize(ctx, sw)
	if err != nil {
		return Bounds{}, fmt.Errorf("south west corner: %w", err)
	}

	nep, err := n.Normalize(ctx, ne)
	if err != nil {
		return Bounds{}, fmt.Errorf("north east corner: %w", err)
	}

	return NewBounds(swp, nep), nil
}

// Contains normalizes the input and reports whether the bounds contain it.
func (n *Normalizer) Contains(ctx context.Context, b Bounds, in Input) (bool, error) {
	p, err := n.Normalize(ctx, in)
	if err != nil {
		return false, err
	}

	return b.Contains(p), nil
}

// NormalizeBoundsPair is NormalizeBounds for a two element sequence.
func (n *Normalizer) NormalizeBoundsPair(ctx context.Context, corners [2]Input) (Bounds, error) {
	return n.NormalizeBounds(ctx, corners[0], corners[1])
}
