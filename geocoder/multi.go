// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jcodagnone/geokit/spatial"
)

// MultiGeocoder tries its providers in order until one succeeds. It keeps no
// state between calls and is safe for concurrent use.
type MultiGeocoder struct {
	providers []Provider
	observer  Observer
}

// Option configures a MultiGeocoder.
type Option func(*MultiGeocoder)

// WithObserver reports every provider attempt to o.
func WithObserver(o Observer) Option {
	return func(m *MultiGeocoder) {
		m.observer = o
	}
}

// NewMultiGeocoder creates a chain over the given providers, in order.
func NewMultiGeocoder(providers []Provider, opts ...Option) *MultiGeocoder {
	m := &MultiGeocoder{providers: append([]Provider(nil), providers...)}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Providers returns the provider names in the order they are tried.
func (m *MultiGeocoder) Providers() []string {
	names := make([]string, len(m.providers))
	for i, p := range m.providers {
		names[i] = p.Name()
	}

	return names
}

// Lookup returns the first successful result, or an unsuccessful GeoLoc when
// every provider failed. It never returns nil.
func (m *MultiGeocoder) Lookup(ctx context.Context, address string) *GeoLoc {
	loc, _ := m.lookup(ctx, address)

	return loc
}

// LookupLoc geocodes the address held by a partially filled GeoLoc.
func (m *MultiGeocoder) LookupLoc(ctx context.Context, loc *GeoLoc) *GeoLoc {
	return m.Lookup(ctx, loc.FullAddress())
}

// Geocode is like Lookup but returns ErrGeocodeFailed instead of an
// unsuccessful result.
func (m *MultiGeocoder) Geocode(ctx context.Context, address string) (*GeoLoc, error) {
	loc, err := m.lookup(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
	}

	if !loc.Success {
		return nil, ErrGeocodeFailed
	}

	return loc, nil
}

// GeocodeLoc geocodes the address held by a partially filled GeoLoc.
func (m *MultiGeocoder) GeocodeLoc(ctx context.Context, loc *GeoLoc) (*GeoLoc, error) {
	return m.Geocode(ctx, loc.FullAddress())
}

// Locate implements spatial.Locator.
func (m *MultiGeocoder) Locate(ctx context.Context, address string) (spatial.LatLng, error) {
	loc, err := m.Geocode(ctx, address)
	if err != nil {
		return spatial.LatLng{}, err
	}

	return loc.Point, nil
}

// lookup only returns an error when the context ended the chain early.
func (m *MultiGeocoder) lookup(ctx context.Context, address string) (*GeoLoc, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return NewGeoLoc(), nil
	}

	for _, p := range m.providers {
		if err := ctx.Err(); err != nil {
			return NewGeoLoc(), err
		}

		if loc := m.try(ctx, p, address); loc.Success {
			return loc, nil
		}
	}

	return NewGeoLoc(), nil
}

// try runs a single provider and converts any failure into an unsuccessful GeoLoc.
func (m *MultiGeocoder) try(ctx context.Context, p Provider, address string) (loc *GeoLoc) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("geocoder: provider %s panicked geocoding %q: %v", p.Name(), address, r)

			loc = NewGeoLoc()
		}

		if m.observer != nil {
			m.observer.ObserveAttempt(p.Name(), loc.Success, time.Since(start))
		}
	}()

	loc, err := p.Geocode(ctx, address)
	if err != nil {
		log.Printf("geocoder: provider %s failed for %q: %v", p.Name(), address, err)

		return NewGeoLoc()
	}

	if loc == nil {
		return NewGeoLoc()
	}

	if loc.Success && loc.Provider == "" {
		loc.Provider = p.Name()
	}

	return loc
}
