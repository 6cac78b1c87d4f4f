// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoder turns addresses into coordinates through an ordered chain
// of pluggable providers.
package geocoder

import (
	"context"
	"time"
)

// Provider geocodes an address against a single backend. A returned error or
// an unsuccessful GeoLoc both mean this provider could not help.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, address string) (*GeoLoc, error)
}

// Observer is notified after each provider attempt.
type Observer interface {
	ObserveAttempt(provider string, success bool, elapsed time.Duration)
}

type funcProvider struct {
	name string
	fn   func(ctx context.Context, address string) (*GeoLoc, error)
}

// ProviderFunc adapts a function into a Provider.
func ProviderFunc(name string, fn func(ctx context.Context, address string) (*GeoLoc, error)) Provider {
	return &funcProvider{name: name, fn: fn}
}

func (p *funcProvider) Name() string {
	return p.name
}

func (p *funcProvider) Geocode(ctx context.Context, address string) (*GeoLoc, error) {
	return p.fn(ctx, address)
}
