// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jcodagnone/geokit/geocoder"
	"github.com/jcodagnone/geokit/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/h3-go/v4"
)

var (
	austin  = spatial.LatLng{Lat: 30.2672, Lng: -97.7431}
	dallas  = spatial.LatLng{Lat: 32.7767, Lng: -96.7970}
	houston = spatial.LatLng{Lat: 29.7604, Lng: -95.3698}
)

// addressBook geocodes the addresses it knows through a real chain.
func addressBook(known map[string]spatial.LatLng) *geocoder.MultiGeocoder {
	return geocoder.NewMultiGeocoder([]geocoder.Provider{
		geocoder.ProviderFunc("book", func(_ context.Context, address string) (*geocoder.GeoLoc, error) {
			p, ok := known[address]
			if !ok {
				return nil, &geocoder.GeocodingError{Type: geocoder.ErrorTypeNotFound, Message: address}
			}

			loc := geocoder.NewGeoLoc()
			loc.Point = p
			loc.SetFullAddress(address + ", USA")
			loc.Success = true

			return loc, nil
		}),
	})
}

func setupTestDB(t *testing.T, g Geocoder) (*sql.DB, Repository) {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, g)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db, repo
}

func at(street, city string, p spatial.LatLng) *Location {
	return &Location{Street: street, City: city, State: "TX", Point: &p}
}

func seed(t *testing.T, repo Repository, locs ...*Location) {
	t.Helper()

	for _, loc := range locs {
		require.NoError(t, repo.Save(context.Background(), loc))
	}
}

func ids(locs []*Location) []int64 {
	result := make([]int64, len(locs))
	for i, l := range locs {
		result[i] = l.ID
	}

	return result
}

func TestCreateSchema(t *testing.T) {
	db, _ := setupTestDB(t, nil)

	var tableName string

	err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'locations'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "locations", tableName)
}

func TestSaveGeocodesMissingCoordinates(t *testing.T) {
	loc := &Location{Street: "1100 Congress Ave", City: "Austin", State: "TX", PostalCode: "78701"}

	_, repo := setupTestDB(t, addressBook(map[string]spatial.LatLng{
		"1100 Congress Ave Austin,TX 78701": austin,
	}))

	require.NoError(t, repo.Save(context.Background(), loc))
	require.NotZero(t, loc.ID)

	got, err := repo.Get(loc.ID)
	require.NoError(t, err)

	assert.Equal(t, austin, got.LatLng())
	assert.Equal(t, "1100 Congress Ave Austin,TX 78701, USA", got.FullAddress)
	assert.Equal(t, "Austin", got.City)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
	assert.Len(t, got.Cells, MaxCellResolution-MinCellResolution+1)
}

func TestSaveRefusesUngeocodableAddress(t *testing.T) {
	db, repo := setupTestDB(t, addressBook(nil))

	err := repo.Save(context.Background(), &Location{Street: "Nowhere", City: "Atlantis"})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "address", validation.Field)
	assert.Equal(t, "Could not geocode address", validation.Message)
	assert.ErrorIs(t, err, geocoder.ErrGeocodeFailed)

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM locations").Scan(&count))
	assert.Zero(t, count)
}

func TestSaveWithoutGeocoder(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	err := repo.Save(context.Background(), &Location{Street: "1 Main St"})

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSaveValidatesCoordinates(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	tests := []struct {
		name  string
		point spatial.LatLng
		field string
	}{
		{"latitude too high", spatial.LatLng{Lat: 91, Lng: 0}, "lat"},
		{"latitude too low", spatial.LatLng{Lat: -90.5, Lng: 0}, "lat"},
		{"longitude too high", spatial.LatLng{Lat: 0, Lng: 180.1}, "lng"},
		{"longitude too low", spatial.LatLng{Lat: 0, Lng: -181}, "lng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(context.Background(), at("x", "y", tt.point))

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestSaveUpdates(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	loc := at("1100 Congress Ave", "Austin", austin)
	seed(t, repo, loc)

	created := loc.CreatedAt
	loc.City = "Dallas"
	loc.Point = &dallas
	require.NoError(t, repo.Save(context.Background(), loc))

	got, err := repo.Get(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dallas", got.City)
	assert.Equal(t, dallas, got.LatLng())
	assert.True(t, created.Equal(got.CreatedAt))

	missing := at("x", "y", austin)
	missing.ID = 999
	assert.ErrorIs(t, repo.Save(context.Background(), missing), ErrNotFound)
}

func TestGetListDelete(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	a, d, h := at("a", "Austin", austin), at("d", "Dallas", dallas), at("h", "Houston", houston)
	seed(t, repo, a, d, h)

	all, err := repo.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, d.ID, h.ID}, ids(all))

	page, err := repo.List(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{d.ID}, ids(page))

	require.NoError(t, repo.Delete(d.ID))
	assert.ErrorIs(t, repo.Delete(d.ID), ErrNotFound)

	_, err = repo.Get(d.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWithin(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	a, d, h := at("a", "Austin", austin), at("d", "Dallas", dallas), at("h", "Houston", houston)
	seed(t, repo, a, d, h)

	// Austin and Houston, not Dallas
	southTexas := spatial.NewBounds(spatial.LatLng{Lat: 29, Lng: -98}, spatial.LatLng{Lat: 31, Lng: -95})

	got, err := repo.Within(southTexas)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, h.ID}, ids(got))
}

func TestWithinCrossingMeridian(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	fiji := at("Suva", "Suva", spatial.LatLng{Lat: -18.1, Lng: 178.4})
	samoa := at("Apia", "Apia", spatial.LatLng{Lat: -13.8, Lng: -171.8})
	chile := at("Santiago", "Santiago", spatial.LatLng{Lat: -33.4, Lng: -70.6})
	seed(t, repo, fiji, samoa, chile)

	pacific := spatial.NewBounds(spatial.LatLng{Lat: -20, Lng: 170}, spatial.LatLng{Lat: -10, Lng: -170})

	got, err := repo.Within(pacific)
	require.NoError(t, err)
	assert.Equal(t, []int64{fiji.ID, samoa.ID}, ids(got))
}

func TestNear(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	d, h, a := at("d", "Dallas", dallas), at("h", "Houston", houston), at("a", "Austin", austin)
	seed(t, repo, d, h, a)

	got, err := repo.Near(austin, 150, spatial.Miles)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, a.ID, got[0].ID)
	assert.Zero(t, got[0].Distance)
	assert.Equal(t, h.ID, got[1].ID)
	assert.InDelta(t, 146.4, got[1].Distance, 0.1)

	got, err = repo.Near(austin, 250, spatial.Kilometers)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.Near(austin, 200, spatial.Miles)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, d.ID, got[2].ID)
}

func TestListInCell(t *testing.T) {
	_, repo := setupTestDB(t, nil)

	a, h := at("a", "Austin", austin), at("h", "Houston", houston)
	seed(t, repo, a, h)

	cells, err := austin.Cells(MaxCellResolution)
	require.NoError(t, err)

	got, err := repo.ListInCell(cells[0])
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids(got))

	fine, err := austin.Cells(MaxCellResolution + 1)
	require.NoError(t, err)

	_, err = repo.ListInCell(fine[0])
	require.Error(t, err)

	_, err = repo.ListInCell(h3.Cell(0))
	require.Error(t, err)
}
