// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jcodagnone/geokit/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrNotFound is returned when no location has the requested id.
var ErrNotFound = errors.New("location not found")

// Nearby is a location and its distance to a search center.
type Nearby struct {
	*Location
	Distance float64 `json:"distance"`
}

// Repository handles persistence of locations.
type Repository interface {
	// CreateSchema creates the locations table
	CreateSchema() error

	// Save geocodes the location when it has no coordinates, then inserts
	// it (ID == 0) or updates it
	Save(ctx context.Context, loc *Location) error

	// Get returns the location with the given id
	Get(id int64) (*Location, error)

	// List returns locations ordered by id
	List(limit, offset int) ([]*Location, error)

	// Delete removes a location
	Delete(id int64) error

	// Within returns the locations inside the bounds
	Within(b spatial.Bounds) ([]*Location, error)

	// Near returns the locations within radius of center, closest first
	Near(center spatial.LatLng, radius float64, units spatial.Units) ([]*Nearby, error)

	// ListInCell returns the locations inside an H3 cell
	ListInCell(cell h3.Cell) ([]*Location, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRepository struct {
	db       *sql.DB
	geocoder Geocoder
}

// NewRepository creates a repository. g may be nil when every saved location
// already carries coordinates.
func NewRepository(db *sql.DB, g Geocoder) Repository {
	return &sqlRepository{db: db, geocoder: g}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func cellColumn(res int) string {
	return fmt.Sprintf("h3_res%d", res)
}

func cellColumns() []string {
	cols := make([]string, 0, MaxCellResolution-MinCellResolution+1)
	for res := MinCellResolution; res <= MaxCellResolution; res++ {
		cols = append(cols, cellColumn(res))
	}

	return cols
}

func (r *sqlRepository) CreateSchema() error {
	var cells strings.Builder
	for _, col := range cellColumns() {
		fmt.Fprintf(&cells, ",\n\t\t\t%s BIGINT", col)
	}

	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS locations_seq START 1;

		CREATE TABLE IF NOT EXISTS locations (
			id BIGINT PRIMARY KEY DEFAULT nextval('locations_seq'),
			street VARCHAR NOT NULL,
			city VARCHAR NOT NULL,
			state VARCHAR NOT NULL,
			postal_code VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			full_address VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL` + cells.String() + `
		);
	`)

	return err
}

func (r *sqlRepository) Save(ctx context.Context, loc *Location) error {
	if loc.Point == nil {
		if r.geocoder == nil {
			return &ValidationError{Field: "address", Message: "Could not geocode address"}
		}

		if err := loc.Geocode(ctx, r.geocoder); err != nil {
			return err
		}
	}

	if err := loc.Validate(); err != nil {
		return err
	}

	if err := loc.computeCells(); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	loc.UpdatedAt = now

	args := []any{loc.Street, loc.City, loc.State, loc.PostalCode, loc.Point.Lat, loc.Point.Lng, loc.FullAddress, now}
	for _, cell := range loc.Cells {
		args = append(args, int64(cell))
	}

	cols := cellColumns()

	if loc.ID != 0 {
		sets := make([]string, len(cols))
		for i, col := range cols {
			sets[i] = col + " = ?"
		}

		res, err := r.db.ExecContext(ctx, `
			UPDATE locations SET street = ?, city = ?, state = ?, postal_code = ?,
				lat = ?, lng = ?, full_address = ?, updated_at = ?, `+strings.Join(sets, ", ")+`
			WHERE id = ?`, append(args, loc.ID)...)
		if err != nil {
			return fmt.Errorf("updating location %d: %w", loc.ID, err)
		}

		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		return nil
	}

	loc.CreatedAt = now
	args = append(args, now)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO locations (street, city, state, postal_code, lat, lng, full_address, updated_at, `+
		strings.Join(cols, ", ")+`, created_at)
		VALUES (`+strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")+`)
		RETURNING id`, args...).Scan(&loc.ID)
	if err != nil {
		return fmt.Errorf("inserting location: %w", err)
	}

	return nil
}

const selectLocation = `SELECT id, street, city, state, postal_code, lat, lng, full_address, created_at, updated_at FROM locations`

type scanner interface {
	Scan(dest ...any) error
}

func scanLocation(row scanner) (*Location, error) {
	var (
		loc      Location
		lat, lng float64
	)

	if err := row.Scan(&loc.ID, &loc.Street, &loc.City, &loc.State, &loc.PostalCode,
		&lat, &lng, &loc.FullAddress, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		return nil, err
	}

	loc.Point = &spatial.LatLng{Lat: lat, Lng: lng}

	if err := loc.computeCells(); err != nil {
		return nil, err
	}

	return &loc, nil
}

func (r *sqlRepository) query(query string, args ...any) ([]*Location, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Location

	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, loc)
	}

	return result, rows.Err()
}

func (r *sqlRepository) Get(id int64) (*Location, error) {
	loc, err := scanLocation(r.db.QueryRow(selectLocation+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return loc, err
}

func (r *sqlRepository) List(limit, offset int) ([]*Location, error) {
	if limit <= 0 {
		return r.query(selectLocation+` ORDER BY id OFFSET ?`, offset)
	}

	return r.query(selectLocation+` ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *sqlRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// Within narrows by latitude in SQL and leaves longitude to Bounds.Contains,
// which knows about the meridian.
func (r *sqlRepository) Within(b spatial.Bounds) ([]*Location, error) {
	candidates, err := r.query(selectLocation+` WHERE lat > ? AND lat < ? ORDER BY id`, b.SW.Lat, b.NE.Lat)
	if err != nil {
		return nil, err
	}

	result := candidates[:0]

	for _, loc := range candidates {
		if b.Contains(loc) {
			result = append(result, loc)
		}
	}

	return result, nil
}

func (r *sqlRepository) Near(center spatial.LatLng, radius float64, units spatial.Units) ([]*Nearby, error) {
	span := latitudeSpan(radius, units)

	candidates, err := r.query(selectLocation+` WHERE lat BETWEEN ? AND ?`,
		math.Max(-90, center.Lat-span), math.Min(90, center.Lat+span))
	if err != nil {
		return nil, err
	}

	var result []*Nearby

	for _, loc := range candidates {
		d := spatial.Distance(center, loc.LatLng(), units, spatial.Sphere)
		if d <= radius {
			result = append(result, &Nearby{Location: loc, Distance: d})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Distance == result[j].Distance {
			return result[i].ID < result[j].ID
		}

		return result[i].Distance < result[j].Distance
	})

	return result, nil
}

// latitudeSpan is the number of latitude degrees covered by distance along a
// meridian.
func latitudeSpan(distance float64, units spatial.Units) float64 {
	radius := spatial.EarthRadiusInMiles
	if units == spatial.Kilometers {
		radius = spatial.EarthRadiusInKms
	}

	return distance / radius * 180 / math.Pi
}

func (r *sqlRepository) ListInCell(cell h3.Cell) ([]*Location, error) {
	if !cell.IsValid() {
		return nil, fmt.Errorf("invalid h3 cell %v", cell)
	}

	res := cell.Resolution()
	if res < MinCellResolution || res > MaxCellResolution {
		return nil, fmt.Errorf("h3 resolution %d not indexed (want %d to %d)", res, MinCellResolution, MaxCellResolution)
	}

	return r.query(selectLocation+` WHERE `+cellColumn(res)+` = ? ORDER BY id`, int64(cell))
}
