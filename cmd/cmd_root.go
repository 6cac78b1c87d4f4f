// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/geokit/geocoder"
	"github.com/jcodagnone/geokit/locations"
	"github.com/jcodagnone/geokit/spatial"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "geokit",
	Short: "distances, headings, bounds and geocoding",
	Long: `
geokit computes great circle distances, headings, endpoints and midpoints,
tests points against rectangular bounds, and geocodes addresses through a
chain of providers. Points are given as "lat,lng" or as a free text address.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

type globalOptions struct {
	ConfigPath          string
	Units               string
	Formula             string
	DbPath              string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

var rootOptions = &globalOptions{}

func (o *globalOptions) units() (spatial.Units, error) {
	return spatial.ParseUnits(o.Units)
}

func (o *globalOptions) formula() (spatial.Formula, error) {
	return spatial.ParseFormula(o.Formula)
}

func (o *globalOptions) config() (*geocoder.Config, error) {
	if o.ConfigPath == "" {
		return geocoder.DefaultConfig(), nil
	}

	return geocoder.LoadConfig(o.ConfigPath)
}

func (o *globalOptions) fetcherOptions() geocoder.FetcherOptions {
	options := geocoder.FetcherOptions{UserAgent: "geokit/" + Version}
	if o.EnableHTTPTrace || o.EnableHTTPBodyTrace {
		options.TraceWriter = os.Stderr
		options.TraceBody = o.EnableHTTPBodyTrace
	}

	return options
}

func buildGeocoder(ctx context.Context, opts ...geocoder.Option) (*geocoder.MultiGeocoder, error) {
	cfg, err := rootOptions.config()
	if err != nil {
		return nil, fmt.Errorf("loading geocoder config: %w", err)
	}

	return geocoder.BuildChain(ctx, cfg, rootOptions.fetcherOptions(), opts...)
}

// lazyLocator builds the provider chain on the first address, so commands
// given only coordinates never touch the network or credentials.
type lazyLocator struct {
	once sync.Once
	g    *geocoder.MultiGeocoder
	err  error
}

func (l *lazyLocator) chain(ctx context.Context) (*geocoder.MultiGeocoder, error) {
	l.once.Do(func() {
		l.g, l.err = buildGeocoder(ctx)
	})

	return l.g, l.err
}

// Locate implements spatial.Locator.
func (l *lazyLocator) Locate(ctx context.Context, address string) (spatial.LatLng, error) {
	g, err := l.chain(ctx)
	if err != nil {
		return spatial.LatLng{}, err
	}

	return g.Locate(ctx, address)
}

// Geocode implements locations.Geocoder.
func (l *lazyLocator) Geocode(ctx context.Context, address string) (*geocoder.GeoLoc, error) {
	g, err := l.chain(ctx)
	if err != nil {
		return nil, err
	}

	return g.Geocode(ctx, address)
}

var (
	lazyChain  = &lazyLocator{}
	normalizer = spatial.NewNormalizer(lazyChain)
)

func parsePoint(ctx context.Context, arg string) (spatial.LatLng, error) {
	p, err := normalizer.Normalize(ctx, spatial.Text(arg))
	if err != nil {
		return spatial.LatLng{}, fmt.Errorf("resolving %q: %w", arg, err)
	}

	return p, nil
}

func openRepository(g locations.Geocoder) (*sql.DB, locations.Repository, error) {
	if err := os.MkdirAll(rootOptions.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(rootOptions.DbPath, "geokit.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := locations.NewRepository(db, g)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating locations schema: %w", err)
	}

	return db, repo, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.ConfigPath,
		"config",
		"",
		"YAML file describing the geocoding providers",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.Units,
		"units",
		spatial.DefaultUnits.String(),
		"Distance units: miles or kms",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.Formula,
		"formula",
		spatial.DefaultFormula.String(),
		"Distance formula: sphere or flat",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.DbPath,
		"db-path",
		"db",
		"Directory where the locations database is stored",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
