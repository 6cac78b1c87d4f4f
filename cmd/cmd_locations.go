// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcodagnone/geokit/locations"
	"github.com/spf13/cobra"
	"github.com/uber/h3-go/v4"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Manage stored locations",
}

var locationOptions struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Point      string
	Limit      int
	Offset     int
	Radius     float64
}

func printLocations(w io.Writer, locs []*locations.Location) {
	a, b := strings.Repeat("─", 6), strings.Repeat("─", 24)
	fmt.Fprintf(w, "╭─%6s─┬─%-24s─┬─%-50s╮\n", a, b, strings.Repeat("─", 50))
	fmt.Fprintf(w, "│ %6s │ %-24s │ %-50s│\n", "Id", "Point", "Address")
	fmt.Fprintf(w, "├─%6s─┼─%-24s─┼─%-50s┤\n", a, b, strings.Repeat("─", 50))

	for _, loc := range locs {
		fmt.Fprintf(w, "│ %6d │ %-24s │ %-50s│\n", loc.ID, loc.LatLng(), loc.Address())
	}

	fmt.Fprintf(w, "╰─%6s─┴─%-24s─┴─%-50s╯\n", a, b, strings.Repeat("─", 50))
}

var locationsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a location, geocoding it unless --point is given",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		loc := &locations.Location{
			Street:     locationOptions.Street,
			City:       locationOptions.City,
			State:      locationOptions.State,
			PostalCode: locationOptions.PostalCode,
		}

		if locationOptions.Point != "" {
			p, err := parsePoint(cmd.Context(), locationOptions.Point)
			if err != nil {
				return err
			}

			loc.Point = &p
		}

		db, repo, err := openRepository(lazyChain)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repo.Save(cmd.Context(), loc); err != nil {
			return err
		}

		return json.NewEncoder(cmd.OutOrStdout()).Encode(loc)
	},
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := openRepository(nil)
		if err != nil {
			return err
		}
		defer db.Close()

		locs, err := repo.List(locationOptions.Limit, locationOptions.Offset)
		if err != nil {
			return err
		}

		printLocations(cmd.OutOrStdout(), locs)

		return nil
	},
}

var locationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored location",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		db, repo, err := openRepository(nil)
		if err != nil {
			return err
		}
		defer db.Close()

		return repo.Delete(id)
	},
}

var locationsNearCmd = &cobra.Command{
	Use:   "near <center>",
	Short: "Locations within --radius of a point, closest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := rootOptions.units()
		if err != nil {
			return err
		}

		center, err := parsePoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		db, repo, err := openRepository(nil)
		if err != nil {
			return err
		}
		defer db.Close()

		nearby, err := repo.Near(center, locationOptions.Radius, units)
		if err != nil {
			return err
		}

		for _, n := range nearby {
			fmt.Fprintf(cmd.OutOrStdout(), "%6d %10.3f %s  %s\n", n.ID, n.Distance, units, n.Address())
		}

		return nil
	},
}

var locationsWithinCmd = &cobra.Command{
	Use:   "within <sw> <ne>",
	Short: "Locations inside the bounds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := parseBounds(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		db, repo, err := openRepository(nil)
		if err != nil {
			return err
		}
		defer db.Close()

		locs, err := repo.Within(b)
		if err != nil {
			return err
		}

		printLocations(cmd.OutOrStdout(), locs)

		return nil
	},
}

var locationsCellCmd = &cobra.Command{
	Use:   "cell <h3-index|point>",
	Short: "Locations inside an H3 cell, given by index or by a point and --resolution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cell := h3.Cell(h3.IndexFromString(args[0]))

		if !cell.IsValid() {
			p, err := parsePoint(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cells, err := p.Cells(cellResolution)
			if err != nil {
				return err
			}

			cell = cells[0]
		}

		db, repo, err := openRepository(nil)
		if err != nil {
			return err
		}
		defer db.Close()

		locs, err := repo.ListInCell(cell)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cell %s (resolution %d)\n", cell, cell.Resolution())
		printLocations(cmd.OutOrStdout(), locs)

		return nil
	},
}

var cellResolution int

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsAddCmd)
	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsDeleteCmd)
	locationsCmd.AddCommand(locationsNearCmd)
	locationsCmd.AddCommand(locationsWithinCmd)
	locationsCmd.AddCommand(locationsCellCmd)

	locationsAddCmd.Flags().StringVar(&locationOptions.Street, "street", "", "Street address")
	locationsAddCmd.Flags().StringVar(&locationOptions.City, "city", "", "City")
	locationsAddCmd.Flags().StringVar(&locationOptions.State, "state", "", "State")
	locationsAddCmd.Flags().StringVar(&locationOptions.PostalCode, "postal-code", "", "Postal code")
	locationsAddCmd.Flags().StringVar(&locationOptions.Point, "point", "", "Coordinates as lat,lng; skips geocoding")

	locationsListCmd.Flags().IntVar(&locationOptions.Limit, "limit", 50, "Max number of locations")
	locationsListCmd.Flags().IntVar(&locationOptions.Offset, "offset", 0, "Number of locations to skip")

	locationsNearCmd.Flags().Float64Var(&locationOptions.Radius, "radius", 10, "Search radius in --units")

	locationsCellCmd.Flags().IntVar(
		&cellResolution,
		"resolution",
		locations.MaxCellResolution,
		fmt.Sprintf("H3 resolution when a point is given (%d to %d)", locations.MinCellResolution, locations.MaxCellResolution),
	)
}
