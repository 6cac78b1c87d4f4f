// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/jcodagnone/geokit/spatial"
	"github.com/spf13/cobra"
)

var distanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Distance between two points",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := rootOptions.units()
		if err != nil {
			return err
		}

		formula, err := rootOptions.formula()
		if err != nil {
			return err
		}

		from, err := parsePoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		to, err := parsePoint(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%f %s\n", spatial.Distance(from, to, units, formula), units)

		return nil
	},
}

var headingCmd = &cobra.Command{
	Use:   "heading <from> <to>",
	Short: "Initial heading in degrees from one point to another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parsePoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		to, err := parsePoint(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%f\n", spatial.Heading(from, to))

		return nil
	},
}

var endpointCmd = &cobra.Command{
	Use:   "endpoint <start> <heading> <distance>",
	Short: "Point reached travelling a distance along a heading",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := rootOptions.units()
		if err != nil {
			return err
		}

		start, err := parsePoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		heading, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid heading %q: %w", args[1], err)
		}

		distance, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid distance %q: %w", args[2], err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), spatial.Endpoint(start, heading, distance, units))

		return nil
	},
}

var midpointCmd = &cobra.Command{
	Use:   "midpoint <from> <to>",
	Short: "Point halfway along the great circle between two points",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := rootOptions.units()
		if err != nil {
			return err
		}

		from, err := parsePoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		to, err := parsePoint(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), spatial.Midpoint(from, to, units))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(headingCmd)
	rootCmd.AddCommand(endpointCmd)
	rootCmd.AddCommand(midpointCmd)
}
