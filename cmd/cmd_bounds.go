// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jcodagnone/geokit/spatial"
	"github.com/spf13/cobra"
)

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Rectangular bounds operations",
}

func parseBounds(ctx context.Context, sw, ne string) (spatial.Bounds, error) {
	b, err := normalizer.NormalizeBounds(ctx, spatial.Text(sw), spatial.Text(ne))
	if err != nil {
		return spatial.Bounds{}, fmt.Errorf("resolving bounds: %w", err)
	}

	return b, nil
}

var boundsContainsCmd = &cobra.Command{
	Use:   "contains <sw> <ne> <point>",
	Short: "Tells whether the bounds contain the point",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := parseBounds(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		contains, err := normalizer.Contains(cmd.Context(), b, spatial.Text(args[2]))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), contains)

		return nil
	},
}

var boundsCenterCmd = &cobra.Command{
	Use:   "center <sw> <ne>",
	Short: "Geodesic center of the bounds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := parseBounds(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), b.Center())

		return nil
	},
}

var boundsRadiusCmd = &cobra.Command{
	Use:   "radius <center> <radius>",
	Short: "Bounds circumscribing a circle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := rootOptions.units()
		if err != nil {
			return err
		}

		center, err := parsePoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		radius, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid radius %q: %w", args[1], err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), spatial.FromPointAndRadius(center, radius, units))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundsCmd)
	boundsCmd.AddCommand(boundsContainsCmd)
	boundsCmd.AddCommand(boundsCenterCmd)
	boundsCmd.AddCommand(boundsRadiusCmd)
}
