// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/geokit/geocoder"
	"github.com/jcodagnone/geokit/metrics"
	"github.com/jcodagnone/geokit/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		recorder := metrics.NewRecorder()

		g, err := buildGeocoder(cmd.Context(), geocoder.WithObserver(recorder))
		if err != nil {
			return err
		}

		db, repo, err := openRepository(g)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Geocoding providers: %v\n", g.Providers())

		return server.NewServer(g, repo, recorder).Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Address to listen on")
}
