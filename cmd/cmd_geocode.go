// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jcodagnone/geokit/geocoder"
	"github.com/jcodagnone/geokit/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var geocodeOptions struct {
	JSON     bool
	MaxProcs int
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Geocode an address through the provider chain",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := buildGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		loc, err := g.Geocode(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if geocodeOptions.JSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(loc)
		}

		fmt.Fprintln(cmd.OutOrStdout(), loc)

		return nil
	},
}

// batchResult is one line of the batch output.
type batchResult struct {
	Address string           `json:"address"`
	Result  *geocoder.GeoLoc `json:"result"`
}

// readAddresses returns the non blank lines of r, dropping those that only
// differ in case, accents or spacing.
func readAddresses(r io.Reader) ([]string, error) {
	var (
		addresses []string
		seen      = make(map[string]bool)
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		address := strings.TrimSpace(scanner.Text())
		if address == "" {
			continue
		}

		key := textutils.LowerASCIIFolding(address)
		if seen[key] {
			continue
		}

		seen[key] = true

		addresses = append(addresses, address)
	}

	return addresses, scanner.Err()
}

// geocodeAll looks up every address with at most maxProcs concurrent
// lookups. Results keep the order of addresses.
func geocodeAll(ctx context.Context, g *geocoder.MultiGeocoder, addresses []string, maxProcs int) []batchResult {
	n := len(addresses)
	if maxProcs <= 0 {
		maxProcs = 1
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]batchResult, n)

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxProcs)

	for i, address := range addresses {
		wg.Add(1)

		go func(i int, address string) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			results[i] = batchResult{Address: address, Result: g.Lookup(ctx, address)}

			if bar == nil {
				log.Printf("Geocoding %s", address)
			} else {
				_ = bar.Add(1)
			}
		}(i, address)
	}

	wg.Wait()

	return results
}

var geocodeBatchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Geocode one address per line, '-' reads standard input",
	Long: `
Geocodes every line of the file and prints one JSON object per address with
the result. Addresses that only differ in case, accents or spacing are looked
up once.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin

		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			in = f
		}

		addresses, err := readAddresses(in)
		if err != nil {
			return fmt.Errorf("reading addresses: %w", err)
		}

		g, err := buildGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		results := geocodeAll(cmd.Context(), g, addresses, geocodeOptions.MaxProcs)

		enc := json.NewEncoder(cmd.OutOrStdout())
		successful := 0

		for _, r := range results {
			if r.Result.Success {
				successful++
			}

			if err := enc.Encode(r); err != nil {
				return err
			}
		}

		log.Printf(
			"Batch complete - %s of %s addresses geocoded",
			textutils.FormatInt(int64(successful)),
			textutils.FormatInt(int64(len(results))),
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.AddCommand(geocodeBatchCmd)
	geocodeCmd.Flags().BoolVar(&geocodeOptions.JSON, "json", false, "Print the result as JSON")
	geocodeBatchCmd.Flags().IntVar(
		&geocodeOptions.MaxProcs,
		"max-procs",
		4,
		"Max number of concurrent lookups",
	)
}
