// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"gopkg.in/yaml.v3"
)

// DefaultKeyDisplayName is the display name of the API key looked up through
// Application Default Credentials.
const DefaultKeyDisplayName = "Geokit Geocoding Key"

// Config describes the provider chain.
type Config struct {
	ProviderOrder []string        `yaml:"provider_order"`
	Timeout       time.Duration   `yaml:"timeout,omitempty"`
	Google        GoogleConfig    `yaml:"google,omitempty"`
	US            USConfig        `yaml:"us,omitempty"`
	Nominatim     NominatimConfig `yaml:"nominatim,omitempty"`
}

// GoogleConfig configures the google provider.
type GoogleConfig struct {
	APIKey         string `yaml:"api_key,omitempty"`
	KeyDisplayName string `yaml:"key_display_name,omitempty"`
	// Project used for the key lookup when the credentials carry none
	Project string `yaml:"project,omitempty"`
	Region  string `yaml:"region,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// USConfig configures the geocoder.us provider.
type USConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// NominatimConfig configures the nominatim provider.
type NominatimConfig struct {
	BaseURL           string  `yaml:"base_url,omitempty"`
	UserAgent         string  `yaml:"user_agent,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// DefaultConfig tries google first and falls back to geocoder.us.
func DefaultConfig() *Config {
	return &Config{
		ProviderOrder: []string{"google", "us"},
		Timeout:       10 * time.Second,
		Nominatim: NominatimConfig{
			RequestsPerSecond: 1,
		},
	}
}

// LoadConfig reads a YAML configuration file. Missing keys keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(cfg.ProviderOrder) == 0 {
		return nil, fmt.Errorf("%s: provider_order is empty", path)
	}

	return cfg, nil
}

// ProviderFactory creates a provider from the configuration.
type ProviderFactory func(ctx context.Context, cfg *Config, options FetcherOptions) (Provider, error)

var registry = map[string]ProviderFactory{
	"google":    newGoogleFromConfig,
	"us":        newUSFromConfig,
	"nominatim": newNominatimFromConfig,
}

// ErrUnknownProvider is returned for provider names with no factory.
var ErrUnknownProvider = errors.New("unknown geocoding provider")

// BuildChain creates a MultiGeocoder with the providers named in
// cfg.ProviderOrder. Each provider gets its own fetcher built from options.
func BuildChain(ctx context.Context, cfg *Config, options FetcherOptions, opts ...Option) (*MultiGeocoder, error) {
	if cfg.Timeout > 0 && options.Timeout == 0 {
		options.Timeout = cfg.Timeout
	}

	providers := make([]Provider, 0, len(cfg.ProviderOrder))

	for _, name := range cfg.ProviderOrder {
		factory, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}

		p, err := factory(ctx, cfg, options)
		if err != nil {
			return nil, fmt.Errorf("creating %s provider: %w", name, err)
		}

		providers = append(providers, p)
	}

	return NewMultiGeocoder(providers, opts...), nil
}

func newGoogleFromConfig(ctx context.Context, cfg *Config, options FetcherOptions) (Provider, error) {
	return NewGoogleGeocoder(NewHTTPFetcher(options), GoogleOptions{
		APIKey:  resolveGoogleAPIKey(ctx, cfg.Google),
		Region:  cfg.Google.Region,
		BaseURL: cfg.Google.BaseURL,
	}), nil
}

func newUSFromConfig(_ context.Context, cfg *Config, options FetcherOptions) (Provider, error) {
	return NewUSGeocoder(NewHTTPFetcher(options), cfg.US.BaseURL), nil
}

func newNominatimFromConfig(_ context.Context, cfg *Config, options FetcherOptions) (Provider, error) {
	if cfg.Nominatim.UserAgent != "" {
		options.UserAgent = cfg.Nominatim.UserAgent
	}

	if options.UserAgent == "" {
		return nil, errors.New("nominatim requires an identifying user agent")
	}

	options.RequestsPerSecond = cfg.Nominatim.RequestsPerSecond
	if options.RequestsPerSecond <= 0 {
		options.RequestsPerSecond = 1
	}

	return NewNominatimGeocoder(NewHTTPFetcher(options), cfg.Nominatim.BaseURL), nil
}

// resolveGoogleAPIKey prefers the configured key, then GOOGLE_MAPS_API_KEY,
// then the API Keys service through Application Default Credentials. An
// empty key is not fatal: the provider just fails and the chain moves on.
func resolveGoogleAPIKey(ctx context.Context, cfg GoogleConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}

	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		return key
	}

	log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

	key, err := getAPIKeyFromADC(ctx, cfg.KeyDisplayName, cfg.Project)
	if err != nil {
		log.Printf("Failed to retrieve API key via ADC: %v", err)

		return ""
	}

	log.Println("Retrieved Google Maps API key via ADC")

	return key
}

func getAPIKeyFromADC(ctx context.Context, displayName, fallbackProject string) (string, error) {
	if displayName == "" {
		displayName = DefaultKeyDisplayName
	}

	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		// user credentials without a quota project
		if fallbackProject == "" {
			return "", errors.New("no project in default credentials and none configured")
		}

		projectID = fallbackProject
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' has an empty key string", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
}
