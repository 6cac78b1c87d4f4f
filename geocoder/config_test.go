// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "geokit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"google", "us"}, cfg.ProviderOrder)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
provider_order: [nominatim, us]
timeout: 3s
google:
  region: uy
  key_display_name: My Key
nominatim:
  base_url: http://localhost:8080
  user_agent: geokit-test
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := &Config{
		ProviderOrder: []string{"nominatim", "us"},
		Timeout:       3 * time.Second,
		Google:        GoogleConfig{Region: "uy", KeyDisplayName: "My Key"},
		Nominatim: NominatimConfig{
			BaseURL:           "http://localhost:8080",
			UserAgent:         "geokit-test",
			RequestsPerSecond: 1,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "provider_order: []\n"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "provider_order: {\n"))
	require.Error(t, err)
}

func TestBuildChain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProviderOrder = []string{"google", "nominatim", "us"}
	cfg.Google.APIKey = "configured"

	m, err := BuildChain(context.Background(), cfg, FetcherOptions{UserAgent: "geokit-test"})
	require.NoError(t, err)

	assert.Equal(t, []string{"google", "nominatim", "us"}, m.Providers())
}

func TestBuildChainUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProviderOrder = []string{"us", "yahoo"}

	_, err := BuildChain(context.Background(), cfg, FetcherOptions{})

	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestBuildChainNominatimNeedsUserAgent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProviderOrder = []string{"nominatim"}

	_, err := BuildChain(context.Background(), cfg, FetcherOptions{})

	assert.Error(t, err)
}

func TestResolveGoogleAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "from-env")

	assert.Equal(t, "from-config", resolveGoogleAPIKey(context.Background(), GoogleConfig{APIKey: "from-config"}))
	assert.Equal(t, "from-env", resolveGoogleAPIKey(context.Background(), GoogleConfig{}))
}
