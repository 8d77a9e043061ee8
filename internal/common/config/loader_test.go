package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validYAML = `
app:
  name: storefront-stylist
database:
  postgres:
    host: localhost
    database: storefront
    user: stylist
  redis:
    address: localhost:6379
apis:
  personalization:
    base_url: http://localhost:8080
workers:
  rank-annotated-products:
    enabled: true
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIs.Personalization.BaseURL)
	assert.Equal(t, 60000, cfg.APIs.Personalization.Timeout)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, ":8081", cfg.Storefront.HTTPAddr)
	assert.Equal(t, "storefront.events", cfg.Events.Kafka.Topic)
	assert.Equal(t, "info", cfg.Logging.Level)

	w := cfg.Workers["rank-annotated-products"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("STYLIST_TEST_API", "http://stylist.internal:9000")
	body := validYAML + "\n" + `
storefront:
  default_user_id: user_123
`
	body = strings.Replace(body, "base_url: http://localhost:8080", `base_url: "${STYLIST_TEST_API}"`, 1)

	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "http://stylist.internal:9000", cfg.APIs.Personalization.BaseURL)
	assert.Equal(t, "user_123", cfg.Storefront.DefaultUserID)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing personalization url",
			body: `
database:
  postgres: {host: h, database: d, user: u}
  redis: {address: r:6379}
`,
			wantErr: "apis.personalization.base_url is required",
		},
		{
			name: "missing redis",
			body: `
apis:
  personalization: {base_url: "http://x"}
database:
  postgres: {host: h, database: d, user: u}
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "kafka enabled without brokers",
			body: validYAML + `
events:
  kafka:
    enabled: true
`,
			wantErr: "events.kafka.brokers is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRequireCamunda(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireCamunda())
	cfg.Camunda.BrokerAddress = "zeebe:26500"
	assert.NoError(t, cfg.RequireCamunda())
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"save-style-profile": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "save-style-profile"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "save-style-profile").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
