package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		HTTPPort:                "8080",
		Env:                     "development",
		AutoAssignSchedule:      "*/30 * * * * *",
		AutoAssignLimit:         50,
		LabQueueMetricsSchedule: "*/15 * * * * *",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: "HTTP_PORT"},
		{name: "non-positive limit", mutate: func(c *Config) { c.AutoAssignLimit = 0 }, wantErr: "AUTO_ASSIGN_LIMIT"},
		{name: "five-field schedule", mutate: func(c *Config) { c.AutoAssignSchedule = "*/5 * * * *" }, wantErr: "AUTO_ASSIGN_SCHEDULE"},
		{name: "bad metrics schedule", mutate: func(c *Config) { c.LabQueueMetricsSchedule = "often" }, wantErr: "LAB_QUEUE_METRICS_SCHEDULE"},
		{name: "database without redis", mutate: func(c *Config) { c.DBHost = "db" }, wantErr: "REDIS_ADDR"},
		{name: "production without signing key", mutate: func(c *Config) { c.Env = "production" }, wantErr: "JWT_SIGNING_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_LoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("AUTO_ASSIGN_ENABLED", "true")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.AutoAssignEnabled)
	assert.Equal(t, 50, cfg.AutoAssignLimit)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	assert.False(t, cfg.UsesPostgres())
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "lab", DBPassword: "secret", DBName: "labdesk", DBSslMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=lab password=secret dbname=labdesk sslmode=disable", cfg.DSN())
	assert.Contains(t, cfg.AdminDSN(), "dbname=postgres")
}
