package config

import (
	"os"
	"path/filepath"
	"testing"
)

// validBase returns a config that passes Validate, for mutation in tests.
func validBase() *Config {
	return &Config{
		Site: SiteConfig{ID: "site-001"},
		Vendor: VendorConfig{
			BaseURL:        "https://openapi.tuyaeu.com",
			ClientID:       "client-id",
			ClientSecret:   "client-secret",
			RequestTimeout: 10,
		},
		Devices: []DeviceConfig{
			{ID: "dev-1", Type: "thermostat", Controlled: true, Setpoint: 21, Hysteresis: 0.5},
		},
		Ingest:   IngestConfig{Interval: 60},
		Control:  ControlConfig{Interval: 30},
		Database: DatabaseConfig{Path: "/data/homewatch.db"},
		API:      APIConfig{Port: 8080},
		MQTT:     MQTTConfig{QoS: 1},
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
site:
  id: "test-site"
vendor:
  base_url: "https://openapi.tuyaeu.com"
  client_id: "test-client-id"
  client_secret: "test-client-secret"
devices:
  - id: "bf1234"
    name: "Hall thermostat"
    type: "thermostat"
    controlled: true
    setpoint: 21.0
    hysteresis: 0.5
  - id: "bf5678"
    type: "energy_meter"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if len(cfg.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(cfg.Devices))
	}

	if cfg.Devices[0].Setpoint != 21.0 {
		t.Errorf("Devices[0].Setpoint = %v, want 21.0", cfg.Devices[0].Setpoint)
	}

	// Defaults should survive a partial file
	if cfg.Ingest.Interval != 60 {
		t.Errorf("Ingest.Interval = %d, want default 60", cfg.Ingest.Interval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing vendor client ID",
			mutate:  func(c *Config) { c.Vendor.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "missing vendor client secret",
			mutate:  func(c *Config) { c.Vendor.ClientSecret = "" },
			wantErr: true,
		},
		{
			name:    "unknown device type",
			mutate:  func(c *Config) { c.Devices[0].Type = "kettle" },
			wantErr: true,
		},
		{
			name: "duplicate device ID",
			mutate: func(c *Config) {
				c.Devices = append(c.Devices, DeviceConfig{ID: "dev-1", Type: "energy_meter"})
			},
			wantErr: true,
		},
		{
			name:    "negative hysteresis on controlled device",
			mutate:  func(c *Config) { c.Devices[0].Hysteresis = -1 },
			wantErr: true,
		},
		{
			name:    "zero ingest interval",
			mutate:  func(c *Config) { c.Ingest.Interval = 0 },
			wantErr: true,
		},
		{
			name:    "zero control interval",
			mutate:  func(c *Config) { c.Control.Interval = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name: "influxdb enabled without URL",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Bucket = "telemetry"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Vendor:  VendorConfig{RequestTimeout: 10},
		Ingest:  IngestConfig{Interval: 60},
		Control: ControlConfig{Interval: 30},
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}

	if got := cfg.GetRequestTimeout().Seconds(); got != 10 {
		t.Errorf("GetRequestTimeout() = %v, want 10", got)
	}

	if got := cfg.GetIngestInterval().Seconds(); got != 60 {
		t.Errorf("GetIngestInterval() = %v, want 60", got)
	}

	if got := cfg.GetControlInterval().Seconds(); got != 30 {
		t.Errorf("GetControlInterval() = %v, want 30", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("HOMEWATCH_VENDOR_CLIENT_ID", "env-client-id")
	t.Setenv("HOMEWATCH_VENDOR_CLIENT_SECRET", "env-client-secret")
	t.Setenv("HOMEWATCH_DATABASE_PATH", "/custom/path.db")
	t.Setenv("HOMEWATCH_API_HOST", "192.168.1.1")
	t.Setenv("HOMEWATCH_API_PORT", "9090")
	t.Setenv("HOMEWATCH_API_TOKEN", "api-token")
	t.Setenv("HOMEWATCH_MQTT_HOST", "mqtt.example.com")
	t.Setenv("HOMEWATCH_MQTT_USERNAME", "testuser")
	t.Setenv("HOMEWATCH_MQTT_PASSWORD", "testpass")
	t.Setenv("HOMEWATCH_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Vendor.ClientID != "env-client-id" {
		t.Errorf("Vendor.ClientID = %q, want %q", cfg.Vendor.ClientID, "env-client-id")
	}

	if cfg.Vendor.ClientSecret != "env-client-secret" {
		t.Errorf("Vendor.ClientSecret = %q, want %q", cfg.Vendor.ClientSecret, "env-client-secret")
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}

	if cfg.API.Token != "api-token" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "api-token")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.Ingest.Interval != 60 {
		t.Errorf("defaultConfig Ingest.Interval = %d, want 60", cfg.Ingest.Interval)
	}

	if cfg.Control.Interval != 30 {
		t.Errorf("defaultConfig Control.Interval = %d, want 30", cfg.Control.Interval)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
