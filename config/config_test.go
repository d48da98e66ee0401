package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
auth:
  jwt_secret: "test-secret"
identity:
  login_url: "https://id.example.com/authorize"
  return_to: "/home"
escrow:
  api_url: "https://escrow.example.com/api"
  timeout_seconds: 10
slots:
  backend: "redis"
  ttl_hours: 72
redis:
  addr: "localhost:6379"
  key_prefix: "wizard:"
profiles:
  max_profiles: 50
log:
  level: "debug"
  format: "json"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Expected jwt_secret test-secret, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Identity.LoginURL != "https://id.example.com/authorize" {
		t.Errorf("Expected login_url, got %s", cfg.Identity.LoginURL)
	}
	if cfg.Identity.ReturnTo != "/home" {
		t.Errorf("Expected return_to /home, got %s", cfg.Identity.ReturnTo)
	}
	if cfg.Escrow.APIURL != "https://escrow.example.com/api" {
		t.Errorf("Expected escrow api_url, got %s", cfg.Escrow.APIURL)
	}
	if cfg.Escrow.TimeoutSeconds != 10 {
		t.Errorf("Expected timeout_seconds 10, got %d", cfg.Escrow.TimeoutSeconds)
	}
	if cfg.Slots.Backend != BackendRedis {
		t.Errorf("Expected slots backend redis, got %s", cfg.Slots.Backend)
	}
	if cfg.Slots.TTLHours != 72 {
		t.Errorf("Expected ttl_hours 72, got %d", cfg.Slots.TTLHours)
	}
	if cfg.Redis.KeyPrefix != "wizard:" {
		t.Errorf("Expected key_prefix wizard:, got %s", cfg.Redis.KeyPrefix)
	}
	if cfg.Profiles.MaxProfiles != 50 {
		t.Errorf("Expected max_profiles 50, got %d", cfg.Profiles.MaxProfiles)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Create minimal config to test defaults
	configContent := `
auth:
  jwt_secret: "test-secret"
`
	tmpFile, err := os.CreateTemp("", "config-defaults-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Slots.Backend != BackendMemory {
		t.Errorf("Expected default backend memory, got %s", cfg.Slots.Backend)
	}
	if cfg.Slots.TTLHours != 48 {
		t.Errorf("Expected default ttl_hours 48, got %d", cfg.Slots.TTLHours)
	}
	if cfg.Escrow.TimeoutSeconds != 30 {
		t.Errorf("Expected default timeout_seconds 30, got %d", cfg.Escrow.TimeoutSeconds)
	}
	if cfg.Identity.ReturnTo != "/dashboard" {
		t.Errorf("Expected default return_to /dashboard, got %s", cfg.Identity.ReturnTo)
	}
	if cfg.Profiles.MaxProfiles != 1000 {
		t.Errorf("Expected default max_profiles 1000, got %d", cfg.Profiles.MaxProfiles)
	}
}

func TestLoadUnknownBackend(t *testing.T) {
	configContent := `
slots:
  backend: "cassandra"
`
	tmpFile, err := os.CreateTemp("", "config-backend-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	if _, err := Load(tmpFile.Name()); err == nil {
		t.Error("Expected error for unknown slots backend")
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-invalid-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("invalid: yaml: content:"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	_, err = Load(tmpFile.Name())
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
