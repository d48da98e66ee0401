package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Identity IdentityConfig `yaml:"identity"`
	Escrow   EscrowConfig   `yaml:"escrow"`
	Slots    SlotsConfig    `yaml:"slots"`
	Redis    RedisConfig    `yaml:"redis"`
	Minio    MinioConfig    `yaml:"minio"`
	Profiles ProfilesConfig `yaml:"profiles"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// AuthConfig holds what is needed to validate tokens minted by the identity
// provider.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// IdentityConfig describes the external redirect-based identity provider.
type IdentityConfig struct {
	LoginURL string `yaml:"login_url"`
	ReturnTo string `yaml:"return_to"` // route the provider sends the user back to
}

// EscrowConfig points at the external escrow backend that stores contracts
// and user accounts.
type EscrowConfig struct {
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SlotsConfig selects the durable storage for wizard slots.
type SlotsConfig struct {
	Backend  string `yaml:"backend"` // memory, redis, minio
	TTLHours int    `yaml:"ttl_hours"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type ProfilesConfig struct {
	MaxProfiles int `yaml:"max_profiles"` // 0 = unlimited
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Slot backend names
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMinio  = "minio"
)

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Slots.Backend == "" {
		cfg.Slots.Backend = BackendMemory
	}
	if cfg.Slots.TTLHours == 0 {
		cfg.Slots.TTLHours = 48
	}
	if cfg.Escrow.TimeoutSeconds == 0 {
		cfg.Escrow.TimeoutSeconds = 30
	}
	if cfg.Identity.ReturnTo == "" {
		cfg.Identity.ReturnTo = "/dashboard"
	}
	if cfg.Profiles.MaxProfiles == 0 {
		cfg.Profiles.MaxProfiles = 1000
	}

	switch cfg.Slots.Backend {
	case BackendMemory, BackendRedis, BackendMinio:
	default:
		return nil, fmt.Errorf("unknown slots backend %q", cfg.Slots.Backend)
	}

	GlobalConfig = &cfg
	return &cfg, nil
}
