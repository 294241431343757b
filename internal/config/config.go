package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the console backend.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Clients    ClientsConfig    `yaml:"clients"`
	Search     SearchConfig     `yaml:"search"`
	Logging    LoggingConfig    `yaml:"logging"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Cache      CacheConfig      `yaml:"cache"`
}

// ServerConfig controls the REST and gRPC listeners.
type ServerConfig struct {
	HTTPAddress     string        `yaml:"httpAddress"`
	GRPCAddress     string        `yaml:"grpcAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// ClientsConfig groups outbound integrations.
type ClientsConfig struct {
	Backend BackendClientConfig `yaml:"backend"`
}

// BackendClientConfig configures access to the playbook backend API.
type BackendClientConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit caps outbound requests per second; zero disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	Burst     int     `yaml:"burst"`
}

// SearchConfig tunes the hybrid passthrough search exposed to the catalog view.
type SearchConfig struct {
	HybridVectorWeight float64 `yaml:"hybridVectorWeight"`
	HybridTextWeight   float64 `yaml:"hybridTextWeight"`
	HybridMaxResults   int     `yaml:"hybridMaxResults"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// VocabularyConfig points at an optional YAML override of the built-in term lists.
type VocabularyConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig controls caching of playbook catalog reads.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Driver       string        `yaml:"driver"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	CatalogTTL   time.Duration `yaml:"catalogTTL"`
}

// Cache drivers.
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("RCA_CONSOLE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work at all.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case "", CacheDriverMemory, CacheDriverRedis:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Clients.Backend.RateLimit < 0 {
		return fmt.Errorf("clients.backend.rateLimit must not be negative")
	}
	if c.Search.HybridMaxResults < 0 {
		return fmt.Errorf("search.hybridMaxResults must not be negative")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddress:     ":8081",
			GRPCAddress:     ":50061",
			GracefulTimeout: 10 * time.Second,
		},
		Clients: ClientsConfig{
			Backend: BackendClientConfig{
				BaseURL: "http://localhost:8080",
				Timeout: 10 * time.Second,
				Burst:   10,
			},
		},
		Search: SearchConfig{
			HybridVectorWeight: 0.7,
			HybridTextWeight:   0.3,
			HybridMaxResults:   10,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled:      false,
			Driver:       CacheDriverMemory,
			CatalogTTL:   30 * time.Second,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RCA_CONSOLE_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("RCA_CONSOLE_GRPC_ADDRESS"); v != "" {
		cfg.Server.GRPCAddress = v
	}
	if v := os.Getenv("RCA_CONSOLE_BACKEND_URL"); v != "" {
		cfg.Clients.Backend.BaseURL = v
	}
	if v := os.Getenv("RCA_CONSOLE_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Clients.Backend.Timeout = d
		}
	}
	if v := os.Getenv("RCA_CONSOLE_BACKEND_RATE_LIMIT"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Clients.Backend.RateLimit = rate
		}
	}
	if v := os.Getenv("RCA_CONSOLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RCA_CONSOLE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("RCA_CONSOLE_VOCABULARY_PATH"); v != "" {
		cfg.Vocabulary.Path = v
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = isTrue(v)
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_TLS"); isTrue(v) {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("RCA_CONSOLE_CACHE_CATALOG_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.CatalogTTL = d
		}
	}
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
