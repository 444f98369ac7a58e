package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application-level configuration.
type Config struct {
	Backend   string          `yaml:"backend"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`

	TokenPath   string `yaml:"token_path"`
	UIStatePath string `yaml:"ui_state_path"`

	// Path is the file the config was read from.
	Path string `yaml:"-"`
}

// SupabaseConfig addresses the hosted backend.
type SupabaseConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
	Bucket  string `yaml:"bucket"`
}

// PostgresConfig addresses the self-hosted database.
type PostgresConfig struct {
	DSN       string `yaml:"dsn"`
	JWTSecret string `yaml:"jwt_secret"`
}

// StorageConfig addresses S3-compatible object storage for the self-hosted backend.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

// RedisConfig enables the read-through cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

// CacheTTL parses TTL, defaulting to 30s.
func (r RedisConfig) CacheTTL() time.Duration {
	if d, err := time.ParseDuration(r.TTL); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// KafkaConfig enables activity events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// TelemetryConfig enables tracing and the metrics endpoint.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Dir returns the configuration directory (~/.config/instaterm).
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("INSTATERM_HOME")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "instaterm"), nil
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		Backend:     BackendSupabase,
		Supabase:    SupabaseConfig{Bucket: "images"},
		Storage:     StorageConfig{Bucket: "images"},
		Redis:       RedisConfig{TTL: "30s"},
		Kafka:       KafkaConfig{Topic: "instaterm.activity"},
		Logging:     LoggingConfig{Level: "info", File: filepath.Join(dir, "instaterm.log")},
		TokenPath:   filepath.Join(dir, "token"),
		UIStatePath: filepath.Join(dir, "ui_state.json"),
	}
}

// Load reads configuration from path (default: <Dir>/config.yaml, or
// $INSTATERM_CONFIG), then applies environment overrides and validates.
// A missing file yields the defaults.
//
//	INSTATERM_BACKEND       supabase | postgres | memory
//	INSTATERM_URL           hosted project URL
//	INSTATERM_ANON_KEY      hosted project API key
//	INSTATERM_PG_DSN        self-hosted database DSN
//	INSTATERM_JWT_SECRET    self-hosted session signing secret
//	INSTATERM_S3_*          ENDPOINT, ACCESS_KEY, SECRET_KEY, BUCKET
//	INSTATERM_REDIS_ADDR    enables the cache
//	INSTATERM_KAFKA_BROKERS comma separated, enables events
//	INSTATERM_OTLP_ENDPOINT enables tracing
//	INSTATERM_METRICS_ADDR  enables the metrics endpoint
//	INSTATERM_LOG_LEVEL, INSTATERM_LOG_FILE, INSTATERM_TOKEN
func Load(path string) (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		path = os.Getenv("INSTATERM_CONFIG")
	}
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	cfg := Default(dir)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg.Path = path

	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) applyEnvOverrides() {
	setFromEnv(&c.Backend, "INSTATERM_BACKEND")
	setFromEnv(&c.Supabase.URL, "INSTATERM_URL")
	setFromEnv(&c.Supabase.AnonKey, "INSTATERM_ANON_KEY")
	setFromEnv(&c.Postgres.DSN, "INSTATERM_PG_DSN")
	setFromEnv(&c.Postgres.JWTSecret, "INSTATERM_JWT_SECRET")
	setFromEnv(&c.Storage.Endpoint, "INSTATERM_S3_ENDPOINT")
	setFromEnv(&c.Storage.AccessKey, "INSTATERM_S3_ACCESS_KEY")
	setFromEnv(&c.Storage.SecretKey, "INSTATERM_S3_SECRET_KEY")
	setFromEnv(&c.Storage.Bucket, "INSTATERM_S3_BUCKET")
	setFromEnv(&c.Redis.Addr, "INSTATERM_REDIS_ADDR")
	setFromEnv(&c.Kafka.Topic, "INSTATERM_KAFKA_TOPIC")
	setFromEnv(&c.Telemetry.OTLPEndpoint, "INSTATERM_OTLP_ENDPOINT")
	setFromEnv(&c.Telemetry.MetricsAddr, "INSTATERM_METRICS_ADDR")
	setFromEnv(&c.Logging.Level, "INSTATERM_LOG_LEVEL")
	setFromEnv(&c.Logging.File, "INSTATERM_LOG_FILE")
	setFromEnv(&c.TokenPath, "INSTATERM_TOKEN")

	if v := strings.TrimSpace(os.Getenv("INSTATERM_S3_SSL")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Storage.UseSSL = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("INSTATERM_KAFKA_BROKERS")); v != "" {
		c.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Kafka.Brokers = append(c.Kafka.Brokers, b)
			}
		}
	}
}

func (c *Config) validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendSupabase:
		u, err := normalizeURL(c.Supabase.URL)
		if err != nil {
			return fmt.Errorf("invalid supabase url: %w", err)
		}
		c.Supabase.URL = u
		if strings.TrimSpace(c.Supabase.AnonKey) == "" {
			return errors.New("supabase anon_key is required (INSTATERM_ANON_KEY)")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("postgres dsn is required (INSTATERM_PG_DSN)")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// normalizeURL requires an absolute https URL; plain http is allowed only for
// loopback hosts used in local development.
func normalizeURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("must be set (INSTATERM_URL)")
	}
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("must be an absolute URL")
	}
	if parsed.Scheme != "https" && !(parsed.Scheme == "http" && isLoopback(parsed.Hostname())) {
		return "", errors.New("only https is allowed")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
