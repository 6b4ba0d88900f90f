// Package config loads API server settings from an optional YAML file,
// a .env file and the process environment, in that order of precedence
// (environment wins).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the API server reads at startup.
type Config struct {
	MongoURI      string            `yaml:"mongodb_uri"`
	MongoDatabase string            `yaml:"mongodb_database"`
	JWTSecret     string            `yaml:"jwt_secret"`
	JWTKeys       map[string]string `yaml:"jwt_keys"`
	JWTActiveKid  string            `yaml:"jwt_active_kid"`
	TokenTTL      time.Duration     `yaml:"token_ttl"`

	Port          string `yaml:"port"`
	HTTPPort      string `yaml:"http_port"`
	PublicBaseURL string `yaml:"public_base_url"`
	RateLimitRPM  int    `yaml:"rate_limit_rpm"`

	TLSCert    string `yaml:"tls_cert"`
	TLSKey     string `yaml:"tls_key"`
	RequireTLS bool   `yaml:"require_tls"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	NatsURL       string `yaml:"nats_url"`

	LogLevel       string `yaml:"log_level"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		MongoDatabase:  "chat_db",
		TokenTTL:       24 * time.Hour,
		Port:           "50051",
		HTTPPort:       "8080",
		PublicBaseURL:  "http://localhost:8080",
		RateLimitRPM:   10,
		LogLevel:       "info",
		MaxUploadBytes: 5 << 20,
	}
}

// Load builds a Config. A missing .env file is not an error.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, errors.Wrap(err, "load .env")
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString("MONGODB_URI", &c.MongoURI)
	setString("MONGODB_DATABASE", &c.MongoDatabase)
	setString("JWT_SECRET", &c.JWTSecret)
	setString("JWT_ACTIVE_KID", &c.JWTActiveKid)
	setString("PORT", &c.Port)
	setString("HTTP_PORT", &c.HTTPPort)
	setString("PUBLIC_BASE_URL", &c.PublicBaseURL)
	setString("TLS_CERT", &c.TLSCert)
	setString("TLS_KEY", &c.TLSKey)
	setString("REDIS_ADDR", &c.RedisAddr)
	setString("REDIS_PASSWORD", &c.RedisPassword)
	setString("NATS_URL", &c.NatsURL)
	setString("LOG_LEVEL", &c.LogLevel)

	if v := getenv("JWT_KEYS"); v != "" {
		keys, err := ParseKeys(v)
		if err != nil {
			return err
		}
		c.JWTKeys = keys
	}
	if v := getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "TOKEN_TTL")
		}
		c.TokenTTL = d
	}
	// RATE_LIMIT_RPM keeps the previous value when it is not a positive number.
	if v := getenv("RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimitRPM = n
		}
	}
	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "REDIS_DB")
		}
		c.RedisDB = n
	}
	if v := getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return errors.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		c.MaxUploadBytes = n
	}
	if v := getenv("REQUIRE_TLS"); v != "" {
		c.RequireTLS = v == "true"
	}
	return nil
}

// ParseKeys parses a "kid:secret,kid2:secret2" list.
func ParseKeys(s string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(s, ",") {
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errors.Errorf("invalid JWT_KEYS entry: %s", p)
		}
		keys[parts[0]] = parts[1]
	}
	return keys, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if len(c.JWTKeys) == 0 && c.JWTSecret == "" {
		return errors.New("either JWT_SECRET or JWT_KEYS must be set")
	}
	if len(c.JWTKeys) > 0 && c.JWTActiveKid != "" {
		if _, ok := c.JWTKeys[c.JWTActiveKid]; !ok {
			return errors.Errorf("JWT_ACTIVE_KID %q not present in JWT_KEYS", c.JWTActiveKid)
		}
	}
	if c.RequireTLS && (c.TLSCert == "" || c.TLSKey == "") {
		return errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
