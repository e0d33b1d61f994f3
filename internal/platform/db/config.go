package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"
	defaultMongoURI   = "mongodb://localhost:27017/library"
	defaultMongoDB    = "library"
	defaultAddr       = ":8443"
	defaultTokenTTL   = 24 * time.Hour
)

// document store backends
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type MongoConfig struct {
	Store    string `yaml:"store"`
	URI      string `yaml:"uri"`
	URIFile  string `yaml:"uri_file"`
	Database string `yaml:"database"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Mongo       MongoConfig    `yaml:"mongo"`
	Auth        AuthConfig     `yaml:"auth"`
	Certificate Certs          `yaml:"certificate"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		return nil, fmt.Errorf("mode must be dev or release, got %q", cfg.Mode)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Mongo.Store == "" {
		c.Mongo.Store = StoreMongo
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = defaultMongoDB
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		c.Auth.JWTSecret = v
	}
}

// TLSEnabled reports whether both certificate paths are configured.
func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}

// ResolveMongoURI picks the connection string in priority order:
// MONGODB_URI, the configured uri, the first usable line of uri_file,
// then the local default.
func (c *Config) ResolveMongoURI() string {
	if v := strings.TrimSpace(os.Getenv("MONGODB_URI")); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Mongo.URI); v != "" {
		return v
	}
	if c.Mongo.URIFile != "" {
		if v := readURIFile(c.Mongo.URIFile); v != "" {
			return v
		}
	}
	return defaultMongoURI
}

func readURIFile(path string) string {
	buf, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}
