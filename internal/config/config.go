// Package config provides configuration loading for the rdfc CLI and service.
package config

import (
	"crypto"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	ld "github.com/piprate/json-gold/ld"
	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/rdf-canon/rdf"
)

// Config represents the complete rdfc configuration
type Config struct {
	Canon  CanonConfig  `yaml:"canon"`
	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
	JSONLD JSONLDConfig `yaml:"jsonld"`
}

// CanonConfig configures canonicalization runs
type CanonConfig struct {
	// Algorithm is URDNA2015 (default), RDFC-1.0 or URGNA2012
	Algorithm string `yaml:"algorithm"`
	// Hash overrides the digest ("SHA256" or "SHA384"); empty uses the algorithm default
	Hash string `yaml:"hash"`
	// MaxPermutations bounds permutations per run (0 = library default, negative = unlimited)
	MaxPermutations int64 `yaml:"max_permutations"`
	// MaxNDegreeCalls bounds N-degree hash calls per run
	MaxNDegreeCalls int64 `yaml:"max_ndegree_calls"`
	// Timeout bounds the wall time of one run (0 = none)
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP service
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CacheConfig configures the canonical result cache
type CacheConfig struct {
	// RedisURL enables the Redis cache (empty = no cache)
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// JSONLDConfig configures JSON-LD input handling
type JSONLDConfig struct {
	// Contexts maps context URLs to local files served without network access
	Contexts map[string]string `yaml:"contexts"`
	// AllowRemote fetches unknown contexts over HTTP
	AllowRemote bool `yaml:"allow_remote"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Canon: CanonConfig{
			Algorithm: string(rdf.AlgorithmURDNA2015),
			Timeout:   30 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 4 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := rdf.ParseAlgorithm(c.Canon.Algorithm); err != nil {
		return fmt.Errorf("canon.algorithm: %w", err)
	}
	if _, err := c.hash(); err != nil {
		return err
	}
	if c.Canon.Timeout < 0 {
		return fmt.Errorf("canon.timeout must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

func (c *Config) hash() (crypto.Hash, error) {
	switch strings.ToUpper(strings.ReplaceAll(c.Canon.Hash, "-", "")) {
	case "":
		return 0, nil
	case "SHA1":
		return crypto.SHA1, nil
	case "SHA256":
		return crypto.SHA256, nil
	case "SHA384":
		return crypto.SHA384, nil
	default:
		return 0, fmt.Errorf("canon.hash: unknown hash %q", c.Canon.Hash)
	}
}

// CanonOptions translates the canon section into library options.
func (c *Config) CanonOptions() ([]rdf.CanonOption, error) {
	algorithm, err := rdf.ParseAlgorithm(c.Canon.Algorithm)
	if err != nil {
		return nil, err
	}
	hash, err := c.hash()
	if err != nil {
		return nil, err
	}
	opts := []rdf.CanonOption{
		rdf.OptAlgorithm(algorithm),
		rdf.OptMaxPermutations(c.Canon.MaxPermutations),
		rdf.OptMaxNDegreeCalls(c.Canon.MaxNDegreeCalls),
	}
	if hash != 0 {
		opts = append(opts, rdf.OptHash(hash))
	}
	return opts, nil
}

// ContextLoader builds the JSON-LD document loader described by the jsonld section.
// Relative context paths are resolved against baseDir.
func (c *Config) ContextLoader(baseDir string) (ld.DocumentLoader, error) {
	contexts := make(map[string][]byte, len(c.JSONLD.Contexts))
	for url, path := range c.JSONLD.Contexts {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read context %s: %w", url, err)
		}
		contexts[url] = data
	}
	var client *http.Client
	if c.JSONLD.AllowRemote {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return rdf.NewContextLoader(contexts, c.JSONLD.AllowRemote, client)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Canon.Algorithm != "" {
		c.Canon.Algorithm = other.Canon.Algorithm
	}
	if other.Canon.Hash != "" {
		c.Canon.Hash = other.Canon.Hash
	}
	if other.Canon.MaxPermutations != 0 {
		c.Canon.MaxPermutations = other.Canon.MaxPermutations
	}
	if other.Canon.MaxNDegreeCalls != 0 {
		c.Canon.MaxNDegreeCalls = other.Canon.MaxNDegreeCalls
	}
	if other.Canon.Timeout != 0 {
		c.Canon.Timeout = other.Canon.Timeout
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.MaxBodyBytes != 0 {
		c.Server.MaxBodyBytes = other.Server.MaxBodyBytes
	}

	if other.Cache.RedisURL != "" {
		c.Cache.RedisURL = other.Cache.RedisURL
	}
	if other.Cache.TTL != 0 {
		c.Cache.TTL = other.Cache.TTL
	}

	for url, path := range other.JSONLD.Contexts {
		if c.JSONLD.Contexts == nil {
			c.JSONLD.Contexts = make(map[string]string)
		}
		c.JSONLD.Contexts[url] = path
	}
	if other.JSONLD.AllowRemote {
		c.JSONLD.AllowRemote = true
	}
}
