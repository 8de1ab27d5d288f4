// Package config loads ego project settings from ego.toml or ego.yaml and
// applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format represents the configuration file format.
type Format int

const (
	// FormatTOML represents TOML format (default).
	FormatTOML Format = iota
	// FormatYAML represents YAML format.
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FileNames are the project files Discover looks for, in order.
var FileNames = []string{"ego.toml", "ego.yaml", "ego.yml"}

// Serve holds the host surface settings.
type Serve struct {
	Host     string `toml:"host" yaml:"host"`
	Port     int    `toml:"port" yaml:"port"`
	GRPCPort int    `toml:"grpc_port" yaml:"grpc_port"`
}

// Config holds the settings for running ego programs.
type Config struct {
	Name         string `toml:"name,omitempty" yaml:"name,omitempty"`
	Entry        string `toml:"entry" yaml:"entry"`
	MaxSteps     int    `toml:"max_steps" yaml:"max_steps"`
	MaxCallDepth int    `toml:"max_call_depth" yaml:"max_call_depth"`
	Serve        Serve  `toml:"serve" yaml:"serve"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Entry:        "main.ego",
		MaxSteps:     100_000,
		MaxCallDepth: 64,
		Serve: Serve{
			Host:     "0.0.0.0",
			Port:     8787,
			GRPCPort: 8788,
		},
	}
}

// Load reads a config file, detecting the format from its extension.
// Settings absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(content, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes content on top of the defaults.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover loads the first project file found in dir. When there is none it
// returns the defaults and an empty path.
func Discover(dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("checking %s: %w", path, err)
		}
		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// detectFormat determines the configuration format from file extension.
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ApplyEnv overrides settings from EGO_HOST, EGO_PORT, EGO_GRPC_PORT,
// EGO_MAX_STEPS and EGO_MAX_CALL_DEPTH.
func (c *Config) ApplyEnv() error {
	c.Serve.Host = envOrDefault("EGO_HOST", c.Serve.Host)

	ints := []struct {
		key string
		dst *int
	}{
		{"EGO_PORT", &c.Serve.Port},
		{"EGO_GRPC_PORT", &c.Serve.GRPCPort},
		{"EGO_MAX_STEPS", &c.MaxSteps},
		{"EGO_MAX_CALL_DEPTH", &c.MaxCallDepth},
	}
	for _, v := range ints {
		raw := envOrDefault(v.key, "")
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", v.key, raw)
		}
		*v.dst = n
	}
	return c.Validate()
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Entry == "" {
		return fmt.Errorf("entry must not be empty")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("max_call_depth must be positive, got %d", c.MaxCallDepth)
	}
	for name, port := range map[string]int{"port": c.Serve.Port, "grpc_port": c.Serve.GRPCPort} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("serve.%s out of range: %d", name, port)
		}
	}
	return nil
}

// EncodeTOML writes the settings as an ego.toml document.
func (c *Config) EncodeTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// EncodeYAML writes the settings as an ego.yaml document.
func (c *Config) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
