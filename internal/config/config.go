// Package config loads the cascade.yaml file used by the CLI and decodes
// loosely typed parameter maps (HTTP bodies, MCP arguments) into domain.Parameters.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "cascade.yaml"

// Config is the CLI configuration.
type Config struct {
	Log      LogConfig         `mapstructure:"log"`
	Source   SourceConfig      `mapstructure:"source"`
	Store    StoreConfig       `mapstructure:"store"`
	Server   ServerConfig      `mapstructure:"server"`
	Defaults domain.Parameters `mapstructure:"defaults"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourceConfig selects the reaction dataset. Driver is "sqlite" or "yaml".
type SourceConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// StoreConfig selects where finished results are kept. Driver is "memory" or "redis".
type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Source:   SourceConfig{Driver: "sqlite", Path: "parkhomov.db"},
		Store:    StoreConfig{Driver: "memory", Redis: RedisConfig{Addr: "localhost:6379"}},
		Server:   ServerConfig{Addr: ":8080"},
		Defaults: domain.DefaultParameters(),
	}
}

// Load reads path on top of Default. A missing DefaultFile is not an error;
// a missing explicit path is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a YAML document on top of Default.
func Parse(r io.Reader) (Config, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DecodeParameters overlays raw onto base. Unknown keys are rejected, numbers
// may arrive as strings and fuel may be a list or a comma separated string.
// Decoding problems are reported as *domain.ParameterError.
func DecodeParameters(raw map[string]any, base domain.Parameters) (domain.Parameters, error) {
	out := base.Clone()
	if _, ok := raw["fuel"]; ok {
		// mapstructure decodes slices element-wise into the existing backing array.
		out.Fuel = nil
	}
	if err := decode(raw, &out); err != nil {
		return domain.Parameters{}, &domain.ParameterError{Problems: []string{err.Error()}}
	}
	return out, nil
}

func decode(input any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			NuclideHook(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
