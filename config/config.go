package config

import (
	"os"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/sharedmem"
)

// Prefix is the environment variable prefix. Keys are derived from field
// names, e.g. Block.Size is HOSTCALL_BLOCK_SIZE.
const Prefix = "HOSTCALL"

// Block size bounds. The upper bound is the largest wazero region.
const (
	MinBlockSize uint32 = abi.HeaderSize + 64
	MaxBlockSize uint32 = sharedmem.MaxPages * sharedmem.PageSize
)

// Backings and transport modes.
const (
	BackingSlice  = "slice"
	BackingWazero = "wazero"

	ModeDirect  = "direct"
	ModeChannel = "channel"
)

// Config holds all configuration.
type Config struct {
	Block     BlockConfig     `yaml:"block"`
	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// BlockConfig describes the shared block.
type BlockConfig struct {
	Size    uint32 `yaml:"size"`
	Backing string `yaml:"backing"`
}

// TransportConfig selects how requests reach the host.
type TransportConfig struct {
	Mode    string        `yaml:"mode"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Block: BlockConfig{
			Size:    sharedmem.PageSize,
			Backing: BackingSlice,
		},
		Transport: TransportConfig{
			Mode:    ModeDirect,
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
	}
}

// Load starts from Default, overlays the YAML file at path if path is not
// empty, then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Config("read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Config("parse config file", err)
		}
	}

	// no default tags: unset variables leave the file's values alone
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, errors.Config("failed to load config from environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Block.Size < MinBlockSize || c.Block.Size > MaxBlockSize {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.Block.Size).
			Detail("block size %d outside [%d, %d]", c.Block.Size, MinBlockSize, MaxBlockSize).
			Build()
	}
	if err := oneOf("block backing", c.Block.Backing, BackingSlice, BackingWazero); err != nil {
		return err
	}
	if err := oneOf("transport mode", c.Transport.Mode, ModeDirect, ModeChannel); err != nil {
		return err
	}
	if c.Transport.Timeout < 0 {
		return errors.Config("negative transport timeout", nil)
	}
	if err := oneOf("log format", c.Log.Format, "json", "console"); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.Config("invalid log level", err)
	}
	return nil
}

func oneOf(what, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Value(v).
		Detail("unknown %s %q (want one of %v)", what, v, allowed).
		Build()
}
