package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/compiler"
)

// DefaultConfigFile is read from the working directory when --config is
// not given. It is optional.
const DefaultConfigFile = "docwhere.toml"

// Config is the TOML configuration:
//
//	schema = "types.yaml"
//	type = "Device"
//	root = "devices.data"
//	placeholder = "dollar"
//	log_level = "debug"
//
//	[limits]
//	max_depth = 3
//	max_or_branches = 5
type Config struct {
	Schema      string        `toml:"schema"`
	Type        string        `toml:"type"`
	Root        string        `toml:"root"`
	Placeholder string        `toml:"placeholder"`
	FieldNames  string        `toml:"field_names"`
	LogLevel    string        `toml:"log_level"`
	Limits      *LimitsConfig `toml:"limits"`
}

type LimitsConfig struct {
	MaxDepth            int `toml:"max_depth"`
	MaxTotalFields      int `toml:"max_total_fields"`
	MaxLogicalOperators int `toml:"max_logical_operators"`
	MaxLogicalDepth     int `toml:"max_logical_depth"`
	MaxOrBranches       int `toml:"max_or_branches"`
}

func defaultConfig() *Config {
	return &Config{Root: "data", Placeholder: "dollar", LogLevel: "warn"}
}

// LoadConfig reads path over the defaults. A missing default file is not
// an error; a missing explicit one is.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("config %s has unknown keys: %v", path, undecoded)
	}
	return cfg, nil
}

func (c *Config) placeholder() (compiler.Placeholder, error) {
	switch strings.ToLower(c.Placeholder) {
	case "", "dollar":
		return compiler.Dollar, nil
	case "question":
		return compiler.Question, nil
	}
	return 0, errors.Errorf("unknown placeholder %q, want dollar or question", c.Placeholder)
}

func (c *Config) limits() *docwhere.ComplexityLimits {
	if c.Limits == nil {
		return nil
	}
	return &docwhere.ComplexityLimits{
		MaxDepth:            c.Limits.MaxDepth,
		MaxTotalFields:      c.Limits.MaxTotalFields,
		MaxLogicalOperators: c.Limits.MaxLogicalOperators,
		MaxLogicalDepth:     c.Limits.MaxLogicalDepth,
		MaxOrBranches:       c.Limits.MaxOrBranches,
	}
}

func (c *Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return level, nil
}
