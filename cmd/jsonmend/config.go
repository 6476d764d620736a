package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/flatten"
	"github.com/reoring/jsonmend/observe/slogobs"
)

// Config is the CLI configuration file. ${VAR} references are expanded from
// the environment before parsing.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Repair  RepairConfig  `yaml:"repair"`
	Flatten FlattenConfig `yaml:"flatten"`
	Batch   BatchConfig   `yaml:"batch"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error; empty reads the environment
	Lang  string `yaml:"lang"`  // en or ja
}

type RepairConfig struct {
	Parser              string `yaml:"parser"`      // encoding/json, go-json or encoding/json/v2
	MaxDepth            int    `yaml:"max_depth"`   // attempts per repair
	NumberMode          string `yaml:"number_mode"` // float64 or json.Number
	LiteralFallback     *bool  `yaml:"literal_fallback"`
	RejectDuplicateKeys bool   `yaml:"reject_duplicate_keys"`
	MaxNesting          int    `yaml:"max_nesting"`
	MaxBytes            int64  `yaml:"max_bytes"`
}

type FlattenConfig struct {
	Root        string `yaml:"root"`
	KeySep      string `yaml:"key_sep"`
	IndexFormat string `yaml:"index_format"`
	KeepArrays  bool   `yaml:"keep_arrays"`
	NoIndex     bool   `yaml:"no_index"`
}

type BatchConfig struct {
	Size int `yaml:"size"`
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() *Config {
	return &Config{
		Log:     LogConfig{Lang: "en"},
		Repair:  RepairConfig{MaxDepth: jsonmend.MaxDepth, NumberMode: "float64"},
		Flatten: FlattenConfig{KeySep: ".", IndexFormat: "[%d]"},
		Batch:   BatchConfig{Size: 100},
	}
}

// LoadConfig reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.numberMode(); err != nil {
		return err
	}
	if _, err := jsonmend.NewParser(c.Repair.Parser, jsonmend.ParseOptions{}); err != nil {
		return err
	}
	if c.Repair.MaxDepth < 1 {
		return fmt.Errorf("repair.max_depth must be positive, got %d", c.Repair.MaxDepth)
	}
	if c.Batch.Size < 1 {
		return fmt.Errorf("batch.size must be positive, got %d", c.Batch.Size)
	}
	if c.Log.Level != "" {
		if _, err := slogobs.ParseLevel(c.Log.Level); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) numberMode() (jsonmend.NumberMode, error) {
	switch strings.ToLower(c.Repair.NumberMode) {
	case "", "float64":
		return jsonmend.NumberFloat64, nil
	case "json.number", "number":
		return jsonmend.NumberJSONNumber, nil
	}
	return 0, fmt.Errorf("unknown repair.number_mode %q", c.Repair.NumberMode)
}

// level resolves the log level: -debug, then log.level, then the environment.
func (c *Config) level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	if c.Log.Level != "" {
		if l, err := slogobs.ParseLevel(c.Log.Level); err == nil {
			return l
		}
	}
	return slogobs.LevelFromEnv()
}

// Repairer builds the Repairer described by the repair section.
func (c *Config) Repairer(obs jsonmend.Observer) (*jsonmend.Repairer, error) {
	mode, err := c.numberMode()
	if err != nil {
		return nil, err
	}
	po := jsonmend.ParseOptions{
		NumberMode:          mode,
		RejectDuplicateKeys: c.Repair.RejectDuplicateKeys,
		MaxNesting:          c.Repair.MaxNesting,
		MaxBytes:            c.Repair.MaxBytes,
	}
	p, err := jsonmend.NewParser(c.Repair.Parser, po)
	if err != nil {
		return nil, err
	}
	opts := []jsonmend.Option{
		jsonmend.WithParser(p),
		jsonmend.WithParseOptions(po),
		jsonmend.WithMaxDepth(c.Repair.MaxDepth),
		jsonmend.WithObserver(obs),
	}
	if c.Repair.LiteralFallback != nil {
		opts = append(opts, jsonmend.WithLiteralFallback(*c.Repair.LiteralFallback))
	}
	return jsonmend.New(opts...), nil
}

func (c *Config) flattener() func(any) any {
	return flatten.New(flatten.Options{
		Root:          c.Flatten.Root,
		KeySep:        c.Flatten.KeySep,
		IndexFormat:   c.Flatten.IndexFormat,
		FlattenArrays: !c.Flatten.KeepArrays,
		NoIndex:       c.Flatten.NoIndex,
	})
}
