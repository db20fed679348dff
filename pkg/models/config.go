package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel        string         `yaml:"log_level" mapstructure:"log_level"`
	LogFormat       string         `yaml:"log_format" mapstructure:"log_format"`
	LogFile         string         `yaml:"log_file" mapstructure:"log_file"`
	Quiet           bool           `yaml:"quiet" mapstructure:"quiet"`
	OutputDirectory string         `yaml:"output_directory" mapstructure:"output_directory"`
	Generate        GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Encoder         EncoderConfig  `yaml:"encoder" mapstructure:"encoder"`
	Metrics         MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

type GenerateConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"`
	// BatchRatio is the number of batches an intensive run aims for when
	// BatchSize is 0.
	BatchRatio     int   `yaml:"batch_ratio" mapstructure:"batch_ratio"`
	BatchSize      int   `yaml:"batch_size" mapstructure:"batch_size"`
	WarnThreshold  int64 `yaml:"warn_threshold" mapstructure:"warn_threshold"`
	AssumeYes      bool  `yaml:"assume_yes" mapstructure:"assume_yes"`
	FreezeSuffix   bool  `yaml:"freeze_suffix" mapstructure:"freeze_suffix"`
	SkeletonFilter bool  `yaml:"skeleton_filter" mapstructure:"skeleton_filter"`
}

type EncoderConfig struct {
	Profile string `yaml:"profile" mapstructure:"profile"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		OutputDirectory: ".",
		Generate: GenerateConfig{
			Mode:          string(ModeLazy),
			BatchRatio:    100,
			WarnThreshold: 1_000_000,
		},
		Encoder: EncoderConfig{Profile: "registration"},
	}
}

func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		errs = append(errs, "log_level must be one of trace|debug|info|warn|error|fatal|panic")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, "log_format must be text or json")
	}
	if _, err := ParseMode(c.Generate.Mode); err != nil {
		errs = append(errs, "generate.mode must be lazy or intensive")
	}
	if c.Generate.BatchRatio <= 0 {
		errs = append(errs, "generate.batch_ratio must be > 0")
	}
	if c.Generate.BatchSize < 0 {
		errs = append(errs, "generate.batch_size must be >= 0")
	}
	if c.Generate.WarnThreshold < 0 {
		errs = append(errs, "generate.warn_threshold must be >= 0")
	}
	switch c.Encoder.Profile {
	case "lookup", "registration":
	default:
		errs = append(errs, fmt.Sprintf("encoder.profile %q is not supported", c.Encoder.Profile))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomically write config: %w", err)
	}
	return nil
}

func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return c.Validate()
}
