package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file"`
	LogFormat       string `yaml:"log_format"`
	MaxMetafileSize int64  `yaml:"max_metafile_size"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "error",
		LogFormat:       "json",
		MaxMetafileSize: 10 << 20,
	}
}

// ReadConfigFromFile loads path on top of Default. An empty path yields the defaults.
func ReadConfigFromFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	if c.MaxMetafileSize <= 0 {
		return fmt.Errorf("config: max_metafile_size must be positive, got %d", c.MaxMetafileSize)
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return level, fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger builds the slog logger described by c, writing to w.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}
