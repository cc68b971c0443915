package jsonapi

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration read from YAML.
type Config struct {
	Addr      string          `yaml:"addr"`
	Debug     bool            `yaml:"debug"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	// BodyLimit is the maximum request body size in bytes. Zero disables the
	// limit.
	BodyLimit int64 `yaml:"body_limit"`
}

// LogConfig configures NewLogger.
type LogConfig struct {
	// Level is a zap level name. Default: info.
	Level string `yaml:"level"`
	// Format is "json" or "console". Default: json.
	Format string        `yaml:"format"`
	Stdout bool          `yaml:"stdout"`
	File   FileLogConfig `yaml:"file"`
}

// FileLogConfig configures rotated file output.
type FileLogConfig struct {
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxDays    int    `yaml:"max_days"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Stdout: true,
		},
	}
}

// ParseConfig decodes YAML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if cfg.BodyLimit < 0 {
		return Config{}, errors.Newf("body_limit must not be negative, got %d", cfg.BodyLimit)
	}
	if cfg.RateLimit.Rate < 0 || cfg.RateLimit.Burst < 0 {
		return Config{}, errors.New("rate_limit rate and burst must not be negative")
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}
