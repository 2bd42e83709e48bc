// Package config loads the band engine configuration from an optional YAML
// file and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"bandstream/internal/indicator"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Service      string                 `yaml:"service" default:"bandengine" validate:"required"`
	LogLevel     string                 `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
	HTTPAddr     string                 `yaml:"http_addr" default:":9095" validate:"required"`
	SampleBuffer int                    `yaml:"sample_buffer" default:"5000" validate:"gte=1"`
	Bands        []indicator.BandConfig `yaml:"bands" validate:"required,min=1,dive"`
}

// Load reads BAND_CONFIG_FILE (if set), applies environment overrides and
// defaults, and validates the result.
func Load() (*Config, error) {
	var data []byte
	if path := getEnv("BAND_CONFIG_FILE", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		data = b
	}

	c, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(c); err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML, applies defaults and validates, without looking at the
// environment.
func Parse(data []byte) (*Config, error) {
	c, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(data []byte) (*Config, error) {
	var c Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return &c, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		c.Service = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("SAMPLE_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SAMPLE_BUFFER=%q: %w", v, err)
		}
		c.SampleBuffer = n
	}
	if v := os.Getenv("BAND_SPECS"); v != "" {
		bands, err := ParseBandSpecs(v)
		if err != nil {
			return fmt.Errorf("BAND_SPECS: %w", err)
		}
		c.Bands = bands
	}
	return nil
}

// finalize fills defaults and validates c in place.
func (c *Config) finalize() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if len(c.Bands) == 0 {
		c.Bands = DefaultBands()
	}
	if err := NormalizeBands(c.Bands); err != nil {
		return err
	}
	return validate.Struct(c)
}

// NormalizeBands validates every band and the set as a whole, then fills
// the optional fields (ma_kind) from their default tags. ma_period and k are
// required: a zero is rejected, never defaulted. Used for both the startup
// config and runtime reloads.
func NormalizeBands(bands []indicator.BandConfig) error {
	for i := range bands {
		if err := validate.Struct(&bands[i]); err != nil {
			return fmt.Errorf("band %d: %w: %w", i, indicator.ErrInvalidConfig, err)
		}
		if err := defaults.Set(&bands[i]); err != nil {
			return fmt.Errorf("band %d defaults: %w", i, err)
		}
	}
	return indicator.ValidateConfigs(bands)
}

// DefaultBands is the classic 20-period, 2-sigma Bollinger Band.
func DefaultBands() []indicator.BandConfig {
	return []indicator.BandConfig{
		{MAPeriod: 20, K: 2, MAKind: indicator.MASimple},
	}
}

// ParseBandSpecs parses "MA[/STD]:K[:KIND],..." into band configs.
// Example: "20:2,50/20:2.5:ema".
func ParseBandSpecs(s string) ([]indicator.BandConfig, error) {
	var bands []indicator.BandConfig
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid band spec %q: want MA[/STD]:K[:KIND]", part)
		}

		var b indicator.BandConfig
		periods := strings.SplitN(fields[0], "/", 2)
		ma, err := strconv.Atoi(strings.TrimSpace(periods[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid MA period in %q: %w", part, err)
		}
		if ma <= 0 {
			return nil, fmt.Errorf("MA period in %q must be positive: %w", part, indicator.ErrInvalidConfig)
		}
		b.MAPeriod = ma
		if len(periods) == 2 {
			std, err := strconv.Atoi(strings.TrimSpace(periods[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid STD period in %q: %w", part, err)
			}
			if std <= 0 {
				return nil, fmt.Errorf("STD period in %q must be positive: %w", part, indicator.ErrInvalidConfig)
			}
			b.StdPeriod = std
		}
		k, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid k in %q: %w", part, err)
		}
		if k == 0 {
			return nil, fmt.Errorf("k in %q must be non-zero: %w", part, indicator.ErrInvalidConfig)
		}
		b.K = k
		if len(fields) == 3 {
			kind, err := indicator.ParseMAKind(fields[2])
			if err != nil {
				return nil, err
			}
			b.MAKind = kind
		}
		bands = append(bands, b)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("no band specs in %q", s)
	}
	return bands, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
