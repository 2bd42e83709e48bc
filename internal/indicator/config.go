package indicator

import (
	"fmt"
	"math"
	"strconv"
)

// BandConfig describes one Bollinger graph computed for every stream.
type BandConfig struct {
	Name      string  `json:"name,omitempty" yaml:"name"`
	MAPeriod  int     `json:"ma_period" yaml:"ma_period" validate:"required,gte=1"`
	StdPeriod int     `json:"std_period,omitempty" yaml:"std_period" validate:"gte=0"` // 0 = MAPeriod
	K         float64 `json:"k" yaml:"k" validate:"required"`
	MAKind    MAKind  `json:"ma_kind,omitempty" yaml:"ma_kind" default:"SMA"`
}

// Resolved returns c with the shorthand fields filled in: StdPeriod defaults
// to MAPeriod, MAKind to MASimple and Name to a generated "BOLL_..." name.
func (c BandConfig) Resolved() BandConfig {
	if c.StdPeriod == 0 {
		c.StdPeriod = c.MAPeriod
	}
	if c.MAKind == "" {
		c.MAKind = MASimple
	}
	if c.Name == "" {
		c.Name = bandName(c.MAPeriod, c.StdPeriod, c.K)
	}
	return c
}

// key identifies a config by everything that affects computed values.
func (c BandConfig) key() string {
	c = c.Resolved()
	return c.Name + "|" + strconv.Itoa(c.MAPeriod) + "|" + strconv.Itoa(c.StdPeriod) + "|" +
		strconv.FormatFloat(c.K, 'g', -1, 64) + "|" + string(c.MAKind)
}

// NewBollingerFromConfig builds the Bollinger graph a config describes.
func NewBollingerFromConfig(c BandConfig) (*Bollinger, error) {
	c = c.Resolved()
	return NewBollinger(c.Name, c.MAPeriod, c.StdPeriod, c.K, c.MAKind)
}

// UnmarshalText accepts any spelling ParseMAKind accepts.
func (k *MAKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMAKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ValidateConfigs checks a set of BandConfigs for errors.
func ValidateConfigs(configs []BandConfig) error {
	if len(configs) == 0 {
		return fmt.Errorf("no bands configured: %w", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(configs))
	for _, raw := range configs {
		c := raw.Resolved()
		if c.MAPeriod <= 0 {
			return invalidPeriod(c.Name+" MA", c.MAPeriod)
		}
		if c.StdPeriod <= 0 {
			return invalidPeriod(c.Name+" STD", c.StdPeriod)
		}
		if math.IsNaN(c.K) || math.IsInf(c.K, 0) {
			return fmt.Errorf("%s: k=%v must be finite: %w", c.Name, c.K, ErrInvalidConfig)
		}
		if _, err := ParseMAKind(string(c.MAKind)); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate band name %q: %w", c.Name, ErrInvalidConfig)
		}
		seen[c.Name] = true
	}
	return nil
}
