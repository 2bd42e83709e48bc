package indicator

import (
	"fmt"
	"strings"
)

// MAKind selects a moving-average variant.
type MAKind string

const (
	MASimple      MAKind = "SMA"
	MAExponential MAKind = "EMA"
	MASmoothed    MAKind = "SMMA"
	MAWeighted    MAKind = "WMA"
)

// ParseMAKind maps a case-insensitive name to an MAKind. An empty string
// selects MASimple.
func ParseMAKind(s string) (MAKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SMA", "SIMPLE":
		return MASimple, nil
	case "EMA", "EXPONENTIAL":
		return MAExponential, nil
	case "SMMA", "SMOOTHED", "RMA":
		return MASmoothed, nil
	case "WMA", "WEIGHTED":
		return MAWeighted, nil
	}
	return "", fmt.Errorf("unknown moving average kind %q: %w", s, ErrInvalidConfig)
}

// NewMovingAverage creates the moving average of the given kind.
func NewMovingAverage(kind MAKind, period int) (Indicator, error) {
	var (
		ma  Indicator
		err error
	)
	switch kind {
	case MASimple, "":
		ma, err = NewSMA(period)
	case MAExponential:
		ma, err = NewEMA(period)
	case MASmoothed:
		ma, err = NewSMMA(period)
	case MAWeighted:
		ma, err = NewWMA(period)
	default:
		return nil, fmt.Errorf("unknown moving average kind %q: %w", kind, ErrInvalidConfig)
	}
	if err != nil {
		return nil, err
	}
	return ma, nil
}
