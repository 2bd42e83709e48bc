// Package indicator provides streaming technical indicators over sample data.
//
// Every indicator implements the Indicator interface: it ingests one sample at
// a time, keeps only the state it needs, and exposes its current value and
// readiness. Primitive indicators (moving averages, standard deviation,
// constants) and derived ones (Combinator, Bollinger) share the interface, so
// any indicator can feed any combinator.
package indicator

import (
	"errors"
	"fmt"

	"bandstream/internal/model"
)

var (
	// ErrNotReady is returned when a value is read before enough samples arrived.
	ErrNotReady = errors.New("indicator not ready")

	// ErrDivisionByZero is returned when a quotient's denominator is exactly zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidConfig is returned by constructors for unusable parameters.
	ErrInvalidConfig = errors.New("invalid indicator configuration")
)

// Indicator is the interface for all streaming indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA_20", "(SMA_20+STD_20)").
	Name() string

	// Update feeds the next sample and recalculates.
	Update(s model.Sample) error

	// Value returns the current value. Meaningless until Ready is true.
	Value() float64

	// Ready returns true once enough samples have been seen.
	// Readiness never reverts.
	Ready() bool
}

// Current returns ind's value, or ErrNotReady if it is not ready yet.
func Current(ind Indicator) (float64, error) {
	if !ind.Ready() {
		return 0, fmt.Errorf("%s: %w", ind.Name(), ErrNotReady)
	}
	return ind.Value(), nil
}

func invalidPeriod(kind string, period int) error {
	return fmt.Errorf("%s period=%d must be positive: %w", kind, period, ErrInvalidConfig)
}
