package indicator

import (
	"fmt"
	"math"
	"strconv"

	"bandstream/internal/model"
)

// Bollinger computes Bollinger Bands and the z-score of each sample against
// them. It owns its whole graph:
//
//	middle = MA(maPeriod)                 (kind selectable)
//	std    = StdDev(stdPeriod)
//	upper  = middle + std*k
//	lower  = middle - std*k
//	value  = (sample - middle) / std
//
// middle and std are ingested once per sample by Bollinger itself; the band
// combinators hold Shared views of them and only read.
type Bollinger struct {
	name      string
	maPeriod  int
	stdPeriod int
	k         float64
	kind      MAKind

	middle Indicator
	std    *StdDev
	upper  *Combinator
	lower  *Combinator

	zscore float64
	zErr   error
}

// NewBollinger creates Bollinger Bands with separate moving-average and
// standard-deviation periods. An empty name is replaced by a generated one.
func NewBollinger(name string, maPeriod, stdPeriod int, k float64, kind MAKind) (*Bollinger, error) {
	if maPeriod <= 0 {
		return nil, invalidPeriod("BOLL MA", maPeriod)
	}
	if stdPeriod <= 0 {
		return nil, invalidPeriod("BOLL STD", stdPeriod)
	}
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("BOLL k=%v must be finite: %w", k, ErrInvalidConfig)
	}
	if kind == "" {
		kind = MASimple
	}

	middle, err := NewMovingAverage(kind, maPeriod)
	if err != nil {
		return nil, err
	}
	std, err := NewStdDev(stdPeriod)
	if err != nil {
		return nil, err
	}

	upper, err := bandOf(middle, std, k, OpAdd)
	if err != nil {
		return nil, err
	}
	lower, err := bandOf(middle, std, k, OpSub)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = bandName(maPeriod, stdPeriod, k)
	}
	return &Bollinger{
		name:      name,
		maPeriod:  maPeriod,
		stdPeriod: stdPeriod,
		k:         k,
		kind:      kind,
		middle:    middle,
		std:       std,
		upper:     upper,
		lower:     lower,
		zErr:      fmt.Errorf("%s z-score: %w", name, ErrNotReady),
	}, nil
}

// NewBollingerPeriod creates Bollinger Bands using period for both the moving
// average and the standard deviation.
func NewBollingerPeriod(name string, period int, k float64, kind MAKind) (*Bollinger, error) {
	return NewBollinger(name, period, period, k, kind)
}

// bandOf builds middle <op> (std * k), with its own private product node.
func bandOf(middle Indicator, std *StdDev, k float64, op Op) (*Combinator, error) {
	width, err := NewCombinator(Shared(std), NewConstant(k), OpMul)
	if err != nil {
		return nil, err
	}
	return NewCombinator(Shared(middle), width, op)
}

func bandName(maPeriod, stdPeriod int, k float64) string {
	n := "BOLL_" + strconv.Itoa(maPeriod)
	if stdPeriod != maPeriod {
		n += "_" + strconv.Itoa(stdPeriod)
	}
	return n + "_" + strconv.FormatFloat(k, 'g', -1, 64)
}

func (b *Bollinger) Name() string { return b.name }

// Update ingests s into the standard deviation, the middle band, the upper
// band and the lower band, in that order, then computes the z-score from the
// freshly updated middle and std. When the bands are ready but std is zero it
// returns ErrDivisionByZero; the bands themselves are still updated.
func (b *Bollinger) Update(s model.Sample) error {
	if err := b.std.Update(s); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	if err := b.middle.Update(s); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	if err := b.upper.Update(s); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	if err := b.lower.Update(s); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}

	if !b.Ready() {
		return nil
	}

	sd := b.std.Value()
	if sd == 0 {
		b.zscore = 0
		b.zErr = fmt.Errorf("%s z-score: %w", b.name, ErrDivisionByZero)
		return b.zErr
	}
	b.zscore = (s.Value - b.middle.Value()) / sd
	b.zErr = nil
	return nil
}

// Value returns the z-score of the latest sample, or 0 when the latest
// z-score failed. Use ZScore to tell a failure from a genuine 0.
func (b *Bollinger) Value() float64 { return b.zscore }

// Ready reports whether the middle, upper and lower bands are all ready.
// The standard deviation is covered through the bands.
func (b *Bollinger) Ready() bool {
	return b.middle.Ready() && b.upper.Ready() && b.lower.Ready()
}

// ZScore returns the z-score of the latest sample, ErrNotReady before the
// bands are ready, or ErrDivisionByZero if the latest std was zero.
func (b *Bollinger) ZScore() (float64, error) {
	if b.zErr != nil {
		return 0, b.zErr
	}
	return b.zscore, nil
}

func (b *Bollinger) Middle() (float64, bool) { return b.middle.Value(), b.middle.Ready() }
func (b *Bollinger) Upper() (float64, bool)  { return b.upper.Value(), b.upper.Ready() }
func (b *Bollinger) Lower() (float64, bool)  { return b.lower.Value(), b.lower.Ready() }
func (b *Bollinger) StdDev() (float64, bool) { return b.std.Value(), b.std.Ready() }

// Config returns the parameters the bands were built with.
func (b *Bollinger) Config() BandConfig {
	return BandConfig{
		Name:      b.name,
		MAPeriod:  b.maPeriod,
		StdPeriod: b.stdPeriod,
		K:         b.k,
		MAKind:    b.kind,
	}
}
