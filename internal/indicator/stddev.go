package indicator

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bandstream/internal/model"
	"bandstream/internal/ringbuf"
)

// StdDev calculates the rolling population standard deviation (divide by the
// window count) over the last period samples. The variance is recomputed with
// a two-pass pass over the window on every update rather than maintained
// incrementally, so it never accumulates drift.
type StdDev struct {
	period  int
	win     *ringbuf.Window
	count   int
	current float64
}

// NewStdDev creates a new StdDev indicator with the given period.
func NewStdDev(period int) (*StdDev, error) {
	if period <= 0 {
		return nil, invalidPeriod("STD", period)
	}
	return &StdDev{
		period: period,
		win:    ringbuf.New(period),
	}, nil
}

func (s *StdDev) Name() string { return "STD_" + strconv.Itoa(s.period) }

func (s *StdDev) Update(sample model.Sample) error {
	s.win.Push(sample.Value)
	s.count++

	vals := s.win.Values()
	// A flat window is exactly zero. The two-pass mean of equal floats can be
	// off by an ulp, which would otherwise leave a tiny non-zero deviation.
	if floats.Min(vals) == floats.Max(vals) {
		s.current = 0
		return nil
	}

	variance := stat.PopVariance(vals, nil)
	if variance < 0 {
		variance = 0
	}
	s.current = math.Sqrt(variance)
	return nil
}

func (s *StdDev) Value() float64 { return s.current }
func (s *StdDev) Ready() bool    { return s.count >= s.period }
