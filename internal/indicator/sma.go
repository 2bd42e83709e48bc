package indicator

import (
	"strconv"

	"bandstream/internal/model"
	"bandstream/internal/ringbuf"
)

// SMA calculates Simple Moving Average over a rolling window.
// Keeps a running sum so each update is O(1).
type SMA struct {
	period  int
	win     *ringbuf.Window
	count   int // total values received
	sum     float64
	current float64
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) (*SMA, error) {
	if period <= 0 {
		return nil, invalidPeriod("SMA", period)
	}
	return &SMA{
		period: period,
		win:    ringbuf.New(period),
	}, nil
}

func (s *SMA) Name() string { return "SMA_" + strconv.Itoa(s.period) }

func (s *SMA) Update(sample model.Sample) error {
	if old, evicted := s.win.Push(sample.Value); evicted {
		s.sum -= old
	}
	s.sum += sample.Value
	s.count++

	// Partial average until the window fills; only meaningful once Ready.
	s.current = s.sum / float64(s.win.Len())
	return nil
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }
