package indicator

import (
	"strconv"

	"bandstream/internal/model"
)

// SMMA calculates Smoothed Moving Average (Wilder-style smoothing).
// First value is SMA(period), then SMMA = (prev*(period-1) + price) / period.
type SMMA struct {
	period  int
	count   int
	sum     float64
	current float64
}

// NewSMMA creates a new SMMA indicator with the given period.
func NewSMMA(period int) (*SMMA, error) {
	if period <= 0 {
		return nil, invalidPeriod("SMMA", period)
	}
	return &SMMA{period: period}, nil
}

func (s *SMMA) Name() string { return "SMMA_" + strconv.Itoa(s.period) }

func (s *SMMA) Update(sample model.Sample) error {
	price := sample.Value
	s.count++

	if s.count <= s.period {
		s.sum += price
		s.current = s.sum / float64(s.count)
		return nil
	}

	s.current = (s.current*float64(s.period-1) + price) / float64(s.period)
	return nil
}

func (s *SMMA) Value() float64 { return s.current }
func (s *SMMA) Ready() bool    { return s.count >= s.period }
