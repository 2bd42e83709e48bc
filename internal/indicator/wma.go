package indicator

import (
	"strconv"

	"bandstream/internal/model"
	"bandstream/internal/ringbuf"
)

// WMA calculates a linearly Weighted Moving Average: the newest sample has
// weight n, the oldest weight 1.
type WMA struct {
	period  int
	win     *ringbuf.Window
	count   int
	current float64
}

// NewWMA creates a new WMA indicator with the given period.
func NewWMA(period int) (*WMA, error) {
	if period <= 0 {
		return nil, invalidPeriod("WMA", period)
	}
	return &WMA{
		period: period,
		win:    ringbuf.New(period),
	}, nil
}

func (w *WMA) Name() string { return "WMA_" + strconv.Itoa(w.period) }

func (w *WMA) Update(s model.Sample) error {
	w.win.Push(s.Value)
	w.count++

	n := w.win.Len()
	var num float64
	for i := 0; i < n; i++ {
		num += float64(i+1) * w.win.At(i)
	}
	w.current = num / float64(n*(n+1)/2)
	return nil
}

func (w *WMA) Value() float64 { return w.current }
func (w *WMA) Ready() bool    { return w.count >= w.period }
