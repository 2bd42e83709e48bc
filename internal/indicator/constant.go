package indicator

import (
	"strconv"

	"bandstream/internal/model"
)

// Constant always yields the same value and is always ready. It lets a scalar
// take part in combinator expressions.
type Constant struct {
	value float64
}

// NewConstant creates a Constant indicator.
func NewConstant(v float64) *Constant { return &Constant{value: v} }

func (c *Constant) Name() string              { return strconv.FormatFloat(c.value, 'g', -1, 64) }
func (c *Constant) Update(model.Sample) error { return nil }
func (c *Constant) Value() float64            { return c.value }
func (c *Constant) Ready() bool               { return true }
