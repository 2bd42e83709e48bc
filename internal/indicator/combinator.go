package indicator

import (
	"fmt"

	"bandstream/internal/model"
)

// Op is a binary arithmetic operator applied by a Combinator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Apply evaluates a <op> b. Only OpDiv can fail.
func (o Op) Apply(a, b float64) (float64, error) {
	switch o {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("unknown operator %d: %w", int(o), ErrInvalidConfig)
}

// Combinator derives its value from two upstream indicators and an operator.
// Update forwards the sample to left, then right, then recombines their
// current values. Upstreams owned by someone else should be wrapped with
// Shared so they are not ingested twice.
type Combinator struct {
	left, right Indicator
	op          Op
	name        string
	current     float64
}

// NewCombinator creates a Combinator computing left <op> right.
func NewCombinator(left, right Indicator, op Op) (*Combinator, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("combinator needs two operands: %w", ErrInvalidConfig)
	}
	if op < OpAdd || op > OpDiv {
		return nil, fmt.Errorf("unknown operator %d: %w", int(op), ErrInvalidConfig)
	}
	return &Combinator{
		left:  left,
		right: right,
		op:    op,
		name:  "(" + left.Name() + op.String() + right.Name() + ")",
	}, nil
}

func (c *Combinator) Name() string { return c.name }

// Update ingests s into both operands and recombines. Both operands always
// see the sample; if either fails, the first error is returned and the value
// is left unchanged. When the operator is OpDiv and the ready right operand
// is exactly zero it returns ErrDivisionByZero and keeps the previous value.
func (c *Combinator) Update(s model.Sample) error {
	lerr := c.left.Update(s)
	rerr := c.right.Update(s)
	if lerr != nil {
		return fmt.Errorf("%s: %w", c.name, lerr)
	}
	if rerr != nil {
		return fmt.Errorf("%s: %w", c.name, rerr)
	}

	r := c.right.Value()
	if c.op == OpDiv && r == 0 && !c.right.Ready() {
		// undefined until ready; nothing to signal yet
		return nil
	}
	v, err := c.op.Apply(c.left.Value(), r)
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	c.current = v
	return nil
}

func (c *Combinator) Value() float64 { return c.current }
func (c *Combinator) Ready() bool    { return c.left.Ready() && c.right.Ready() }

// shared is a read-only view of an indicator whose owner ingests it.
type shared struct {
	Indicator
}

// Shared wraps ind so that Update through the wrapper is a no-op. Use it when
// the same upstream feeds several combinators: the owner ingests the
// upstream once, and each consumer only reads its current value.
func Shared(ind Indicator) Indicator {
	if ind == nil {
		return nil
	}
	if s, ok := ind.(shared); ok {
		return s
	}
	return shared{Indicator: ind}
}

func (shared) Update(model.Sample) error { return nil }
