package state

import (
	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
)

// Constraints is an append-only list of path conditions. The zero value is
// an empty list. Copies are independent.
type Constraints struct {
	list []*z3.Bool
}

func NewConstraints(cs ...*z3.Bool) Constraints {
	return Constraints{list: append([]*z3.Bool(nil), cs...)}
}

// Append adds constraints to the end of the list.
func (c *Constraints) Append(cs ...*z3.Bool) {
	c.list = append(c.list, cs...)
}

// List returns the constraints in insertion order.
func (c Constraints) List() []*z3.Bool {
	return append([]*z3.Bool(nil), c.list...)
}

func (c Constraints) Len() int {
	return len(c.list)
}

// Last returns the most recent constraint or nil.
func (c Constraints) Last() *z3.Bool {
	if len(c.list) == 0 {
		return nil
	}
	return c.list[len(c.list)-1]
}

// Copy returns a point-in-time copy; appending to either side does not
// affect the other.
func (c Constraints) Copy() Constraints {
	return Constraints{list: append(make([]*z3.Bool, 0, len(c.list)), c.list...)}
}

// Equal reports whether both lists hold the same expressions in order.
func (c Constraints) Equal(o Constraints) bool {
	if len(c.list) != len(o.list) {
		return false
	}
	for i := range c.list {
		if c.list[i] != o.list[i] && c.list[i].String() != o.list[i].String() {
			return false
		}
	}
	return true
}

// IsPossible reports whether the constraints may be satisfiable. A solver
// timeout counts as possible.
func (c Constraints) IsPossible(ctx *z3.Context, opts ModelOptions) bool {
	_, err := c.GetModel(ctx, opts)
	return !isUnsat(err)
}

// GetModel returns a model of the constraints.
func (c Constraints) GetModel(ctx *z3.Context, opts ModelOptions) (*smt.Model, error) {
	return GetModel(ctx, c.list, nil, nil, opts)
}
