package smt

import (
	"strings"

	"go-laser/laser/smt/z3"
)

// Model is the result of a satisfiable check. A model obtained from a failed
// session is empty: it has no assignments and evaluates nothing.
type Model struct {
	raw []*z3.Model
}

// NewModel wraps raw models. Nil entries are dropped.
func NewModel(models ...*z3.Model) *Model {
	m := &Model{}
	for _, raw := range models {
		if raw != nil {
			m.raw = append(m.raw, raw)
		}
	}
	return m
}

// IsEmpty reports whether the model carries no assignment source.
func (m *Model) IsEmpty() bool {
	return m == nil || len(m.raw) == 0
}

// Eval evaluates expr in the first underlying model that can interpret it.
// It returns nil when no model can.
func (m *Model) Eval(expr *z3.AST, completion bool) *z3.AST {
	if m.IsEmpty() {
		return nil
	}
	for _, raw := range m.raw {
		if v, err := raw.Eval(expr, completion); err == nil {
			return v
		}
	}
	return nil
}

// Assignments returns constant name to value for every underlying model. The
// first model wins on conflicting names.
func (m *Model) Assignments() map[string]string {
	out := map[string]string{}
	if m.IsEmpty() {
		return out
	}
	for _, raw := range m.raw {
		for k, v := range raw.Assignments() {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

func (m *Model) String() string {
	if m.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(m.raw))
	for _, raw := range m.raw {
		parts = append(parts, raw.String())
	}
	return strings.Join(parts, "\n")
}

// Close releases the underlying models.
func (m *Model) Close() error {
	if m == nil {
		return nil
	}
	for _, raw := range m.raw {
		_ = raw.Close()
	}
	m.raw = nil
	return nil
}
