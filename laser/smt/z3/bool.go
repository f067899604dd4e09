package z3

// #include <z3.h>
import "C"

// Bool is a boolean expression.
type Bool struct {
	AST
}

// NewBoolVal returns the literal true or false.
func (c *Context) NewBoolVal(v bool) *Bool {
	if v {
		return &Bool{c.wrap(C.Z3_mk_true(c.raw))}
	}
	return &Bool{c.wrap(C.Z3_mk_false(c.raw))}
}

// NewBoolConst declares a boolean constant named name.
func (c *Context) NewBoolConst(name string) *Bool {
	return &Bool{c.wrap(C.Z3_mk_const(c.raw, c.Symbol(name).rawSymbol, c.BoolSort().rawSort))}
}

// AsAST returns the underlying AST.
func (b *Bool) AsAST() *AST {
	return &b.AST
}

// Simplify returns the simplified expression.
func (b *Bool) Simplify() *Bool {
	return &Bool{b.ctx.wrap(C.Z3_simplify(b.ctx.raw, b.rawAST))}
}

// IsTrue reports whether the expression simplifies to true.
func (b *Bool) IsTrue() bool {
	return C.Z3_get_bool_value(b.ctx.raw, C.Z3_simplify(b.ctx.raw, b.rawAST)) == C.Z3_L_TRUE
}

// IsFalse reports whether the expression simplifies to false.
func (b *Bool) IsFalse() bool {
	return C.Z3_get_bool_value(b.ctx.raw, C.Z3_simplify(b.ctx.raw, b.rawAST)) == C.Z3_L_FALSE
}

// Not creates not(b).
//
// Maps to: Z3_mk_not
func (b *Bool) Not() *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_not(b.ctx.raw, b.rawAST))}
}

// And creates a conjunction of b and args.
//
// Maps to: Z3_mk_and
func (b *Bool) And(args ...*Bool) *Bool {
	raws := rawASTs(append([]*Bool{b}, args...))
	return &Bool{b.ctx.wrap(C.Z3_mk_and(b.ctx.raw, C.uint(len(raws)), rawPtr(raws)))}
}

// Or creates a disjunction of b and args.
//
// Maps to: Z3_mk_or
func (b *Bool) Or(args ...*Bool) *Bool {
	raws := rawASTs(append([]*Bool{b}, args...))
	return &Bool{b.ctx.wrap(C.Z3_mk_or(b.ctx.raw, C.uint(len(raws)), rawPtr(raws)))}
}

// Implies creates b => t.
func (b *Bool) Implies(t *Bool) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_implies(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Eq creates b == t.
func (b *Bool) Eq(t *Bool) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_eq(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Translate copies the expression into another context.
func (b *Bool) Translate(c *Context) *Bool {
	return &Bool{*b.AST.Translate(c)}
}
