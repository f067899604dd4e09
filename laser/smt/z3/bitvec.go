package z3

// #include <stdlib.h>
// #include <z3.h>
import "C"
import (
	"math/big"
	"unsafe"
)

// Bitvec is a fixed width bit-vector expression.
type Bitvec struct {
	AST
}

// NewBitvec declares a bit-vector constant named name.
func (c *Context) NewBitvec(name string, size uint) *Bitvec {
	return &Bitvec{c.wrap(C.Z3_mk_const(c.raw, c.Symbol(name).rawSymbol, c.BvSort(size).rawSort))}
}

// NewBitvecVal creates a bit-vector literal.
func (c *Context) NewBitvecVal(v uint64, size uint) *Bitvec {
	return &Bitvec{c.wrap(C.Z3_mk_unsigned_int64(c.raw, C.uint64_t(v), c.BvSort(size).rawSort))}
}

// NewBitvecValBig creates a bit-vector literal from an arbitrary precision
// integer. Values wider than size are truncated by Z3.
func (c *Context) NewBitvecValBig(v *big.Int, size uint) *Bitvec {
	cstr := C.CString(v.String())
	defer C.free(unsafe.Pointer(cstr))
	return &Bitvec{c.wrap(C.Z3_mk_numeral(c.raw, cstr, c.BvSort(size).rawSort))}
}

// AsAST returns the underlying AST.
func (b *Bitvec) AsAST() *AST {
	return &b.AST
}

// Size returns the width in bits.
func (b *Bitvec) Size() uint {
	sort := C.Z3_get_sort(b.ctx.raw, b.rawAST)
	return uint(C.Z3_get_bv_sort_size(b.ctx.raw, sort))
}

// Symbolic reports whether the expression has no concrete value.
func (b *Bitvec) Symbolic() bool {
	return !b.IsNumeral()
}

// Value returns the concrete value of the expression after simplification.
// The second result is false when the expression is symbolic.
func (b *Bitvec) Value() (*big.Int, bool) {
	simplified := C.Z3_simplify(b.ctx.raw, b.rawAST)
	if !bool(C.Z3_is_numeral_ast(b.ctx.raw, simplified)) {
		return nil, false
	}
	s := C.GoString(C.Z3_get_numeral_string(b.ctx.raw, simplified))
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

// Simplify returns the simplified expression.
func (b *Bitvec) Simplify() *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_simplify(b.ctx.raw, b.rawAST))}
}

func (b *Bitvec) String() string {
	if v, ok := b.Value(); ok {
		return v.String()
	}
	return b.AST.String()
}

// Add creates b + t.
func (b *Bitvec) Add(t *Bitvec) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_bvadd(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Sub creates b - t.
func (b *Bitvec) Sub(t *Bitvec) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_bvsub(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Mul creates b * t.
func (b *Bitvec) Mul(t *Bitvec) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_bvmul(b.ctx.raw, b.rawAST, t.rawAST))}
}

// UDiv creates the unsigned division b / t.
func (b *Bitvec) UDiv(t *Bitvec) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_bvudiv(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Eq creates b == t.
func (b *Bitvec) Eq(t *Bitvec) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_eq(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Neq creates b != t.
func (b *Bitvec) Neq(t *Bitvec) *Bool {
	return b.Eq(t).Not()
}

// ULT creates the unsigned comparison b < t.
func (b *Bitvec) ULT(t *Bitvec) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_bvult(b.ctx.raw, b.rawAST, t.rawAST))}
}

// ULE creates the unsigned comparison b <= t.
func (b *Bitvec) ULE(t *Bitvec) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_bvule(b.ctx.raw, b.rawAST, t.rawAST))}
}

// UGT creates the unsigned comparison b > t.
func (b *Bitvec) UGT(t *Bitvec) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_bvugt(b.ctx.raw, b.rawAST, t.rawAST))}
}

// UGE creates the unsigned comparison b >= t.
func (b *Bitvec) UGE(t *Bitvec) *Bool {
	return &Bool{b.ctx.wrap(C.Z3_mk_bvuge(b.ctx.raw, b.rawAST, t.rawAST))}
}

// Extract returns bits high..low of b.
func (b *Bitvec) Extract(high, low uint) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_extract(b.ctx.raw, C.uint(high), C.uint(low), b.rawAST))}
}

// Concat returns the concatenation of b and t, b being the high part.
func (b *Bitvec) Concat(t *Bitvec) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_concat(b.ctx.raw, b.rawAST, t.rawAST))}
}

// ZeroExt extends b with i zero bits.
func (b *Bitvec) ZeroExt(i uint) *Bitvec {
	return &Bitvec{b.ctx.wrap(C.Z3_mk_zero_ext(b.ctx.raw, C.uint(i), b.rawAST))}
}

// If creates ite(cond, then, els).
func If(cond *Bool, then, els *Bitvec) *Bitvec {
	return &Bitvec{cond.ctx.wrap(C.Z3_mk_ite(cond.ctx.raw, cond.rawAST, then.rawAST, els.rawAST))}
}

// Translate copies the expression into another context.
func (b *Bitvec) Translate(c *Context) *Bitvec {
	return &Bitvec{*b.AST.Translate(c)}
}

// AsBitvec views a bit-vector sorted AST, such as a model evaluation, as a Bitvec.
func (a *AST) AsBitvec() *Bitvec {
	return &Bitvec{*a}
}
