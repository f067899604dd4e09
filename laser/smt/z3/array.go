package z3

// #include <z3.h>
import "C"

// Array is an array from bit-vectors to bit-vectors. EVM storage and
// symbolic calldata are both modelled this way.
type Array struct {
	AST
	name string
}

// NewArray declares an array constant named name.
func (c *Context) NewArray(name string, domain, rng uint) *Array {
	sort := c.ArraySort(c.BvSort(domain), c.BvSort(rng))
	return &Array{
		AST:  c.wrap(C.Z3_mk_const(c.raw, c.Symbol(name).rawSymbol, sort.rawSort)),
		name: name,
	}
}

// NewK creates an array whose every element is value.
func (c *Context) NewK(domain, rng uint, value uint64) *Array {
	return &Array{
		AST: c.wrap(C.Z3_mk_const_array(c.raw, c.BvSort(domain).rawSort, c.NewBitvecVal(value, rng).rawAST)),
	}
}

// Name returns the declared name, "" for constant arrays.
func (a *Array) Name() string {
	return a.name
}

// AsAST returns the underlying AST.
func (a *Array) AsAST() *AST {
	return &a.AST
}

// Select returns a[index].
func (a *Array) Select(index *Bitvec) *Bitvec {
	return &Bitvec{a.ctx.wrap(C.Z3_mk_select(a.ctx.raw, a.rawAST, index.rawAST))}
}

// Store returns a copy of a with a[index] = value.
func (a *Array) Store(index, value *Bitvec) *Array {
	return &Array{
		AST:  a.ctx.wrap(C.Z3_mk_store(a.ctx.raw, a.rawAST, index.rawAST, value.rawAST)),
		name: a.name,
	}
}
