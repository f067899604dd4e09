package state

import (
	"math/big"

	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
)

// maxConcreteCalldata caps the size read back from a model.
const maxConcreteCalldata = 5000

// Calldata is the input of a transaction, indexed by byte.
type Calldata interface {
	// ID is the identifier of the owning transaction.
	ID() string
	Size() *z3.Bitvec
	// Load returns the byte at index, zero past the end.
	Load(index *z3.Bitvec) *z3.Bitvec
	// WordAt returns the 32-byte big-endian word starting at offset.
	WordAt(offset *z3.Bitvec) *z3.Bitvec
	// Concrete returns the calldata under model.
	Concrete(model *smt.Model) []byte
}

func wordAt(ctx *z3.Context, cd Calldata, offset *z3.Bitvec) *z3.Bitvec {
	word := cd.Load(offset)
	for i := uint64(1); i < 32; i++ {
		word = word.Concat(cd.Load(offset.Add(ctx.NewBitvecVal(i, 256))))
	}
	return word.Simplify()
}

type ConcreteCalldata struct {
	id    string
	data  []byte
	array *z3.Array
	ctx   *z3.Context
}

func NewConcreteCalldata(ctx *z3.Context, id string, data []byte) *ConcreteCalldata {
	array := ctx.NewK(256, 8, 0)
	for i, b := range data {
		array = array.Store(ctx.NewBitvecVal(uint64(i), 256), ctx.NewBitvecVal(uint64(b), 8))
	}
	return &ConcreteCalldata{
		id:    id,
		data:  append([]byte(nil), data...),
		array: array,
		ctx:   ctx,
	}
}

func (c *ConcreteCalldata) ID() string {
	return c.id
}

func (c *ConcreteCalldata) Size() *z3.Bitvec {
	return c.ctx.NewBitvecVal(uint64(len(c.data)), 256)
}

func (c *ConcreteCalldata) Load(index *z3.Bitvec) *z3.Bitvec {
	return c.array.Select(index).Simplify()
}

func (c *ConcreteCalldata) WordAt(offset *z3.Bitvec) *z3.Bitvec {
	return wordAt(c.ctx, c, offset)
}

func (c *ConcreteCalldata) Concrete(*smt.Model) []byte {
	return append([]byte(nil), c.data...)
}

// SymbolicCalldata is unconstrained input named <id>_calldata with size
// <id>_calldatasize.
type SymbolicCalldata struct {
	id    string
	array *z3.Array
	size  *z3.Bitvec
	ctx   *z3.Context
}

func NewSymbolicCalldata(ctx *z3.Context, id string) *SymbolicCalldata {
	return &SymbolicCalldata{
		id:    id,
		array: ctx.NewArray(id+"_calldata", 256, 8),
		size:  ctx.NewBitvec(id+"_calldatasize", 256),
		ctx:   ctx,
	}
}

func (c *SymbolicCalldata) ID() string {
	return c.id
}

func (c *SymbolicCalldata) Size() *z3.Bitvec {
	return c.size
}

func (c *SymbolicCalldata) Load(index *z3.Bitvec) *z3.Bitvec {
	return z3.If(index.ULT(c.size), c.array.Select(index), c.ctx.NewBitvecVal(0, 8)).Simplify()
}

func (c *SymbolicCalldata) WordAt(offset *z3.Bitvec) *z3.Bitvec {
	return wordAt(c.ctx, c, offset)
}

func (c *SymbolicCalldata) Concrete(model *smt.Model) []byte {
	size := uint64(maxConcreteCalldata)
	if n := evalBig(model, c.size); n.IsUint64() && n.Uint64() < size {
		size = n.Uint64()
	}
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(evalBig(model, c.Load(c.ctx.NewBitvecVal(uint64(i), 256))).Uint64())
	}
	return out
}

// evalBig evaluates e in model. Values the model cannot provide are zero.
func evalBig(model *smt.Model, e *z3.Bitvec) *big.Int {
	v := model.Eval(e.AsAST(), true)
	if v == nil {
		return new(big.Int)
	}
	n, ok := v.AsBitvec().Value()
	if !ok {
		return new(big.Int)
	}
	return n
}
