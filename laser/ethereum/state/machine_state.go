package state

import (
	"github.com/pkg/errors"
	"go-laser/laser/smt/z3"
)

const (
	StackLimit                    = 1024
	GasMemory                     = 3
	GasMemoryQuadraticDenominator = 512
)

var (
	ErrStackOverflow  = errors.New("stack limit reached")
	ErrStackUnderflow = errors.New("pop from an empty stack")
	ErrOutOfGas       = errors.New("out of gas")
)

type MachineStack struct {
	items []*z3.Bitvec
}

// Push appends an item. Booleans are stored as 1 or 0.
func (m *MachineStack) Push(item *z3.Bitvec) error {
	if len(m.items) >= StackLimit {
		return ErrStackOverflow
	}
	m.items = append(m.items, item)
	return nil
}

// PushBool pushes a condition as a 256-bit word.
func (m *MachineStack) PushBool(ctx *z3.Context, b *z3.Bool) error {
	return m.Push(z3.If(b, ctx.NewBitvecVal(1, 256), ctx.NewBitvecVal(0, 256)))
}

func (m *MachineStack) Pop() (*z3.Bitvec, error) {
	if len(m.items) == 0 {
		return nil, ErrStackUnderflow
	}
	item := m.items[len(m.items)-1]
	m.items = m.items[:len(m.items)-1]
	return item, nil
}

func (m *MachineStack) Len() int {
	return len(m.items)
}

func (m *MachineStack) Copy() *MachineStack {
	return &MachineStack{items: append([]*z3.Bitvec(nil), m.items...)}
}

// MachineState is the per-frame execution state. Pc is an index into the
// instruction list, not a byte offset.
type MachineState struct {
	Pc         int
	Depth      int
	GasLimit   uint64
	MinGasUsed uint64
	MaxGasUsed uint64
	Stack      *MachineStack

	memorySize int
}

func NewMachineState(gasLimit uint64, depth int) *MachineState {
	return &MachineState{
		GasLimit: gasLimit,
		Depth:    depth,
		Stack:    &MachineStack{},
	}
}

// MemorySize returns the active memory size in bytes.
func (m *MachineState) MemorySize() int {
	return m.memorySize
}

// CalculateMemoryGas returns the gas to grow memory to cover start+size.
func (m *MachineState) CalculateMemoryGas(start, size int) uint64 {
	oldSize := m.memorySize / 32
	oldTotalFee := oldSize*GasMemory + oldSize*oldSize/GasMemoryQuadraticDenominator
	newSize := Ceil32(start+size) / 32
	newTotalFee := newSize*GasMemory + newSize*newSize/GasMemoryQuadraticDenominator
	return uint64(newTotalFee - oldTotalFee)
}

// MemExtend grows memory to cover start+size and charges for it.
func (m *MachineState) MemExtend(start, size int) error {
	if size == 0 || m.memorySize >= start+size {
		return nil
	}
	gas := m.CalculateMemoryGas(start, size)
	m.MinGasUsed += gas
	m.MaxGasUsed += gas
	m.memorySize = Ceil32(start + size)
	return m.CheckGas()
}

func (m *MachineState) CheckGas() error {
	if m.MinGasUsed > m.GasLimit {
		return ErrOutOfGas
	}
	return nil
}

func (m *MachineState) Copy() *MachineState {
	c := *m
	c.Stack = m.Stack.Copy()
	return &c
}

// Ceil32 rounds value up to a multiple of 32.
func Ceil32(value int) int {
	remainder := value % 32
	if remainder == 0 {
		return value
	}
	return value + 32 - remainder
}
