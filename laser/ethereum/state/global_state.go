package state

import (
	"go-laser/disassembler"
	"go-laser/laser/smt/z3"
)

// TransactionFrame is one entry of the transaction stack. Return is nil until
// the frame has produced return data.
type TransactionFrame struct {
	Transaction *Transaction
	Return      []byte
}

type GlobalState struct {
	WorldState       *WorldState
	Environment      *Environment
	Mstate           *MachineState
	TransactionStack []TransactionFrame
	LastReturnData   []byte
	Node             NodeRef

	annotations []StateAnnotation
	ctx         *z3.Context
}

func NewGlobalState(ctx *z3.Context, worldState *WorldState, environment *Environment, node NodeRef, mstate *MachineState) *GlobalState {
	if mstate == nil {
		mstate = NewMachineState(0, 0)
	}
	return &GlobalState{
		WorldState:       worldState,
		Environment:      environment,
		Mstate:           mstate,
		TransactionStack: make([]TransactionFrame, 0),
		Node:             node,
		ctx:              ctx,
	}
}

// Context returns the z3 context of the state.
func (g *GlobalState) Context() *z3.Context {
	return g.ctx
}

// CurrentTransaction returns the transaction on top of the stack, or nil.
func (g *GlobalState) CurrentTransaction() *Transaction {
	if len(g.TransactionStack) == 0 {
		return nil
	}
	return g.TransactionStack[len(g.TransactionStack)-1].Transaction
}

// CurrentInstruction returns the instruction at pc, or nil past the end.
func (g *GlobalState) CurrentInstruction() *disassembler.EvmInstruction {
	if g.Environment == nil || g.Environment.Code == nil {
		return nil
	}
	instrs := g.Environment.Code.InstructionList
	if g.Mstate.Pc < 0 || g.Mstate.Pc >= len(instrs) {
		return nil
	}
	return instrs[g.Mstate.Pc]
}

// Annotate attaches an annotation.
func (g *GlobalState) Annotate(a StateAnnotation) {
	g.annotations = append(g.annotations, a)
}

func (g *GlobalState) Annotations() []StateAnnotation {
	return g.annotations
}

// Copy returns a state that can diverge from g. The world state is copied;
// transactions on the stack are shared.
func (g *GlobalState) Copy() *GlobalState {
	annotations := make([]StateAnnotation, 0, len(g.annotations))
	for _, a := range g.annotations {
		annotations = append(annotations, a.Copy())
	}
	worldState := g.WorldState.Copy()
	environment := g.Environment.Copy()
	if environment.ActiveAccount != nil {
		environment.ActiveAccount = worldState.Account(environment.Address)
	}
	return &GlobalState{
		WorldState:       worldState,
		Environment:      environment,
		Mstate:           g.Mstate.Copy(),
		TransactionStack: append([]TransactionFrame(nil), g.TransactionStack...),
		LastReturnData:   g.LastReturnData,
		Node:             g.Node,
		annotations:      annotations,
		ctx:              g.ctx,
	}
}
