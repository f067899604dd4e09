// Package transaction instantiates transactions against the open states of
// an exploration engine.
package transaction

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go-laser/disassembler"
	"go-laser/laser/ethereum/cfg"
	"go-laser/laser/ethereum/state"
	"go-laser/laser/smt/z3"
	"go-laser/logging"
)

// Engine is the part of the exploration engine a transaction is staged on.
type Engine interface {
	// TakeOpenStates detaches and clears the open-state frontier.
	TakeOpenStates() []*state.WorldState
	AddToWorkList(states ...*state.GlobalState)
	Statespace() *cfg.Recorder
	// Exec drains the work list and returns the final states when trackGas is set.
	Exec(create, trackGas bool) []*state.GlobalState
	Context() *z3.Context
}

// Params describe a transaction request. A nil address means the argument
// was not given; an empty callee requests a contract creation and an empty
// caller defaults to the origin.
type Params struct {
	CalleeAddress *string
	CallerAddress *string
	OriginAddress *string

	Data     []byte
	GasLimit uint64
	// GasPrice and Value are symbolic when nil.
	GasPrice *uint256.Int
	Value    *uint256.Int

	// Code overrides the executed code, hex encoded.
	Code             string
	ContractName     string
	SymbolicCalldata bool
	TrackGas         bool
}

// Call is a transaction request with normalized values.
type Call struct {
	Callee   *z3.Bitvec
	Caller   *z3.Bitvec
	Origin   *z3.Bitvec
	Data     []byte
	GasLimit uint64
	GasPrice *z3.Bitvec
	Value    *z3.Bitvec
	// Code is the creation code, or the code override of a message call.
	Code             *disassembler.Disassembly
	ContractName     string
	SymbolicCalldata bool
	TrackGas         bool
}

// Dispatcher turns transaction requests into initial states on an engine.
type Dispatcher struct {
	ids      *IDManager
	resolver disassembler.SignatureResolver
	logger   *logging.Logger
}

type DispatcherOption func(*Dispatcher)

// WithSignatureResolver names functions of disassembled code.
func WithSignatureResolver(r disassembler.SignatureResolver) DispatcherOption {
	return func(d *Dispatcher) {
		d.resolver = r
	}
}

func WithLogger(l *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

func NewDispatcher(ids *IDManager, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		ids:    ids,
		logger: logging.GlobalLogger.NewSubLogger("service", "transaction"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IDs returns the identifier allocator of the dispatcher.
func (d *Dispatcher) IDs() *IDManager {
	return d.ids
}

// ExecuteTransaction validates p, stages a creation or message call on every
// open state of engine and runs it.
func (d *Dispatcher) ExecuteTransaction(engine Engine, p Params) ([]*state.GlobalState, error) {
	if p.CalleeAddress == nil {
		return nil, missingArgument("callee_address")
	}
	if p.CallerAddress == nil {
		return nil, missingArgument("caller_address")
	}
	if p.OriginAddress == nil {
		return nil, missingArgument("origin_address")
	}

	ctx := engine.Context()
	origin, err := parseAddress(ctx, "origin_address", *p.OriginAddress)
	if err != nil {
		return nil, err
	}
	caller := origin
	if *p.CallerAddress != "" {
		if caller, err = parseAddress(ctx, "caller_address", *p.CallerAddress); err != nil {
			return nil, err
		}
	}

	call := Call{
		Caller:           caller,
		Origin:           origin,
		Data:             p.Data,
		GasLimit:         p.GasLimit,
		GasPrice:         wordOrNil(ctx, p.GasPrice),
		Value:            wordOrNil(ctx, p.Value),
		ContractName:     p.ContractName,
		SymbolicCalldata: p.SymbolicCalldata,
		TrackGas:         p.TrackGas,
	}

	if *p.CalleeAddress == "" {
		code := p.Code
		if code == "" {
			code = hex.EncodeToString(p.Data)
			call.Data = nil
		}
		if call.Code, err = disassembler.NewDisassembly(code, d.resolver); err != nil {
			return nil, malformedArgument("code", err)
		}
		return d.ExecuteContractCreation(engine, call), nil
	}

	if call.Callee, err = parseAddress(ctx, "callee_address", *p.CalleeAddress); err != nil {
		return nil, err
	}
	if p.Code != "" {
		if call.Code, err = disassembler.NewDisassembly(p.Code, d.resolver); err != nil {
			return nil, malformedArgument("code", err)
		}
	}
	return d.ExecuteMessageCall(engine, call), nil
}

// ExecuteMessageCall stages a call to c.Callee on every open state and runs it.
func (d *Dispatcher) ExecuteMessageCall(engine Engine, c Call) []*state.GlobalState {
	ctx := engine.Context()
	d.stage(engine, func(ws *state.WorldState, id string) *state.Transaction {
		callee := ws.Account(c.Callee)
		code := c.Code
		if code == nil {
			code = callee.Code
		}
		var calldata state.Calldata
		if !c.SymbolicCalldata {
			calldata = state.NewConcreteCalldata(ctx, id, c.Data)
		}
		return state.NewMessageCallTransaction(state.TxParams{
			WorldState:    ws,
			ID:            id,
			Code:          code,
			CalleeAccount: callee,
			Caller:        c.Caller,
			Origin:        c.Origin,
			GasPrice:      c.GasPrice,
			GasLimit:      c.GasLimit,
			CallValue:     c.Value,
			Calldata:      calldata,
		})
	})
	return engine.Exec(false, c.TrackGas)
}

// ExecuteContractCreation stages the creation of c.Code on every open state
// and runs it.
func (d *Dispatcher) ExecuteContractCreation(engine Engine, c Call) []*state.GlobalState {
	ctx := engine.Context()
	d.stage(engine, func(ws *state.WorldState, id string) *state.Transaction {
		var calldata state.Calldata
		if c.SymbolicCalldata {
			calldata = state.NewSymbolicCalldata(ctx, id)
		} else if len(c.Data) > 0 {
			calldata = state.NewConcreteCalldata(ctx, id, c.Data)
		}
		return state.NewContractCreationTransaction(state.TxParams{
			WorldState:   ws,
			ID:           id,
			Code:         c.Code,
			Caller:       c.Caller,
			Origin:       c.Origin,
			GasPrice:     c.GasPrice,
			GasLimit:     c.GasLimit,
			CallValue:    c.Value,
			Calldata:     calldata,
			ContractName: c.ContractName,
		})
	})
	return engine.Exec(true, c.TrackGas)
}

// stage forks one transaction per open world state, links it into the
// control-flow graph and enqueues its initial state.
func (d *Dispatcher) stage(engine Engine, build func(ws *state.WorldState, id string) *state.Transaction) int {
	openStates := engine.TakeOpenStates()
	recorder := engine.Statespace()

	for _, ws := range openStates {
		tx := build(ws, d.ids.NextID())
		gs := tx.InitialGlobalState()
		gs.TransactionStack = append(gs.TransactionStack, state.TransactionFrame{Transaction: tx})

		node := recorder.NewNode(gs.Environment.ActiveAccount.ContractName, gs.Environment.ActiveFunctionName, 0)
		node.Flags |= cfg.FuncEntry
		recorder.Link(node, ws.Node, cfg.Transaction, nil, gs.WorldState.Constraints)

		gs.WorldState.TransactionSequence = append(gs.WorldState.TransactionSequence, tx)
		gs.Node = node
		node.AddState(gs)
		engine.AddToWorkList(gs)
	}

	d.logger.Debug("staged ", len(openStates), " transactions, last id ", d.ids.Peek())
	return len(openStates)
}

// parseAddress parses a hex address, with or without 0x, into a 256-bit value.
func parseAddress(ctx *z3.Context, field, s string) (*z3.Bitvec, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, ok := new(big.Int).SetString(trimmed, 16)
	if !ok || b.Sign() < 0 {
		return nil, malformedArgument(field, errors.Errorf("%q is not a hex number", s))
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, malformedArgument(field, errors.Errorf("%q does not fit in 256 bits", s))
	}
	return ctx.NewBitvecValBig(v.ToBig(), 256), nil
}

func wordOrNil(ctx *z3.Context, v *uint256.Int) *z3.Bitvec {
	if v == nil {
		return nil
	}
	return ctx.NewBitvecValBig(v.ToBig(), 256)
}
