package state

import (
	"go-laser/disassembler"
	"go-laser/laser/smt/z3"
)

// TxKind distinguishes message calls from contract creations.
type TxKind int

const (
	MessageCall TxKind = iota
	ContractCreation
)

func (k TxKind) String() string {
	if k == ContractCreation {
		return "ContractCreation"
	}
	return "MessageCall"
}

// TxParams are the inputs of a transaction. Nil gas price, call value,
// origin and base fee become fresh symbols suffixed with the id.
type TxParams struct {
	WorldState    *WorldState
	ID            string
	Code          *disassembler.Disassembly
	CalleeAccount *Account
	Caller        *z3.Bitvec
	Origin        *z3.Bitvec
	GasPrice      *z3.Bitvec
	GasLimit      uint64
	CallValue     *z3.Bitvec
	Basefee       *z3.Bitvec
	Calldata      Calldata
	ContractName  string
	Static        bool
}

// Transaction is a message call or contract creation applied to a world state.
type Transaction struct {
	Kind          TxKind
	ID            string
	WorldState    *WorldState
	Code          *disassembler.Disassembly
	CalleeAccount *Account
	Caller        *z3.Bitvec
	Origin        *z3.Bitvec
	GasPrice      *z3.Bitvec
	GasLimit      uint64
	CallValue     *z3.Bitvec
	Basefee       *z3.Bitvec
	Calldata      Calldata
	ContractName  string
	Static        bool
}

func newTransaction(kind TxKind, p TxParams) *Transaction {
	ctx := p.WorldState.Context()
	symbol := func(v *z3.Bitvec, name string) *z3.Bitvec {
		if v != nil {
			return v
		}
		return ctx.NewBitvec(name+p.ID, 256)
	}
	return &Transaction{
		Kind:          kind,
		ID:            p.ID,
		WorldState:    p.WorldState,
		Code:          p.Code,
		CalleeAccount: p.CalleeAccount,
		Caller:        p.Caller,
		Origin:        symbol(p.Origin, "origin"),
		GasPrice:      symbol(p.GasPrice, "gasprice"),
		GasLimit:      p.GasLimit,
		CallValue:     symbol(p.CallValue, "callvalue"),
		Basefee:       symbol(p.Basefee, "basefee"),
		Calldata:      p.Calldata,
		ContractName:  p.ContractName,
		Static:        p.Static,
	}
}

// NewMessageCallTransaction calls p.CalleeAccount. Missing calldata is symbolic.
func NewMessageCallTransaction(p TxParams) *Transaction {
	tx := newTransaction(MessageCall, p)
	if tx.Calldata == nil {
		tx.Calldata = NewSymbolicCalldata(p.WorldState.Context(), p.ID)
	}
	if tx.Code == nil && tx.CalleeAccount != nil {
		tx.Code = tx.CalleeAccount.Code
	}
	if tx.ContractName == "" && tx.CalleeAccount != nil {
		tx.ContractName = tx.CalleeAccount.ContractName
	}
	return tx
}

// NewContractCreationTransaction creates the callee account in p.WorldState,
// deriving its address from the caller. Missing calldata is empty.
func NewContractCreationTransaction(p TxParams) *Transaction {
	tx := newTransaction(ContractCreation, p)
	if tx.CalleeAccount == nil {
		tx.CalleeAccount = p.WorldState.CreateAccount(0, nil, p.Caller, p.Code, p.ContractName, true)
	}
	if tx.Calldata == nil {
		tx.Calldata = NewConcreteCalldata(p.WorldState.Context(), p.ID, nil)
	}
	return tx
}

// InitialGlobalState returns the first state of the transaction. The value
// transfer from caller to callee is applied to the world state together with
// the constraint that the caller can afford it.
func (tx *Transaction) InitialGlobalState() *GlobalState {
	ctx := tx.WorldState.Context()

	var functionName string
	switch tx.Kind {
	case ContractCreation:
		functionName = "constructor"
	default:
		functionName = "fallback"
	}

	environment := NewEnvironment(ctx, tx.Code, tx.CalleeAccount, tx.Caller, tx.Calldata,
		tx.GasPrice, tx.CallValue, tx.Origin, tx.Basefee, tx.Static)
	environment.ActiveFunctionName = functionName

	gs := NewGlobalState(ctx, tx.WorldState, environment, nil, NewMachineState(tx.GasLimit, 0))

	sender := environment.Sender
	receiver := environment.ActiveAccount.Address
	value := environment.CallValue
	ws := gs.WorldState
	ws.Constraints.Append(ws.Balance(sender).UGE(value))
	ws.SetBalance(receiver, ws.Balance(receiver).Add(value))
	ws.SetBalance(sender, ws.Balance(sender).Sub(value))
	return gs
}
