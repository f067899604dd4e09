package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go-laser/disassembler"
	"go-laser/laser/smt/z3"
)

// NodeRef is the control-flow graph node a state was produced in.
type NodeRef interface {
	UID() int
}

// WorldState is a snapshot of accounts and balances together with the path
// constraints and the transactions that led to it.
type WorldState struct {
	accounts map[string]*Account

	Balances            *z3.Array
	StartingBalances    *z3.Array
	Constraints         Constraints
	TransactionSequence []*Transaction
	Node                NodeRef

	ctx *z3.Context
}

func NewWorldState(ctx *z3.Context) *WorldState {
	balances := ctx.NewArray("balance", 256, 256)
	return &WorldState{
		accounts:            make(map[string]*Account),
		Balances:            balances,
		StartingBalances:    balances,
		TransactionSequence: make([]*Transaction, 0),
		ctx:                 ctx,
	}
}

// Context returns the z3 context the state's expressions belong to.
func (w *WorldState) Context() *z3.Context {
	return w.ctx
}

func addressKey(addr *z3.Bitvec) string {
	if v, ok := addr.Value(); ok {
		return v.String()
	}
	return addr.AsAST().String()
}

// Account returns the account at addr, creating an empty one if needed.
func (w *WorldState) Account(addr *z3.Bitvec) *Account {
	key := addressKey(addr)
	if acc, ok := w.accounts[key]; ok {
		return acc
	}
	acc := NewAccount(w.ctx, addr, nil, "", false)
	w.accounts[key] = acc
	return acc
}

// HasAccount reports whether an account exists at addr.
func (w *WorldState) HasAccount(addr *z3.Bitvec) bool {
	_, ok := w.accounts[addressKey(addr)]
	return ok
}

// PutAccount stores acc under its address.
func (w *WorldState) PutAccount(acc *Account) {
	w.accounts[addressKey(acc.Address)] = acc
}

// Accounts returns the accounts of the world state.
func (w *WorldState) Accounts() []*Account {
	out := make([]*Account, 0, len(w.accounts))
	for _, acc := range w.accounts {
		out = append(out, acc)
	}
	return out
}

// Balance returns the balance of addr.
func (w *WorldState) Balance(addr *z3.Bitvec) *z3.Bitvec {
	return w.Balances.Select(addr)
}

// SetBalance sets the balance of addr.
func (w *WorldState) SetBalance(addr, balance *z3.Bitvec) {
	w.Balances = w.Balances.Store(addr, balance)
}

// CreateAccount creates an account with balance. When address is nil it is
// derived from creator and the creator's nonce the way CREATE does; a
// symbolic or nil creator derives from the zero address and the account
// count.
func (w *WorldState) CreateAccount(balance uint64, address, creator *z3.Bitvec, code *disassembler.Disassembly, contractName string, concreteStorage bool) *Account {
	if address == nil {
		address = w.newAddress(creator)
	}
	acc := NewAccount(w.ctx, address, code, contractName, concreteStorage)
	w.PutAccount(acc)
	w.SetBalance(address, w.ctx.NewBitvecVal(balance, 256))
	return acc
}

func (w *WorldState) newAddress(creator *z3.Bitvec) *z3.Bitvec {
	from := common.Address{}
	nonce := uint64(len(w.accounts))
	if creator != nil {
		if v, ok := creator.Value(); ok {
			creatorAcc := w.Account(creator)
			from = common.BigToAddress(v)
			nonce = creatorAcc.Nonce
			creatorAcc.Nonce++
		}
	}
	addr := crypto.CreateAddress(from, nonce)
	return w.ctx.NewBitvecValBig(new(big.Int).SetBytes(addr.Bytes()), 256)
}

// Copy returns a world state that can be extended independently. Z3
// expressions are immutable and shared.
func (w *WorldState) Copy() *WorldState {
	accounts := make(map[string]*Account, len(w.accounts))
	for k, acc := range w.accounts {
		accounts[k] = acc.Copy()
	}
	return &WorldState{
		accounts:            accounts,
		Balances:            w.Balances,
		StartingBalances:    w.StartingBalances,
		Constraints:         w.Constraints.Copy(),
		TransactionSequence: append([]*Transaction(nil), w.TransactionSequence...),
		Node:                w.Node,
		ctx:                 w.ctx,
	}
}
