package state

import (
	"go-laser/disassembler"
	"go-laser/laser/smt/z3"
)

// Storage is the persistent storage of one account.
type Storage struct {
	concrete bool
	array    *z3.Array
	keys     []*z3.Bitvec
}

// NewStorage creates empty storage. Concrete storage reads zero for unset
// slots; symbolic storage is an unconstrained array named after the account.
func NewStorage(ctx *z3.Context, addr *z3.Bitvec, concrete bool) *Storage {
	s := &Storage{concrete: concrete}
	if concrete {
		s.array = ctx.NewK(256, 256, 0)
	} else {
		s.array = ctx.NewArray("Storage"+addr.String(), 256, 256)
	}
	return s
}

// Get returns the value at key.
func (s *Storage) Get(key *z3.Bitvec) *z3.Bitvec {
	return s.array.Select(key).Simplify()
}

// Set stores value at key.
func (s *Storage) Set(key, value *z3.Bitvec) {
	s.array = s.array.Store(key, value)
	s.keys = append(s.keys, key)
}

// Keys returns the keys written so far.
func (s *Storage) Keys() []*z3.Bitvec {
	return append([]*z3.Bitvec(nil), s.keys...)
}

func (s *Storage) Copy() *Storage {
	return &Storage{
		concrete: s.concrete,
		array:    s.array,
		keys:     append([]*z3.Bitvec(nil), s.keys...),
	}
}

type Account struct {
	Address      *z3.Bitvec
	Code         *disassembler.Disassembly
	ContractName string
	Storage      *Storage
	Nonce        uint64
	Deleted      bool
}

func NewAccount(ctx *z3.Context, addr *z3.Bitvec, code *disassembler.Disassembly, contractName string, concreteStorage bool) *Account {
	if contractName == "" {
		contractName = "unknown"
	}
	return &Account{
		Address:      addr,
		Code:         code,
		ContractName: contractName,
		Storage:      NewStorage(ctx, addr, concreteStorage),
	}
}

func (acc *Account) Copy() *Account {
	return &Account{
		Address:      acc.Address,
		Code:         acc.Code,
		ContractName: acc.ContractName,
		Storage:      acc.Storage.Copy(),
		Nonce:        acc.Nonce,
		Deleted:      acc.Deleted,
	}
}
