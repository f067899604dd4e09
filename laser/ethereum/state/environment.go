package state

import (
	"go-laser/disassembler"
	"go-laser/laser/smt/z3"
)

// Environment holds the execution context of the active call frame.
type Environment struct {
	Code               *disassembler.Disassembly
	ActiveAccount      *Account
	ActiveFunctionName string
	Address            *z3.Bitvec
	Sender             *z3.Bitvec
	Calldata           Calldata
	GasPrice           *z3.Bitvec
	CallValue          *z3.Bitvec
	Origin             *z3.Bitvec
	Basefee            *z3.Bitvec
	ChainID            *z3.Bitvec
	Static             bool
}

func NewEnvironment(ctx *z3.Context,
	code *disassembler.Disassembly,
	account *Account,
	sender *z3.Bitvec,
	calldata Calldata,
	gasPrice *z3.Bitvec,
	callValue *z3.Bitvec,
	origin *z3.Bitvec,
	basefee *z3.Bitvec,
	static bool) *Environment {
	return &Environment{
		Code:          code,
		ActiveAccount: account,
		Address:       account.Address,
		Sender:        sender,
		Calldata:      calldata,
		GasPrice:      gasPrice,
		CallValue:     callValue,
		Origin:        origin,
		Basefee:       basefee,
		ChainID:       ctx.NewBitvec("chain_id", 256),
		Static:        static,
	}
}

func (e *Environment) Copy() *Environment {
	c := *e
	return &c
}
