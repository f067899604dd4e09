package transaction

import (
	"math/big"

	"go-laser/laser/smt/z3"
)

const (
	CreatorAddress  = "AFFEAFFEAFFEAFFEAFFEAFFEAFFEAFFEAFFEAFFE"
	AttackerAddress = "DEADBEEFDEADBEEFDEADBEEFDEADBEEFDEADBEEF"
	SomeGuyAddress  = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

// Actors are the well-known accounts that send transactions during analysis.
// Each analysis run owns its own set.
type Actors struct {
	addresses map[string]*z3.Bitvec
}

func NewActors(ctx *z3.Context) *Actors {
	addrMap := make(map[string]*z3.Bitvec)
	for name, hex := range map[string]string{
		"CREATOR":  CreatorAddress,
		"ATTACKER": AttackerAddress,
		"SOMEGUY":  SomeGuyAddress,
	} {
		v, _ := new(big.Int).SetString(hex, 16)
		addrMap[name] = ctx.NewBitvecValBig(v, 256)
	}
	return &Actors{addresses: addrMap}
}

func (a *Actors) Creator() *z3.Bitvec {
	return a.addresses["CREATOR"]
}

func (a *Actors) Attacker() *z3.Bitvec {
	return a.addresses["ATTACKER"]
}

func (a *Actors) SomeGuy() *z3.Bitvec {
	return a.addresses["SOMEGUY"]
}

// Get returns the address of a named actor.
func (a *Actors) Get(name string) (*z3.Bitvec, bool) {
	v, ok := a.addresses[name]
	return v, ok
}
