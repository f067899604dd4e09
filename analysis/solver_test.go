package analysis

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-laser/disassembler"
	"go-laser/laser/ethereum/state"
	"go-laser/laser/smt/z3"
)

type sequenceFixture struct {
	ctx      *z3.Context
	creation *state.Transaction
	call     *state.Transaction
	final    *state.GlobalState
}

func newSequenceFixture(t *testing.T) *sequenceFixture {
	ctx := z3.NewContext(nil)
	t.Cleanup(func() { _ = ctx.Close() })

	code, err := disassembler.NewDisassembly("0x6001600055", nil)
	require.NoError(t, err)
	creator, _ := new(big.Int).SetString("AFFEAFFEAFFEAFFEAFFEAFFEAFFEAFFEAFFEAFFE", 16)
	attacker, _ := new(big.Int).SetString("DEADBEEFDEADBEEFDEADBEEFDEADBEEFDEADBEEF", 16)

	ws := state.NewWorldState(ctx)
	creation := state.NewContractCreationTransaction(state.TxParams{
		WorldState:   ws,
		ID:           "1",
		Code:         code,
		Caller:       ctx.NewBitvecValBig(creator, 256),
		Origin:       ctx.NewBitvecValBig(creator, 256),
		GasLimit:     8000000,
		ContractName: "Store",
	})
	creation.InitialGlobalState()
	ws.TransactionSequence = append(ws.TransactionSequence, creation)

	call := state.NewMessageCallTransaction(state.TxParams{
		WorldState:    ws,
		ID:            "2",
		CalleeAccount: creation.CalleeAccount,
		Caller:        ctx.NewBitvecValBig(attacker, 256),
		Origin:        ctx.NewBitvecValBig(attacker, 256),
		GasLimit:      8000000,
	})
	final := call.InitialGlobalState()
	ws.TransactionSequence = append(ws.TransactionSequence, call)

	return &sequenceFixture{ctx: ctx, creation: creation, call: call, final: final}
}

func TestGetTransactionSequence(t *testing.T) {
	f := newSequenceFixture(t)
	constraints := f.final.WorldState.Constraints.Copy()
	firstByte := f.call.Calldata.Load(f.ctx.NewBitvecVal(0, 256))
	constraints.Append(firstByte.Eq(f.ctx.NewBitvecVal(0xab, 8)))

	seq, err := GetTransactionSequence(f.final, constraints, state.ModelOptions{Timeout: 10000})
	require.NoError(t, err)
	require.Len(t, seq.Steps, 2)

	creation, call := seq.Steps[0], seq.Steps[1]
	assert.Equal(t, "", creation.Address)
	assert.Equal(t, "0x6001600055", creation.Input)
	assert.Equal(t, "0x0", creation.Value)
	assert.Equal(t, "0xaffeaffeaffeaffeaffeaffeaffeaffeaffeaffe", creation.Origin)

	created, ok := f.creation.CalleeAccount.Address.Value()
	require.True(t, ok)
	assert.Equal(t, common.BigToAddress(created).Hex(), call.Address)
	// Calldata is minimized to the one constrained byte.
	assert.Equal(t, "0xab", call.Input)
	assert.Equal(t, "0x0", call.Value)
	assert.Equal(t, "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", call.Origin)

	account, ok := seq.InitialState.Accounts[common.BigToAddress(created).Hex()]
	require.True(t, ok)
	assert.Equal(t, "0x6001600055", account.Code)
	assert.Empty(t, account.Storage)

	out, err := json.Marshal(seq)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"initialState"`)
	assert.Contains(t, string(out), `"steps"`)
}

func TestGetTransactionSequenceUnsat(t *testing.T) {
	f := newSequenceFixture(t)
	constraints := f.final.WorldState.Constraints.Copy()
	constraints.Append(f.call.CallValue.UGT(f.ctx.NewBitvecVal(5, 256)))
	constraints.Append(f.call.CallValue.ULT(f.ctx.NewBitvecVal(3, 256)))

	_, err := GetTransactionSequence(f.final, constraints, state.ModelOptions{Timeout: 10000})
	assert.True(t, errors.Is(err, state.ErrUnsat))
}

func TestGetTransactionSequenceWithoutTransactions(t *testing.T) {
	ctx := z3.NewContext(nil)
	defer ctx.Close()
	gs := state.NewGlobalState(ctx, state.NewWorldState(ctx), nil, nil, nil)
	_, err := GetTransactionSequence(gs, state.NewConstraints(), state.ModelOptions{})
	assert.Error(t, err)
}
