package analysis

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go-laser/laser/ethereum/state"
	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
)

// maxCalldataSize bounds the calldata of every concretized transaction.
const maxCalldataSize = 5000

var (
	// Callers start with less than 1000 ETH, every account with less than 100 ETH.
	maxCallerBalance, _  = new(big.Int).SetString("1000000000000000000000", 10)
	maxAccountBalance, _ = new(big.Int).SetString("100000000000000000000", 10)
)

type ConcreteTransaction struct {
	Input   string `json:"input"`
	Value   string `json:"value"`
	Origin  string `json:"origin"`
	Address string `json:"address"`
}

type ConcreteAccount struct {
	Nonce   uint64            `json:"nonce"`
	Code    string            `json:"code"`
	Storage map[string]string `json:"storage"`
	Balance string            `json:"balance"`
}

type InitialState struct {
	Accounts map[string]ConcreteAccount `json:"accounts"`
}

// TransactionSequence is a concrete witness for a sequence of symbolic
// transactions: the state it starts from and the transactions to send.
type TransactionSequence struct {
	InitialState InitialState          `json:"initialState"`
	Steps        []ConcreteTransaction `json:"steps"`
}

// GetTransactionSequence solves constraints together with the transaction
// sequence of gs, preferring short calldata and small call values. It
// returns state.ErrUnsat when no such sequence exists.
func GetTransactionSequence(gs *state.GlobalState, constraints state.Constraints, opts state.ModelOptions) (*TransactionSequence, error) {
	sequence := gs.WorldState.TransactionSequence
	if len(sequence) == 0 {
		return nil, errors.New("global state has no transactions")
	}
	ctx := gs.Context()

	txConstraints, minimize := setMinimisationConstraints(ctx, sequence, constraints.Copy(), gs.WorldState)
	model, err := state.GetModel(ctx, txConstraints.List(), minimize, nil, opts)
	if err != nil {
		return nil, err
	}

	steps := make([]ConcreteTransaction, 0, len(sequence))
	for _, tx := range sequence {
		steps = append(steps, concreteTransaction(model, tx))
	}

	initial := sequence[0].WorldState
	accounts := make(map[string]ConcreteAccount)
	for _, account := range initial.Accounts() {
		address, ok := account.Address.Value()
		if !ok {
			continue
		}
		balance := evalBig(model, initial.StartingBalances.Select(account.Address))
		accounts[common.BigToAddress(address).Hex()] = ConcreteAccount{
			Nonce:   account.Nonce,
			Code:    codeHex(account),
			Storage: concreteStorage(model, account.Storage),
			Balance: "0x" + balance.Text(16),
		}
	}

	return &TransactionSequence{
		InitialState: InitialState{Accounts: accounts},
		Steps:        steps,
	}, nil
}

func setMinimisationConstraints(ctx *z3.Context, sequence []*state.Transaction, constraints state.Constraints, ws *state.WorldState) (state.Constraints, []*z3.Bitvec) {
	minimize := make([]*z3.Bitvec, 0, 2*len(sequence))
	maxSize := ctx.NewBitvecVal(maxCalldataSize, 256)
	callerLimit := ctx.NewBitvecValBig(maxCallerBalance, 256)
	for _, tx := range sequence {
		size := tx.Calldata.Size()
		constraints.Append(maxSize.UGE(size))
		minimize = append(minimize, size, tx.CallValue)
		constraints.Append(callerLimit.UGE(ws.StartingBalances.Select(tx.Caller)))
	}

	accountLimit := ctx.NewBitvecValBig(maxAccountBalance, 256)
	for _, account := range ws.Accounts() {
		constraints.Append(accountLimit.UGE(ws.StartingBalances.Select(account.Address)))
	}
	return constraints, minimize
}

func concreteTransaction(model *smt.Model, tx *state.Transaction) ConcreteTransaction {
	address := ""
	input := ""
	if tx.Kind == state.ContractCreation {
		if tx.Code != nil {
			input = hex.EncodeToString(tx.Code.Bytecode)
		}
	} else if v, ok := tx.CalleeAccount.Address.Value(); ok {
		address = common.BigToAddress(v).Hex()
	}
	input += hex.EncodeToString(tx.Calldata.Concrete(model))

	return ConcreteTransaction{
		Input:   "0x" + input,
		Value:   "0x" + evalBig(model, tx.CallValue).Text(16),
		Origin:  fmt.Sprintf("0x%040x", evalBig(model, tx.Caller)),
		Address: address,
	}
}

func codeHex(account *state.Account) string {
	if account.Code == nil {
		return ""
	}
	return account.Code.Hex()
}

// concreteStorage evaluates the written storage slots of an account.
func concreteStorage(model *smt.Model, storage *state.Storage) map[string]string {
	slots := make(map[string]string)
	for _, key := range storage.Keys() {
		k := evalBig(model, key)
		slots["0x"+k.Text(16)] = "0x" + evalBig(model, storage.Get(key)).Text(16)
	}
	return slots
}

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
