package ethereum

import (
	"encoding/hex"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-laser/laser/ethereum/cfg"
	"go-laser/laser/ethereum/state"
	"go-laser/laser/ethereum/transaction"
	"go-laser/laser/smt/z3"
	"go-laser/support"
)

// branchCode is PUSH1 7, JUMPI, PUSH1 0, REVERT, STOP, JUMPDEST, RETURN.
// The fallthrough path reverts, the taken path returns.
const branchCode = "6007576000fd005bf3"

// branchEvaluator forks on JUMPI over a fresh symbol per transaction and
// returns branchCode as runtime code. With infeasibleFall the fallthrough
// branch is constrained to false.
type branchEvaluator struct {
	infeasibleFall bool
	fail           bool
}

func (b *branchEvaluator) Evaluate(gs *state.GlobalState) (*Step, error) {
	if b.fail {
		return nil, errors.New("stack underflow")
	}
	instr := gs.CurrentInstruction()
	switch instr.Opcode {
	case "JUMPI":
		ctx := gs.Context()
		cond := ctx.NewBoolConst("cond_" + gs.CurrentTransaction().ID)
		taken := gs.Copy()
		taken.WorldState.Constraints.Append(cond)
		taken.Mstate.Pc = gs.Environment.Code.InstructionIndex(7)

		fall := gs.Copy()
		if b.infeasibleFall {
			fall.WorldState.Constraints.Append(ctx.NewBoolVal(false))
		} else {
			fall.WorldState.Constraints.Append(cond.Not())
		}
		fall.Mstate.Pc++
		return &Step{Opcode: instr.Opcode, States: []*state.GlobalState{taken, fall}}, nil
	case "REVERT":
		return &Step{Opcode: instr.Opcode, End: &TransactionEnd{Revert: true}}, nil
	case "RETURN":
		runtime, _ := hex.DecodeString(branchCode)
		return &Step{Opcode: instr.Opcode, End: &TransactionEnd{ReturnData: runtime}}, nil
	default:
		gs.Mstate.Pc++
		return &Step{Opcode: instr.Opcode, States: []*state.GlobalState{gs}}, nil
	}
}

func newTestEVM(t *testing.T, evaluator Evaluator, configure func(c *support.Config)) *LaserEVM {
	ctx := z3.NewContext(nil)
	t.Cleanup(func() { _ = ctx.Close() })
	config := support.DefaultConfig()
	config.TransactionCount = 2
	config.SolverTimeout = 10000
	if configure != nil {
		configure(config)
	}
	e, err := NewLaserEVM(ctx, config, evaluator)
	require.NoError(t, err)
	return e
}

func countEdges(edges []cfg.Edge, kind cfg.JumpType) int {
	n := 0
	for _, edge := range edges {
		if edge.Type == kind {
			n++
		}
	}
	return n
}

func TestSymExecCreatesAndCallsContract(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, nil)
	require.NoError(t, e.SymExec(branchCode, "Branch"))

	open := e.OpenStates()
	require.Len(t, open, 1)

	sequence := open[0].TransactionSequence
	require.Len(t, sequence, 3)
	assert.Equal(t, state.ContractCreation, sequence[0].Kind)
	assert.Equal(t, state.MessageCall, sequence[1].Kind)
	assert.Equal(t, state.MessageCall, sequence[2].Kind)
	assert.Equal(t, []string{"1", "2", "3"}, []string{sequence[0].ID, sequence[1].ID, sequence[2].ID})

	created := open[0].Account(sequence[0].CalleeAccount.Address)
	assert.Equal(t, "0x"+branchCode, created.Code.Hex())
	assert.Equal(t, "Branch", created.ContractName)

	// One entry node and two branch nodes per transaction.
	assert.Len(t, e.Statespace().Nodes(), 9)
	edges := e.Statespace().Edges()
	assert.Equal(t, 2, countEdges(edges, cfg.Transaction))
	assert.Equal(t, 6, countEdges(edges, cfg.Conditional))
	assert.Greater(t, e.TotalStates(), int64(0))
}

func TestSymExecWithWorkers(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, func(c *support.Config) {
		c.Workers = 4
	})
	require.NoError(t, e.SymExec(branchCode, "Branch"))
	assert.Len(t, e.OpenStates(), 1)
	assert.Len(t, e.Statespace().Nodes(), 9)
}

func TestSymExecStrategies(t *testing.T) {
	for _, name := range []string{support.StrategyBFS, support.StrategyDFS, support.StrategyDelayed} {
		t.Run(name, func(t *testing.T) {
			e := newTestEVM(t, &branchEvaluator{}, func(c *support.Config) {
				c.Strategy = name
			})
			require.NoError(t, e.SymExec(branchCode, "Branch"))
			require.Len(t, e.OpenStates(), 1)
			assert.Len(t, e.OpenStates()[0].TransactionSequence, 3)
		})
	}
}

func TestDelayedStrategyDropsInfeasibleStates(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{infeasibleFall: true}, func(c *support.Config) {
		c.Strategy = support.StrategyDelayed
		c.TransactionCount = 0
	})
	require.NoError(t, e.SymExec(branchCode, "Branch"))
	assert.Len(t, e.OpenStates(), 1)
	// Both branches get a node before the pending check drops one of them.
	assert.Len(t, e.Statespace().Nodes(), 3)
}

func TestPruning(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		e := newTestEVM(t, &branchEvaluator{infeasibleFall: true}, func(c *support.Config) {
			c.TransactionCount = 0
			c.PruningFactor = 1
		})
		require.NoError(t, e.SymExec(branchCode, "Branch"))
		assert.Len(t, e.Statespace().Nodes(), 2)
		assert.Len(t, e.Statespace().Edges(), 1)
	})
	t.Run("disabled", func(t *testing.T) {
		e := newTestEVM(t, &branchEvaluator{infeasibleFall: true}, func(c *support.Config) {
			c.TransactionCount = 0
			c.PruningFactor = 0
		})
		require.NoError(t, e.SymExec(branchCode, "Branch"))
		assert.Len(t, e.Statespace().Nodes(), 3)
		assert.Len(t, e.Statespace().Edges(), 2)
	})
}

func TestConditionalEdgesCarryBranchConstraint(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, func(c *support.Config) {
		c.TransactionCount = 0
	})
	require.NoError(t, e.SymExec(branchCode, "Branch"))

	conditions := make([]string, 0)
	for _, edge := range e.Statespace().Edges() {
		require.Equal(t, cfg.Conditional, edge.Type)
		require.NotNil(t, edge.Condition)
		conditions = append(conditions, edge.Condition.String())
		node, ok := e.Statespace().Node(edge.To)
		require.True(t, ok)
		assert.Equal(t, edge.Condition.String(), node.Constraints.Last().String())
		assert.Equal(t, "constructor", node.FunctionName)
	}
	assert.ElementsMatch(t, []string{"cond_1", "(not cond_1)"}, conditions)
}

func TestStatespaceDisabled(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, func(c *support.Config) {
		c.RequiresStatespace = false
	})
	require.NoError(t, e.SymExec(branchCode, "Branch"))
	assert.Len(t, e.OpenStates(), 1)
	assert.Empty(t, e.Statespace().Nodes())
	assert.Empty(t, e.Statespace().Edges())
}

func TestMaxDepthDropsStates(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, func(c *support.Config) {
		c.MaxDepth = 2
	})
	err := e.SymExec(branchCode, "Branch")
	assert.True(t, errors.Is(err, ErrNoContractCreated))
	assert.Empty(t, e.OpenStates())
}

func TestVMExceptionEndsPath(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{fail: true}, nil)
	err := e.SymExec(branchCode, "Branch")
	assert.True(t, errors.Is(err, ErrNoContractCreated))
}

func TestTrackGasReturnsFinalStates(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, nil)
	e.SetOpenStates(state.NewWorldState(e.Context()))

	none := ""
	creator := transaction.CreatorAddress
	final, err := e.Dispatcher().ExecuteTransaction(e, transaction.Params{
		CalleeAddress: &none,
		CallerAddress: &creator,
		OriginAddress: &creator,
		Code:          branchCode,
		GasLimit:      DefaultGasLimit,
		TrackGas:      true,
	})
	require.NoError(t, err)
	// The reverted and the returning path.
	assert.Len(t, final, 2)
	assert.Len(t, e.OpenStates(), 1)
}

func TestInstructionHooks(t *testing.T) {
	e := newTestEVM(t, &branchEvaluator{}, func(c *support.Config) {
		c.TransactionCount = 0
	})
	var pre, post atomic.Int32
	e.RegisterPreHook("JUMPI", func(gs *state.GlobalState) {
		assert.Equal(t, "JUMPI", gs.CurrentInstruction().Opcode)
		pre.Add(1)
	})
	e.RegisterPostHook("JUMPI", func(gs *state.GlobalState) {
		post.Add(1)
	})
	require.NoError(t, e.SymExec(branchCode, "Branch"))
	assert.Equal(t, int32(1), pre.Load())
	assert.Equal(t, int32(2), post.Load())
}

func TestNewLaserEVMValidatesConfig(t *testing.T) {
	ctx := z3.NewContext(nil)
	defer ctx.Close()
	config := support.DefaultConfig()
	config.Strategy = "random"
	_, err := NewLaserEVM(ctx, config, &branchEvaluator{})
	assert.Error(t, err)
}

func TestTimeHandler(t *testing.T) {
	h := NewTimeHandler()
	h.StartExecution(0)
	assert.True(t, h.Deadline().IsZero())
	assert.Greater(t, h.TimeRemaining(), 24*time.Hour)

	h.StartExecution(10)
	remaining := h.TimeRemaining()
	assert.LessOrEqual(t, remaining, 10*time.Second)
	assert.Greater(t, remaining, 9*time.Second)
	assert.WithinDuration(t, time.Now().Add(10*time.Second), h.Deadline(), time.Second)
}
