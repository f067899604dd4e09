package strategy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-laser/disassembler"
	"go-laser/laser/ethereum/state"
	"go-laser/laser/smt/z3"
)

func newStates(t *testing.T, n int) (*z3.Context, []*state.GlobalState) {
	ctx := z3.NewContext(nil)
	t.Cleanup(func() { _ = ctx.Close() })

	// JUMPDEST, STOP
	code, err := disassembler.NewDisassembly("5b00", nil)
	require.NoError(t, err)

	states := make([]*state.GlobalState, 0, n)
	for i := 0; i < n; i++ {
		ws := state.NewWorldState(ctx)
		account := ws.CreateAccount(0, nil, nil, code, "Loop", true)
		env := state.NewEnvironment(ctx, code, account, nil, nil, nil, nil, nil, nil, false)
		states = append(states, state.NewGlobalState(ctx, ws, env, nil, state.NewMachineState(0, i)))
	}
	return ctx, states
}

func TestBreadthFirstOrder(t *testing.T) {
	_, states := newStates(t, 3)
	s := NewBreadthFirst()
	s.Push(states...)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.RunCheck())

	assert.Same(t, states[0], s.Next())
	assert.Same(t, states[1], s.Next())
	assert.Same(t, states[2], s.Next())
	assert.Nil(t, s.Next())
}

func TestDepthFirstOrder(t *testing.T) {
	_, states := newStates(t, 3)
	s := NewDepthFirst()
	s.Push(states...)

	assert.Same(t, states[2], s.Next())
	s.Push(states[2])
	assert.Same(t, states[2], s.Next())
	assert.Same(t, states[1], s.Next())
	assert.Same(t, states[0], s.Next())
	assert.Nil(t, s.Next())
	assert.Equal(t, 0, s.Len())
}

func TestGetLoopCount(t *testing.T) {
	tests := []struct {
		trace []int
		count int
	}{
		{[]int{1, 2, 3}, 0},
		{[]int{1, 2, 1, 2}, 0},
		{[]int{5, 1, 2, 1, 2}, 2},
		{[]int{1, 2, 3, 1, 2, 3, 1, 2, 3}, 3},
		{[]int{9, 0, 9, 0, 9, 0, 9, 0}, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.count, GetLoopCount(tt.trace), "trace %v", tt.trace)
	}
}

func TestBoundedLoopsSkipsUnrolledStates(t *testing.T) {
	_, states := newStates(t, 2)
	looping, fresh := states[0], states[1]
	looping.Annotate(&JumpdestCountAnnotation{Trace: []int{9, 0, 9, 0, 9, 0, 9}})

	s := NewBoundedLoops(NewBreadthFirst(), 3)
	s.Push(looping, fresh)

	assert.Same(t, fresh, s.Next())
	assert.Nil(t, s.Next())

	// The fresh state recorded the JUMPDEST it is about to execute.
	require.Len(t, fresh.Annotations(), 1)
	assert.Equal(t, []int{0}, fresh.Annotations()[0].(*JumpdestCountAnnotation).Trace)
}

func TestBoundedLoopsKeepsStatesWithinBound(t *testing.T) {
	_, states := newStates(t, 1)
	states[0].Annotate(&JumpdestCountAnnotation{Trace: []int{9, 0, 9, 0, 9, 0, 9}})

	s := NewBoundedLoops(NewBreadthFirst(), 4)
	s.Push(states[0])
	assert.Same(t, states[0], s.Next())
}

func TestJumpdestAnnotationCopyIsIndependent(t *testing.T) {
	a := &JumpdestCountAnnotation{Trace: []int{1, 2}}
	c := a.Copy().(*JumpdestCountAnnotation)
	c.Trace = append(c.Trace, 3)
	c.Trace[0] = 7
	assert.Equal(t, []int{1, 2}, a.Trace)
}

func TestDelayConstraintChecksPendingStates(t *testing.T) {
	ctx, states := newStates(t, 2)
	infeasible, feasible := states[0], states[1]
	infeasible.WorldState.Constraints.Append(ctx.NewBoolVal(false))
	feasible.WorldState.Constraints.Append(ctx.NewBitvec("x", 8).UGT(ctx.NewBitvecVal(3, 8)))

	cache, err := state.NewModelCache(10)
	require.NoError(t, err)
	opts := func() state.ModelOptions {
		return state.ModelOptions{Timeout: 10000, Cache: cache}
	}

	var mu sync.Mutex
	s := NewDelayConstraint(opts, &mu)
	assert.False(t, s.RunCheck())

	s.Push(infeasible, feasible)
	assert.Equal(t, 2, s.Len())

	assert.Same(t, feasible, s.Next())
	assert.Nil(t, s.Next())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, cache.Len())
}
