package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
)

func TestGetModelMinimize(t *testing.T) {
	ctx := newTestContext(t)
	x := ctx.NewBitvec("x", 256)

	model, err := GetModel(ctx, []*z3.Bool{x.UGT(ctx.NewBitvecVal(41, 256))}, []*z3.Bitvec{x}, nil, ModelOptions{Timeout: 10000})
	require.NoError(t, err)
	v, ok := model.Eval(x.AsAST(), true).AsBitvec().Value()
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int64())
}

func TestGetModelUnsat(t *testing.T) {
	ctx := newTestContext(t)
	x := ctx.NewBitvec("x", 8)

	_, err := GetModel(ctx, []*z3.Bool{x.ULT(ctx.NewBitvecVal(1, 8)), x.UGT(ctx.NewBitvecVal(1, 8))}, nil, nil, ModelOptions{})
	assert.ErrorIs(t, err, ErrUnsat)

	_, err = GetModel(ctx, []*z3.Bool{ctx.NewBoolVal(false)}, nil, nil, ModelOptions{})
	assert.ErrorIs(t, err, ErrUnsat)
}

func TestGetModelPastDeadline(t *testing.T) {
	ctx := newTestContext(t)
	_, err := GetModel(ctx, nil, nil, nil, ModelOptions{Deadline: time.Now()})
	assert.ErrorIs(t, err, ErrSolverTimeout)

	// A timeout is not proof of infeasibility.
	c := NewConstraints(ctx.NewBoolConst("p"))
	assert.True(t, c.IsPossible(ctx, ModelOptions{Deadline: time.Now()}))
}

func TestModelCacheQuickSat(t *testing.T) {
	ctx := newTestContext(t)
	cache, err := NewModelCache(4)
	require.NoError(t, err)
	stats := smt.NewStatistics()
	opts := ModelOptions{Cache: cache, Stats: stats}

	x := ctx.NewBitvec("x", 8)
	_, err = GetModel(ctx, []*z3.Bool{x.Eq(ctx.NewBitvecVal(3, 8))}, nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, stats.QueryCount())

	// Satisfied by the cached model: no solver call.
	_, err = GetModel(ctx, []*z3.Bool{x.ULT(ctx.NewBitvecVal(5, 8))}, nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.QueryCount())

	// Not satisfied by it: the solver runs again.
	_, err = GetModel(ctx, []*z3.Bool{x.UGT(ctx.NewBitvecVal(5, 8))}, nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.QueryCount())
}

func TestModelCacheClosesEvictedModels(t *testing.T) {
	ctx := newTestContext(t)
	cache, err := NewModelCache(1)
	require.NoError(t, err)
	opts := ModelOptions{Cache: cache}

	x := ctx.NewBitvec("x", 8)
	first, err := GetModel(ctx, []*z3.Bool{x.Eq(ctx.NewBitvecVal(3, 8))}, nil, nil, opts)
	require.NoError(t, err)
	require.False(t, first.IsEmpty())

	second, err := GetModel(ctx, []*z3.Bool{x.Eq(ctx.NewBitvecVal(9, 8))}, nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.True(t, first.IsEmpty())
	assert.False(t, second.IsEmpty())
}

func TestModelCacheKeepsOneCopyOfIdenticalModels(t *testing.T) {
	ctx := newTestContext(t)
	cache, err := NewModelCache(4)
	require.NoError(t, err)

	x := ctx.NewBitvec("x", 8)
	solve := func() *smt.Model {
		s := smt.NewSolver(ctx)
		defer s.Close()
		s.Add(x.Eq(ctx.NewBitvecVal(3, 8)))
		require.Equal(t, smt.Sat, s.Check())
		return s.Model()
	}

	kept := cache.Put(solve())
	duplicate := solve()
	assert.Same(t, kept, cache.Put(duplicate))
	assert.True(t, duplicate.IsEmpty())
	assert.False(t, kept.IsEmpty())
	assert.Equal(t, 1, cache.Len())
}

func TestIsPossible(t *testing.T) {
	ctx := newTestContext(t)
	p := ctx.NewBoolConst("p")

	assert.True(t, NewConstraints(p).IsPossible(ctx, ModelOptions{}))
	assert.False(t, NewConstraints(p, p.Not()).IsPossible(ctx, ModelOptions{}))
}
