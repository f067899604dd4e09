package state

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"go-laser/laser/smt"
	"go-laser/laser/smt/z3"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrUnsat is returned when the constraints have no model.
	ErrUnsat = errors.New("constraints are unsatisfiable")
	// ErrSolverTimeout is returned when the solver gave up or no time was left.
	ErrSolverTimeout = errors.New("solver timed out")
)

func isUnsat(err error) bool {
	return errors.Is(err, ErrUnsat)
}

// ModelOptions configures a model query.
type ModelOptions struct {
	// Timeout is the solver timeout in milliseconds. Zero means no timeout.
	Timeout uint
	// Deadline, when set, caps Timeout by the time left minus a safety margin.
	Deadline time.Time
	Stats    *smt.Statistics
	Cache    *ModelCache
}

const deadlineMargin = 500 * time.Millisecond

func (o ModelOptions) timeout() (uint, error) {
	timeout := o.Timeout
	if o.Deadline.IsZero() {
		return timeout, nil
	}
	left := time.Until(o.Deadline) - deadlineMargin
	if left <= 0 {
		return 0, ErrSolverTimeout
	}
	if ms := uint(left.Milliseconds()); timeout == 0 || ms < timeout {
		timeout = ms
	}
	return timeout, nil
}

// ModelCache keeps recent models so that a new query can be answered by
// evaluation instead of a solver call. Models belong to one z3 context.
//
// The cache owns the models it holds and closes them on eviction.
type ModelCache struct {
	cache *lru.Cache
}

func NewModelCache(size int) (*ModelCache, error) {
	c, err := lru.NewWithEvict(size, func(_, value interface{}) {
		_ = value.(*smt.Model).Close()
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &ModelCache{cache: c}, nil
}

// Put hands model over to the cache and returns the model the cache keeps
// for it. When an identical model is already cached, model is closed and
// the cached one is returned.
func (m *ModelCache) Put(model *smt.Model) *smt.Model {
	if model.IsEmpty() {
		return model
	}
	key := sha3.Sum256([]byte(model.String()))
	if v, ok := m.cache.Get(key); ok {
		_ = model.Close()
		return v.(*smt.Model)
	}
	m.cache.Add(key, model)
	return model
}

func (m *ModelCache) Len() int {
	return m.cache.Len()
}

// CheckQuickSat returns a cached model satisfying every constraint, most
// recent first, or nil.
func (m *ModelCache) CheckQuickSat(constraints []*z3.Bool) *smt.Model {
	keys := m.cache.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		v, ok := m.cache.Get(keys[i])
		if !ok {
			continue
		}
		model := v.(*smt.Model)
		if satisfies(model, constraints) {
			return model
		}
	}
	return nil
}

func satisfies(model *smt.Model, constraints []*z3.Bool) bool {
	for _, c := range constraints {
		v := model.Eval(c.AsAST(), true)
		if v == nil || v.String() != "true" {
			return false
		}
	}
	return true
}

// GetModel solves constraints, optionally minimizing and maximizing the
// given objectives in order.
//
// With opts.Cache set the returned model is owned by the cache: callers must
// not Close it, and it stays valid only until the cache evicts it.
func GetModel(ctx *z3.Context, constraints []*z3.Bool, minimize, maximize []*z3.Bitvec, opts ModelOptions) (*smt.Model, error) {
	timeout, err := opts.timeout()
	if err != nil {
		return nil, err
	}

	for _, c := range constraints {
		if c == nil {
			return nil, errors.Wrap(ErrUnsat, "nil constraint")
		}
		if c.IsFalse() {
			return nil, ErrUnsat
		}
	}

	optimizing := len(minimize) > 0 || len(maximize) > 0
	if opts.Cache != nil && !optimizing {
		if model := opts.Cache.CheckQuickSat(constraints); model != nil {
			return model, nil
		}
	}

	var solverOpts []smt.Option
	if opts.Stats != nil {
		solverOpts = append(solverOpts, smt.WithStatistics(opts.Stats))
	}
	s := smt.NewOptimize(ctx, solverOpts...)
	defer s.Close()
	if timeout > 0 {
		s.SetTimeout(timeout)
	}
	s.Add(constraints...)
	for _, e := range minimize {
		s.Minimize(e)
	}
	for _, e := range maximize {
		s.Maximize(e)
	}

	switch s.Check() {
	case smt.Sat:
		model := s.Model()
		if opts.Cache != nil {
			model = opts.Cache.Put(model)
		}
		return model, nil
	case smt.Unsat:
		return nil, ErrUnsat
	default:
		return nil, ErrSolverTimeout
	}
}
