package z3

// #include <z3.h>
import "C"

// Optimize is a solver that can minimize or maximize objectives.
type Optimize struct {
	ctx         *Context
	rawOptimize C.Z3_optimize
}

// NewOptimize creates a new optimizing solver.
func (c *Context) NewOptimize() *Optimize {
	rawOptimize := C.Z3_mk_optimize(c.raw)
	C.Z3_optimize_inc_ref(c.raw, rawOptimize)

	return &Optimize{
		ctx:         c,
		rawOptimize: rawOptimize,
	}
}

// Context returns the context the solver was created in.
func (s *Optimize) Context() *Context {
	return s.ctx
}

// SetTimeout sets the timeout of the optimize, timeout is in milliseconds.
func (s *Optimize) SetTimeout(ms uint) error {
	return s.setParam("timeout", ms)
}

// SetBoolParam sets a boolean parameter.
func (s *Optimize) SetBoolParam(name string, v bool) error {
	return s.setParam(name, v)
}

func (s *Optimize) setParam(name string, v interface{}) error {
	params := s.ctx.newParams(name, v)
	defer C.Z3_params_dec_ref(s.ctx.raw, params)
	C.Z3_optimize_set_params(s.ctx.raw, s.rawOptimize, params)
	return s.ctx.err("Z3_optimize_set_params")
}

// Close frees the memory associated with this.
func (s *Optimize) Close() error {
	if s.rawOptimize != nil {
		C.Z3_optimize_dec_ref(s.ctx.raw, s.rawOptimize)
		s.rawOptimize = nil
	}
	return nil
}

// Assert asserts constraints onto the Optimize.
func (s *Optimize) Assert(args ...*Bool) error {
	for _, arg := range args {
		C.Z3_optimize_assert(s.ctx.raw, s.rawOptimize, arg.rawAST)
		if err := s.ctx.err("Z3_optimize_assert"); err != nil {
			return err
		}
	}
	return nil
}

// AssertAndTrack asserts c tracked by a boolean constant named name.
func (s *Optimize) AssertAndTrack(c *Bool, name string) error {
	tracker := s.ctx.NewBoolConst(name)
	C.Z3_optimize_assert_and_track(s.ctx.raw, s.rawOptimize, c.rawAST, tracker.rawAST)
	return s.ctx.err("Z3_optimize_assert_and_track")
}

// Minimize adds a minimization objective.
func (s *Optimize) Minimize(e *Bitvec) error {
	C.Z3_optimize_minimize(s.ctx.raw, s.rawOptimize, e.rawAST)
	return s.ctx.err("Z3_optimize_minimize")
}

// Maximize adds a maximization objective.
func (s *Optimize) Maximize(e *Bitvec) error {
	C.Z3_optimize_maximize(s.ctx.raw, s.rawOptimize, e.rawAST)
	return s.ctx.err("Z3_optimize_maximize")
}

// Check checks if the currently set formula is consistent.
func (s *Optimize) Check(assumptions ...*Bool) (LBool, error) {
	raws := rawASTs(assumptions)
	res := C.Z3_optimize_check(s.ctx.raw, s.rawOptimize, C.uint(len(raws)), rawPtr(raws))
	if err := s.ctx.err("Z3_optimize_check"); err != nil {
		return Undef, err
	}
	return LBool(res), nil
}

// Model returns the last model from a Check.
func (s *Optimize) Model() (*Model, error) {
	raw := C.Z3_optimize_get_model(s.ctx.raw, s.rawOptimize)
	if err := s.ctx.err("Z3_optimize_get_model"); err != nil {
		return nil, err
	}
	return newModel(s.ctx, raw), nil
}

// UnsatCore returns the tracking constants of the last unsatisfiable Check.
func (s *Optimize) UnsatCore() ([]*Bool, error) {
	vec := C.Z3_optimize_get_unsat_core(s.ctx.raw, s.rawOptimize)
	if err := s.ctx.err("Z3_optimize_get_unsat_core"); err != nil {
		return nil, err
	}
	return s.ctx.boolsOf(vec), nil
}

// ReasonUnknown explains the last unknown result.
func (s *Optimize) ReasonUnknown() string {
	return C.GoString(C.Z3_optimize_get_reason_unknown(s.ctx.raw, s.rawOptimize))
}

// Push creates a backtracking point.
func (s *Optimize) Push() {
	C.Z3_optimize_push(s.ctx.raw, s.rawOptimize)
}

// Pop backtracks one point.
func (s *Optimize) Pop() error {
	C.Z3_optimize_pop(s.ctx.raw, s.rawOptimize)
	return s.ctx.err("Z3_optimize_pop")
}

// String returns the optimization problem as an SMT-LIB2 script.
func (s *Optimize) String() string {
	return C.GoString(C.Z3_optimize_to_string(s.ctx.raw, s.rawOptimize))
}
